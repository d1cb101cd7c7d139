package models

// Роли персонала ресторана.
const (
	RoleManager = "ROLE_MANAGER"
	RoleChef    = "ROLE_CHEF"
	RoleOwner   = "ROLE_OWNER"
)

// AllRoles возвращает слайс всех определенных ролей.
func AllRoles() []string {
	return []string{
		RoleManager,
		RoleChef,
		RoleOwner,
	}
}

// HasRole проверяет, есть ли у пользователя указанная роль.
func HasRole(userRoles []string, targetRole string) bool {
	for _, role := range userRoles {
		if role == targetRole {
			return true
		}
	}
	return false
}
