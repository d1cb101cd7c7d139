package handler

import (
	"resto-server/internal/config"
	"resto-server/internal/interfaces"
	"resto-server/internal/models"
	"resto-server/internal/realtime"
	"resto-server/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler объединяет HTTP endpoints сервера.
type Handler struct {
	authService        service.AuthService
	userRepo           interfaces.UserRepository
	deviceTokenService *service.DeviceTokenService
	menuService        service.MenuService
	inventoryService   service.InventoryService
	orderService       service.OrderService
	imageService       service.ImageService
	dispatcher         *service.NotificationDispatcher
	wsHandler          *realtime.WebSocketHandler
	cfg                *config.Config
}

func NewHandler(
	authService service.AuthService,
	userRepo interfaces.UserRepository,
	deviceTokenService *service.DeviceTokenService,
	menuService service.MenuService,
	inventoryService service.InventoryService,
	orderService service.OrderService,
	imageService service.ImageService,
	dispatcher *service.NotificationDispatcher,
	wsHandler *realtime.WebSocketHandler,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authService:        authService,
		userRepo:           userRepo,
		deviceTokenService: deviceTokenService,
		menuService:        menuService,
		inventoryService:   inventoryService,
		orderService:       orderService,
		imageService:       imageService,
		dispatcher:         dispatcher,
		wsHandler:          wsHandler,
		cfg:                cfg,
	}
}

// RegisterRoutes регистрирует все маршруты сервера.
// rateLimiter применяется к endpoints, доступным без аутентификации.
func (h *Handler) RegisterRoutes(router *gin.Engine, rateLimiter gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", rateLimiter, h.register)
		auth.POST("/login", rateLimiter, h.login)
		auth.POST("/refresh", rateLimiter, h.refresh)
		auth.POST("/logout", h.AuthMiddleware(), h.logout)
		auth.GET("/me", h.AuthMiddleware(), h.me)
	}

	devices := router.Group("/devices", h.AuthMiddleware())
	{
		devices.POST("/token", h.registerDeviceToken)
		devices.DELETE("/token", h.unregisterDeviceToken)
	}

	menu := router.Group("/menu")
	{
		// Картинки отдаются без токена, их запрашивает <img> на планшете зала.
		menu.GET("/images/:file", h.serveMenuImage)

		authed := menu.Group("", h.AuthMiddleware())
		authed.GET("", h.listMenu)
		authed.GET("/:id", h.getMenuItem)

		managed := authed.Group("", h.RequireRoleMiddleware(models.RoleManager, models.RoleOwner))
		managed.POST("", h.createMenuItem)
		managed.PUT("/:id", h.updateMenuItem)
		managed.DELETE("/:id", h.deleteMenuItem)
		managed.POST("/images", h.uploadMenuImage)
	}

	inventory := router.Group("/inventory", h.AuthMiddleware(), h.RequireRoleMiddleware(models.RoleManager, models.RoleOwner))
	{
		inventory.GET("", h.listIngredients)
		inventory.GET("/low", h.listLowStock)
		inventory.POST("", h.createIngredient)
		inventory.POST("/:id/restock", h.restockIngredient)
		inventory.POST("/recipes", h.linkRecipe)
	}

	orders := router.Group("/orders", h.AuthMiddleware())
	{
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)

		managed := orders.Group("", h.RequireRoleMiddleware(models.RoleManager, models.RoleOwner))
		managed.POST("", h.createOrder)
		managed.POST("/:id/items", h.addOrderItems)

		kitchen := orders.Group("", h.RequireRoleMiddleware(models.RoleChef, models.RoleManager, models.RoleOwner))
		kitchen.PATCH("/:id/status", h.updateOrderStatus)
	}

	internal := router.Group("/internal", h.InternalAuthMiddleware())
	{
		internal.POST("/dispatch", h.dispatchNotification)
		internal.OPTIONS("/dispatch", func(c *gin.Context) {})
	}

	if h.wsHandler != nil {
		router.GET("/ws/orders", gin.WrapF(h.wsHandler.ServeWS))
	}
}
