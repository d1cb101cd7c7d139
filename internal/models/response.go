package models

// ErrorResponse - стандартная структура ответа об ошибке для API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
