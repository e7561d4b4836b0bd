package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-ticket-booking/internal/application"
)

type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(s UserServiceInterface) *UserHandler {
	return &UserHandler{service: s}
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required" example:"山田太郎"`
	Email string `json:"email" validate:"required,email" example:"taro@example.com"`
}

// Create godoc
// @Summary ユーザーを作成
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "ユーザー情報"
// @Success 201 {object} UserResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "メールアドレス重複"
// @Router /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, err := h.service.CreateUser(c.Request().Context(), application.CreateUserInput{
		Name: req.Name, Email: req.Email,
	})
	if err != nil {
		return resourceError(err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}
