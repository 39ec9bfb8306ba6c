package http

import (
	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/middleware"
	"exchange-backend/internal/common/notify"
	authservice "exchange-backend/internal/features/auth/service"
	"exchange-backend/internal/features/user/models"
	"exchange-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
	auth    authservice.Authenticator
}

func NewUserHandler(service service.UserService, auth authservice.Authenticator) *UserHandler {
	return &UserHandler{service: service, auth: auth}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(middleware.RequireAuth(h.auth))
	{
		users.GET("/me", h.getMe)
		users.PUT("/me", h.updateProfile)
	}
}

// @Summary Get current user
// @Description Full account record for the authenticated caller.
// @Tags users
// @Produce json
// @Security BearerSession
// @Success 200 {object} notify.Notification "User data"
// @Failure 401 {object} notify.Notification "Unauthenticated"
// @Failure 404 {object} notify.Notification "User data not found"
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "User data", user)
}

// @Summary Update profile
// @Description Update name, phone number or avatar.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerSession
// @Param request body models.ProfileUpdate true "Profile fields"
// @Success 200 {object} notify.Notification "Updated user"
// @Failure 400 {object} notify.Notification "Validation error"
// @Router /users/me [put]
func (h *UserHandler) updateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Profile updated", user)
}
