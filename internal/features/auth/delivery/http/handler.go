package http

import (
	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/middleware"
	"exchange-backend/internal/common/notify"
	"exchange-backend/internal/features/auth/models"
	"exchange-backend/internal/features/auth/service"
	userservice "exchange-backend/internal/features/user/service"
)

type AuthHandler struct {
	auth  service.AuthService
	users userservice.UserService
}

func NewAuthHandler(auth service.AuthService, users userservice.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
	}

	authed := router.Group("/auth")
	authed.Use(middleware.RequireAuth(h.auth))
	{
		authed.POST("/logout", h.logout)
	}
}

// @Summary Register
// @Description Create an account. Supplying a referral code credits the inviting user.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Signup form"
// @Success 201 {object} notify.Notification "Created user"
// @Failure 400 {object} notify.Notification "Validation error"
// @Failure 409 {object} notify.Notification "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	user, err := h.users.Register(c.Request.Context(), userservice.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Created(c, "Account created", user)
}

// @Summary Log in
// @Description Issue a bearer session for valid credentials.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} notify.Notification "Session token"
// @Failure 401 {object} notify.Notification "Bad credentials"
// @Router /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Signed in", session)
}

// @Summary Log out
// @Description Revoke the current session.
// @Tags auth
// @Produce json
// @Security BearerSession
// @Success 200 {object} notify.Notification
// @Router /auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	token, _ := c.Get(middleware.SessionTokenCtxParam)
	if err := h.auth.Logout(c.Request.Context(), token.(string)); err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Signed out", nil)
}
