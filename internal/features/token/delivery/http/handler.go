package http

import (
	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/middleware"
	"exchange-backend/internal/common/notify"
	authservice "exchange-backend/internal/features/auth/service"
	"exchange-backend/internal/features/token/models"
	"exchange-backend/internal/features/token/service"
)

type TokenHandler struct {
	service service.TokenService
	auth    authservice.Authenticator
}

func NewTokenHandler(service service.TokenService, auth authservice.Authenticator) *TokenHandler {
	return &TokenHandler{service: service, auth: auth}
}

func (h *TokenHandler) RegisterRoutes(router *gin.RouterGroup) {
	tokens := router.Group("/tokens")
	tokens.Use(middleware.RequireAuth(h.auth))
	{
		// The deposit-confirmation process posts records here.
		tokens.POST("/deposits", h.createDepositToken)

		tokens.POST("/activate-bot", h.activateBot)
		tokens.POST("/listings", h.listToken)
		tokens.DELETE("/listings/:id", h.delistToken)
	}
}

// @Summary Create deposit token
// @Description Record a deposit attempt from the external confirmation process.
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerSession
// @Param request body models.CreateDepositTokenRequest true "Deposit token"
// @Success 201 {object} notify.Notification
// @Router /tokens/deposits [post]
func (h *TokenHandler) createDepositToken(c *gin.Context) {
	var req models.CreateDepositTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	token, err := h.service.CreateDepositToken(c.Request.Context(), req)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Created(c, "Deposit token recorded", token)
}

// @Summary Activate bot
// @Description Consume the caller's confirmed deposit token; the payout matures after five days.
// @Tags tokens
// @Produce json
// @Security BearerSession
// @Success 200 {object} notify.Notification
// @Failure 404 {object} notify.Notification "No confirmed deposit"
// @Router /tokens/activate-bot [post]
func (h *TokenHandler) activateBot(c *gin.Context) {
	token, err := h.service.ActivateBot(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Bot activated", token)
}

// @Summary List token
// @Description Create a listing for an owned, unlisted deposit token.
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerSession
// @Param request body models.ListTokenRequest true "Listing"
// @Success 201 {object} notify.Notification
// @Failure 409 {object} notify.Notification "Already listed"
// @Router /tokens/listings [post]
func (h *TokenHandler) listToken(c *gin.Context) {
	var req models.ListTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	listing, err := h.service.ListToken(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Created(c, "Token listed", listing)
}

// @Summary Delist token
// @Description Delete the caller's own listing.
// @Tags tokens
// @Produce json
// @Security BearerSession
// @Param id path string true "Listing ID"
// @Success 200 {object} notify.Notification
// @Failure 404 {object} notify.Notification "Listing not found"
// @Router /tokens/listings/{id} [delete]
func (h *TokenHandler) delistToken(c *gin.Context) {
	if err := h.service.DelistToken(c.Request.Context(), middleware.CallerID(c), c.Param("id")); err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Token delisted", nil)
}
