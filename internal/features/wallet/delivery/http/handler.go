package http

import (
	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/middleware"
	"exchange-backend/internal/common/notify"
	authservice "exchange-backend/internal/features/auth/service"
	"exchange-backend/internal/features/wallet/models"
	"exchange-backend/internal/features/wallet/service"
)

type WalletHandler struct {
	service service.WalletService
	auth    authservice.Authenticator
}

func NewWalletHandler(service service.WalletService, auth authservice.Authenticator) *WalletHandler {
	return &WalletHandler{service: service, auth: auth}
}

func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup) {
	wallet := router.Group("/wallet")
	wallet.Use(middleware.RequireAuth(h.auth))
	{
		wallet.POST("/deposit", h.deposit)
		wallet.POST("/withdraw", h.withdraw)
		wallet.POST("/bonus/signup/claim", h.claimSignupBonus)
		wallet.POST("/bonus/first-deposit/claim", h.claimFirstDepositBonus)
		wallet.POST("/bonus/referral/claim", h.claimReferralBonus)
	}
}

// @Summary Deposit
// @Description Credit a deposit minus the channel's network fee.
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerSession
// @Param request body models.DepositRequest true "Amount and channel"
// @Success 200 {object} notify.Notification "New balance"
// @Failure 400 {object} notify.Notification "Amount below minimum"
// @Router /wallet/deposit [post]
func (h *WalletHandler) deposit(c *gin.Context) {
	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	resp, err := h.service.Deposit(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Deposit credited", resp)
}

// @Summary Withdraw
// @Description Debit a withdrawal after minimum and balance checks.
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerSession
// @Param request body models.WithdrawRequest true "Amount, address and channel"
// @Success 200 {object} notify.Notification "New balance"
// @Failure 422 {object} notify.Notification "Below minimum or insufficient balance"
// @Router /wallet/withdraw [post]
func (h *WalletHandler) withdraw(c *gin.Context) {
	var req models.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	resp, err := h.service.Withdraw(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Withdrawal accepted", resp)
}

// @Summary Claim signup bonus
// @Tags wallet
// @Produce json
// @Security BearerSession
// @Success 200 {object} notify.Notification "New balance"
// @Failure 422 {object} notify.Notification "Bonus not available"
// @Router /wallet/bonus/signup/claim [post]
func (h *WalletHandler) claimSignupBonus(c *gin.Context) {
	resp, err := h.service.ClaimSignupBonus(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Signup bonus claimed", resp)
}

// @Summary Claim first deposit bonus
// @Tags wallet
// @Produce json
// @Security BearerSession
// @Success 200 {object} notify.Notification "New balance"
// @Failure 422 {object} notify.Notification "Bonus not available"
// @Router /wallet/bonus/first-deposit/claim [post]
func (h *WalletHandler) claimFirstDepositBonus(c *gin.Context) {
	resp, err := h.service.ClaimFirstDepositBonus(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "First deposit bonus claimed", resp)
}

// @Summary Claim referral bonus
// @Description Pay out the outstanding referral bonus in one step.
// @Tags wallet
// @Produce json
// @Security BearerSession
// @Success 200 {object} notify.Notification "New balance"
// @Failure 422 {object} notify.Notification "No bonus available"
// @Router /wallet/bonus/referral/claim [post]
func (h *WalletHandler) claimReferralBonus(c *gin.Context) {
	resp, err := h.service.ClaimReferralBonus(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		notify.Fail(c, err)
		return
	}

	notify.Success(c, "Referral bonus claimed", resp)
}
