package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/middleware"
	"exchange-backend/internal/common/notify"
	authservice "exchange-backend/internal/features/auth/service"
	"exchange-backend/internal/features/purchase/models"
	"exchange-backend/internal/features/purchase/service"
)

// PurchaseHandler exposes the three transactional operations as RPC-style
// endpoints returning {success, message}.
type PurchaseHandler struct {
	service service.PurchaseService
	auth    authservice.Authenticator
}

func NewPurchaseHandler(service service.PurchaseService, auth authservice.Authenticator) *PurchaseHandler {
	return &PurchaseHandler{service: service, auth: auth}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchase := router.Group("/purchase")
	purchase.Use(middleware.RequireAuth(h.auth))
	{
		purchase.POST("", h.processPurchase)
		purchase.POST("/prop", h.processPropPurchase)
		purchase.POST("/prop/verify", h.verifyPropCode)
	}
}

// @Summary Process purchase
// @Description Debit the main balance and credit points, appending one transaction record.
// @Tags purchase
// @Accept json
// @Produce json
// @Security BearerSession
// @Param request body models.PurchaseRequest true "Amount"
// @Success 200 {object} models.Result
// @Failure 422 {object} notify.Notification "Insufficient balance"
// @Router /purchase [post]
func (h *PurchaseHandler) processPurchase(c *gin.Context) {
	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	result, err := h.service.ProcessPurchase(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Process prop purchase
// @Description Debit the flat prop price and email a verification code.
// @Tags purchase
// @Accept json
// @Produce json
// @Security BearerSession
// @Param request body models.PropPurchaseRequest true "Recipient email"
// @Success 200 {object} models.Result
// @Failure 422 {object} notify.Notification "Insufficient balance"
// @Failure 502 {object} notify.Notification "Mail relay failed after debit"
// @Router /purchase/prop [post]
func (h *PurchaseHandler) processPropPurchase(c *gin.Context) {
	var req models.PropPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	result, err := h.service.ProcessPropPurchase(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Verify prop code
// @Description Activate the prop balance for a matching pending code.
// @Tags purchase
// @Accept json
// @Produce json
// @Security BearerSession
// @Param request body models.VerifyRequest true "Verification code"
// @Success 200 {object} models.Result
// @Failure 404 {object} notify.Notification "Invalid or expired code"
// @Router /purchase/prop/verify [post]
func (h *PurchaseHandler) verifyPropCode(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notify.Fail(c, errors.NewValidationError("body", err.Error()))
		return
	}

	result, err := h.service.VerifyPropCode(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		notify.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
