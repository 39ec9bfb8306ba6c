package mailer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/logger"
	"exchange-backend/internal/common/validation"
)

// SendEmailRequest is the relay payload.
type SendEmailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

// Handler exposes the relay endpoint backed by the provider client.
type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/send-email", h.sendEmail)
}

// @Summary Send an email
// @Description Forwards a send-email request to the transactional email provider.
// @Accept json
// @Produce json
// @Param request body SendEmailRequest true "Email to send"
// @Success 200 {object} map[string]interface{} "message, data"
// @Failure 400 {object} map[string]interface{} "error"
// @Failure 500 {object} map[string]interface{} "error, details, status"
// @Router /api/send-email [post]
func (h *Handler) sendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.ValidateEmail(req.To); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.client.send(c.Request.Context(), req.To, req.Subject, req.Text)
	if err != nil {
		logger.Error().Str("to", req.To).Err(err).Msg("Mail send failed")

		status := http.StatusInternalServerError
		if apiErr, ok := err.(*APIError); ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to send email",
				"details": apiErr.Body,
				"status":  apiErr.Status,
			})
			return
		}
		c.AbortWithStatusJSON(status, gin.H{
			"error":   "Failed to send email",
			"details": err.Error(),
			"status":  status,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email sent successfully",
		"data":    result,
	})
}
