package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"warehouse-picking-backend/internal/domains/notification/model"
	"warehouse-picking-backend/internal/domains/notification/service"
	"warehouse-picking-backend/internal/shared/response"
)

// =====================================================
// NOTIFICATION HANDLER
// =====================================================
type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterRoutes registers the report send endpoint for authenticated staff.
func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/out-of-stock/send", h.SendReport)
}

// RegisterAdminRoutes registers the settings test endpoints. The caller
// mounts this group behind the superadmin gate.
func (h *NotificationHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/test-email", h.TestEmail)
	router.POST("/test-sms", h.TestSMS)
}

func (h *NotificationHandler) SendReport(c *gin.Context) {
	var req model.SendReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.notificationService.SendReport(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *NotificationHandler) TestEmail(c *gin.Context) {
	var req model.TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.notificationService.TestEmail(c.Request.Context(), req.Recipient); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func (h *NotificationHandler) TestSMS(c *gin.Context) {
	var req model.TestSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.notificationService.TestSMS(c.Request.Context(), req.Phone); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func (h *NotificationHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	var vobj validation.ErrorObject
	switch {
	case errors.Is(err, model.ErrChannelDisabled):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeChannelDisabled, err.Error())
	case errors.Is(err, model.ErrNoRecipients):
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeNoRecipients, err.Error())
	case errors.Is(err, model.ErrNothingToReport):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeNothingToReport, err.Error())
	case errors.As(err, &verrs), errors.As(err, &vobj):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
	default:
		response.InternalServerError(c, "internal server error")
	}
}
