package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"warehouse-picking-backend/internal/domains/settings/model"
	"warehouse-picking-backend/internal/domains/settings/service"
	"warehouse-picking-backend/internal/shared/response"
)

// =====================================================
// SETTINGS HANDLER
// =====================================================
type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// RegisterRoutes registers the settings endpoints. The caller mounts this
// group behind the superadmin gate.
func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/settings", h.GetAPIConfig)
	router.PUT("/settings", h.UpdateAPIConfig)
	router.GET("/email-sms-settings", h.GetNotifierConfig)
	router.PUT("/email-sms-settings", h.UpdateNotifierConfig)
}

func (h *SettingsHandler) GetAPIConfig(c *gin.Context) {
	cfg, err := h.settingsService.GetAPIConfig(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

func (h *SettingsHandler) UpdateAPIConfig(c *gin.Context) {
	var cfg model.APIConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.settingsService.UpdateAPIConfig(c.Request.Context(), cfg); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

func (h *SettingsHandler) GetNotifierConfig(c *gin.Context) {
	cfg, err := h.settingsService.GetNotifierConfig(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

func (h *SettingsHandler) UpdateNotifierConfig(c *gin.Context) {
	var cfg model.NotifierConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.settingsService.UpdateNotifierConfig(c.Request.Context(), cfg); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

func (h *SettingsHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	var vobj validation.ErrorObject
	switch {
	case errors.Is(err, model.ErrSettingNotFound):
		response.NotFound(c, err.Error())
	case errors.As(err, &verrs), errors.As(err, &vobj):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
	default:
		response.InternalServerError(c, "internal server error")
	}
}
