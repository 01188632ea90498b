package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warehouse-picking-backend/internal/domains/importer/model"
	"warehouse-picking-backend/internal/domains/importer/service"
	"warehouse-picking-backend/internal/infrastructure/upstream"
	"warehouse-picking-backend/internal/shared/middleware"
	"warehouse-picking-backend/internal/shared/response"
)

// =====================================================
// IMPORTER HANDLER
// =====================================================
type ImporterHandler struct {
	importerService service.ImporterService
}

func NewImporterHandler(importerService service.ImporterService) *ImporterHandler {
	return &ImporterHandler{importerService: importerService}
}

// RegisterRoutes registers the sync endpoints. The caller mounts this group
// behind the superadmin gate.
func (h *ImporterHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sync", h.Sync)
	router.GET("/sync-status", h.Status)
	router.GET("/sync-logs", h.ListSyncLogs)
}

func (h *ImporterHandler) Sync(c *gin.Context) {
	userID := middleware.UserID(c)

	log, err := h.importerService.Sync(c.Request.Context(), &userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, log)
}

func (h *ImporterHandler) Status(c *gin.Context) {
	status, err := h.importerService.Status(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

func (h *ImporterHandler) ListSyncLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.importerService.ListSyncLogs(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs)
}

func (h *ImporterHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrSyncBusy):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeSyncBusy, err.Error())
	case errors.Is(err, upstream.ErrUnavailable):
		response.BadGateway(c, "upstream api unavailable")
	case errors.Is(err, upstream.ErrMalformed):
		response.BadGateway(c, "upstream api returned a malformed document")
	default:
		response.InternalServerError(c, "internal server error")
	}
}
