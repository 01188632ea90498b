package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/internal/domains/picking/model"
	"warehouse-picking-backend/internal/domains/picking/service"
	"warehouse-picking-backend/internal/shared/middleware"
	"warehouse-picking-backend/internal/shared/response"
)

// =====================================================
// PICKING HANDLER
// =====================================================
type PickingHandler struct {
	pickingService service.PickingService
}

func NewPickingHandler(pickingService service.PickingService) *PickingHandler {
	return &PickingHandler{pickingService: pickingService}
}

func (h *PickingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/picklist", h.PickList)
	router.GET("/picklist/stats", h.PickListStats)
	router.GET("/picklist/:sku/orders", h.OrdersForSKU)
	router.POST("/pick", h.Pick)
	router.POST("/not-in-stock", h.MarkShort)
	router.GET("/picked-items", h.PickedItems)
	router.POST("/picked-items/:id/revert", h.Revert)
	router.GET("/pick-events", h.PickEvents)
}

func (h *PickingHandler) PickList(c *gin.Context) {
	rows, err := h.pickingService.PickList(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *PickingHandler) PickListStats(c *gin.Context) {
	stats, err := h.pickingService.PickListStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *PickingHandler) OrdersForSKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		response.BadRequest(c, "sku is required")
		return
	}

	orders, err := h.pickingService.OrdersForSKU(c.Request.Context(), sku)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, orders)
}

func (h *PickingHandler) Pick(c *gin.Context) {
	var req model.PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
		return
	}

	result, err := h.pickingService.Pick(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *PickingHandler) MarkShort(c *gin.Context) {
	var req model.MarkShortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
		return
	}

	result, err := h.pickingService.MarkShort(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *PickingHandler) PickedItems(c *gin.Context) {
	filter := model.PickedItemFilter{
		Search:      c.Query("search"),
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
		SortBy:      c.Query("sort_by"),
		SortDesc:    c.Query("sort_dir") != "asc",
	}

	items, err := h.pickingService.PickedItems(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *PickingHandler) Revert(c *gin.Context) {
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid line id")
		return
	}

	var req model.RevertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
		return
	}

	result, err := h.pickingService.RevertPickedItem(c.Request.Context(), lineID, req.Qty, middleware.UserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *PickingHandler) PickEvents(c *gin.Context) {
	filter := model.PickEventFilter{
		SKU:  c.Query("sku"),
		Kind: c.Query("kind"),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.Add(24 * time.Hour)
			filter.DateTo = &end
		}
	}

	events, err := h.pickingService.PickEvents(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, events)
}

// =====================================================
// HELPERS
// =====================================================

func (h *PickingHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInsufficientRemaining):
		response.ErrorResponse(c, http.StatusConflict, "INSUFFICIENT_REMAINING", err.Error())
	case errors.Is(err, model.ErrLineNotFound), errors.Is(err, ordermodel.ErrOrderNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrInvalidQuantity), errors.Is(err, model.ErrNothingToRevert):
		response.BadRequest(c, err.Error())
	default:
		response.InternalServerError(c, "internal server error")
	}
}
