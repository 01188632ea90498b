package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/internal/domains/order/service"
	"warehouse-picking-backend/internal/shared/middleware"
	"warehouse-picking-backend/internal/shared/response"
)

// =====================================================
// ORDER HANDLER
// =====================================================
type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers all order routes. The admin group carries the
// role gate for state reversals and splitting.
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.GET("/status", h.StatusBoard)
		orders.GET("/ready-to-pack", h.ReadyToPack)
		orders.GET("/packed", h.Packed)
		orders.GET("/:id", h.GetDetail)
		orders.POST("/:id/mark-packed", h.MarkPacked)
		orders.PATCH("/:id/update-message", h.UpdateMessage)
	}

	adminOrders := router.Group("/orders")
	adminOrders.Use(middleware.RequireRole("admin", "superadmin"))
	{
		adminOrders.POST("/:id/revert-to-picking", h.RevertToPicking)
		adminOrders.POST("/:id/change-state", h.ChangeState)
		adminOrders.POST("/:id/split", h.Split)
		adminOrders.POST("/:id/unsplit", h.Unsplit)
	}
}

func (h *OrderHandler) StatusBoard(c *gin.Context) {
	rows, err := h.orderService.StatusBoard(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *OrderHandler) ReadyToPack(c *gin.Context) {
	rows, err := h.orderService.ReadyToPack(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *OrderHandler) Packed(c *gin.Context) {
	filter := model.PackedFilter{
		Search: c.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

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

	rows, total, err := h.orderService.Packed(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, rows, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

func (h *OrderHandler) GetDetail(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	detail, err := h.orderService.GetDetail(c.Request.Context(), orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

func (h *OrderHandler) MarkPacked(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.orderService.MarkPacked(c.Request.Context(), orderID, middleware.UserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

func (h *OrderHandler) RevertToPicking(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.orderService.RevertToPicking(c.Request.Context(), orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

func (h *OrderHandler) ChangeState(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req model.ChangeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
		return
	}

	order, err := h.orderService.ChangeState(c.Request.Context(), orderID, middleware.UserID(c), req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

func (h *OrderHandler) UpdateMessage(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req model.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
		return
	}

	order, err := h.orderService.UpdateMessage(c.Request.Context(), orderID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

func (h *OrderHandler) Split(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req model.SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
		return
	}

	order, err := h.orderService.Split(c.Request.Context(), orderID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

func (h *OrderHandler) Unsplit(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Unsplit(c.Request.Context(), orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

// =====================================================
// HELPERS
// =====================================================

func (h *OrderHandler) orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return 0, false
	}
	return id, true
}

func (h *OrderHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrOrderNotFound), errors.Is(err, model.ErrLineNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrInvalidTransition):
		response.ErrorResponse(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, model.ErrInvalidSplit), errors.Is(err, model.ErrInvalidStatus):
		response.BadRequest(c, err.Error())
	default:
		response.InternalServerError(c, "internal server error")
	}
}
