package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-picking-backend/internal/domains/stockexception/model"
	"warehouse-picking-backend/internal/domains/stockexception/service"
	"warehouse-picking-backend/internal/shared/response"
)

// =====================================================
// STOCK EXCEPTION HANDLER
// =====================================================
type StockExceptionHandler struct {
	service service.StockExceptionService
}

func NewStockExceptionHandler(svc service.StockExceptionService) *StockExceptionHandler {
	return &StockExceptionHandler{service: svc}
}

func (h *StockExceptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/out-of-stock")
	{
		routes.GET("", h.List)
		routes.GET("/aggregate", h.Aggregate)
		routes.GET("/export", h.Export)
		routes.POST("/:id/resolve", h.Resolve)
		routes.POST("/:id/toggle-ordered", h.ToggleOrdered)
		routes.POST("/:id/toggle-na-cancel", h.ToggleNaCancel)
	}
}

func (h *StockExceptionHandler) List(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	exceptions, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exceptions)
}

func (h *StockExceptionHandler) Aggregate(c *gin.Context) {
	rows, err := h.service.Aggregate(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// Export streams the filtered report; format=xlsx switches from the default
// CSV body.
func (h *StockExceptionHandler) Export(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	if c.Query("format") == "xlsx" {
		data, err := h.service.ExportXLSX(c.Request.Context(), filter)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="out-of-stock.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		return
	}

	data, err := h.service.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="out-of-stock.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *StockExceptionHandler) Resolve(c *gin.Context) {
	id, ok := h.exceptionID(c)
	if !ok {
		return
	}

	exc, err := h.service.Resolve(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exc)
}

func (h *StockExceptionHandler) ToggleOrdered(c *gin.Context) {
	id, ok := h.exceptionID(c)
	if !ok {
		return
	}

	exc, err := h.service.ToggleOrderedFromCompany(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exc)
}

func (h *StockExceptionHandler) ToggleNaCancel(c *gin.Context) {
	id, ok := h.exceptionID(c)
	if !ok {
		return
	}

	exc, err := h.service.ToggleNaCancel(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exc)
}

// =====================================================
// HELPERS
// =====================================================

func (h *StockExceptionHandler) parseFilter(c *gin.Context) (model.Filter, bool) {
	filter := model.Filter{
		Search:   c.Query("search"),
		SortBy:   c.Query("sort_by"),
		SortDesc: c.Query("sort_dir") == "desc" || c.Query("sort_by") == "",
	}

	if resolved := c.Query("resolved"); resolved != "" {
		v, err := strconv.ParseBool(resolved)
		if err != nil {
			response.BadRequest(c, "invalid resolved filter")
			return filter, false
		}
		filter.Resolved = &v
	}
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

	return filter, true
}

func (h *StockExceptionHandler) exceptionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid stock exception id")
		return 0, false
	}
	return id, true
}

func (h *StockExceptionHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrExceptionNotFound):
		response.NotFound(c, err.Error())
	default:
		response.InternalServerError(c, "internal server error")
	}
}
