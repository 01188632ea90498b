package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"warehouse-picking-backend/internal/domains/user/model"
	"warehouse-picking-backend/internal/domains/user/service"
	"warehouse-picking-backend/internal/shared/middleware"
	"warehouse-picking-backend/internal/shared/response"
)

// =====================================================
// USER HANDLER
// =====================================================
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterPublicRoutes registers the unauthenticated auth endpoints.
func (h *UserHandler) RegisterPublicRoutes(router *gin.RouterGroup, loginLimiter gin.HandlerFunc) {
	auth := router.Group("/auth")
	auth.POST("/login", loginLimiter, h.Login)
	auth.POST("/refresh", h.Refresh)
}

// RegisterRoutes registers the authenticated account endpoints plus the user
// administration CRUD.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)
	auth.POST("/change-password", h.ChangePassword)

	users := router.Group("/users")
	users.Use(middleware.RequireRole(model.RoleAdmin, model.RoleSuperadmin))
	users.GET("", h.List)
	users.POST("", h.Create)
	users.PUT("/:id", h.Update)
	users.DELETE("/:id", h.Delete)
	users.POST("/:id/reset-password", h.ResetPassword)
}

// =====================================================
// AUTH
// =====================================================

func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	pair, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

// Logout is a no-op server side; tokens are stateless and the client drops
// them. The endpoint exists so the client has something to call.
func (h *UserHandler) Logout(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *UserHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	pair, err := h.userService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), middleware.UserID(c), req); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"changed": true})
}

// =====================================================
// USER ADMINISTRATION
// =====================================================

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if id == middleware.UserID(c) {
		response.Conflict(c, "cannot delete your own account")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), id, req); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	var vobj validation.ErrorObject
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		response.ErrorResponse(c, http.StatusUnauthorized, model.ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, model.ErrInvalidToken):
		response.ErrorResponse(c, http.StatusUnauthorized, model.ErrCodeInvalidToken, err.Error())
	case errors.Is(err, model.ErrUserInactive):
		response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeUserInactive, err.Error())
	case errors.Is(err, model.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrUsernameTaken):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeUsernameTaken, err.Error())
	case errors.As(err, &verrs), errors.As(err, &vobj):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
	default:
		response.InternalServerError(c, "internal server error")
	}
}
