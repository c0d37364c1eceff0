package handler

import (
	"errors"
	"net/http"

	"bcard/internal/middleware"
	"bcard/internal/model"
	"bcard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the public views of accounts and admin edits
type UserHandler struct {
	service service.UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: s, logger: logger}
}

// Helper to get the authenticated caller from context
func getActor(c *gin.Context) (service.Actor, error) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return service.Actor{}, errors.New("user claims not found in context")
	}
	return service.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": err.Error()})
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": err.Error()})
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": err.Error()})
		return
	}

	user, err := h.service.DeleteUser(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterUserRoutes registers user routes. authMW guards everything but the
// listing and adminMW additionally guards role and suspension edits.
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	rg.GET("", h.ListUsers)
	rg.GET("/:id", authMW, h.GetUser)
	rg.PUT("/:id", authMW, h.UpdateProfile)
	rg.PATCH("/:id", authMW, adminMW, h.UpdateUser)
	rg.DELETE("/:id", authMW, h.DeleteUser)
}
