package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/sirupsen/logrus"

	"user-service/internal/domain"
	"user-service/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AppInfo is reported by the info endpoint.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	store  Pinger
	info   AppInfo
	logger *logrus.Logger
}

func NewHandler(users service.UserService, store Pinger, info AppInfo, logger *logrus.Logger) *Handler {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	}

	return &Handler{
		users:  users,
		store:  store,
		info:   info,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger))
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/users", h.listUsers)
		api.GET("/users/:id", h.getUser)
		api.GET("/users/username/:username", h.getUserByUsername)
		api.POST("/users", h.createUser)
		api.PUT("/users/:id", h.updateUser)
		api.DELETE("/users/:id", h.deleteUser)

		api.GET("/actuator/health", h.health)
		api.GET("/actuator/info", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"app": h.info})
		})
	}
}

type userRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,notblank"`
}

func (r userRequest) toDTO() domain.UserDTO {
	return domain.UserDTO{
		Username: strings.TrimSpace(r.Username),
		Email:    strings.TrimSpace(r.Email),
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.GetAllUsers(c.Request.Context())
	if err != nil {
		h.internalError(c, "list users", err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, found, err := h.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "get user", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrUserNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) getUserByUsername(c *gin.Context) {
	user, found, err := h.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.internalError(c, "get user by username", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrUserNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) createUser(c *gin.Context) {
	var req userRequest
	if !bindUser(c, &req) {
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.toDTO())
	if err != nil {
		h.writeError(c, "create user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req userRequest
	if !bindUser(c, &req) {
		return
	}

	user, found, err := h.users.UpdateUser(c.Request.Context(), id, req.toDTO())
	if err != nil {
		h.writeError(c, "update user", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrUserNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.users.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "delete user", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrUserNotFound.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WithError(err).Warn("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	if errors.Is(err, domain.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrUsernameTaken.Error()})
		return
	}
	h.internalError(c, op, err)
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	h.logger.WithFields(logrus.Fields{
		"op":         op,
		"request_id": c.GetString(requestIDKey),
	}).WithError(err).Error("storage failure")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
