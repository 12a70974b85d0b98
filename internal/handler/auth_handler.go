package handler

import (
	"errors"
	"net/http"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/service"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests.
// Responses keep the flat shape the mobile client already parses.
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.MessageResponse(c, http.StatusBadRequest, "All fields are required")
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	switch {
	case errors.Is(err, common.ErrMissingFields):
		common.MessageResponse(c, http.StatusBadRequest, "All fields are required")
		return
	case errors.Is(err, common.ErrUserAlreadyExists):
		common.MessageResponse(c, http.StatusBadRequest, "User already exists")
		return
	case err != nil:
		pkglogger.FromContext(c.Request.Context()).Error().Err(err).Msg("registration failed")
		common.MessageResponse(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.MessageResponse(c, http.StatusBadRequest, "Invalid credentials")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if errors.Is(err, common.ErrInvalidCredentials) {
		common.MessageResponse(c, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		pkglogger.FromContext(c.Request.Context()).Error().Err(err).Msg("login failed")
		common.MessageResponse(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, resp)
}
