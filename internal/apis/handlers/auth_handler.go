package handlers

import (
	"net/http"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/apis/middlewares"
	"aneka-keramik/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	if authService == nil {
		logrus.Fatal("Auth service cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
	}
}

// @Summary Login
// @Description Login the admin user
// @Accept json
// @Produce json
// @Param loginRequest body dtos.LoginRequest true "Login request"
// @Success 200 {object} dtos.Response
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    response,
	})
}

// @Summary Register
// @Description Create a user; requires an authenticated admin
// @Accept json
// @Produce json
// @Param registerRequest body dtos.RegisterRequest true "Register request"
// @Success 201 {object} dtos.Response
func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dtos.Response{
		Success: true,
		Data:    user,
	})
}

// @Summary Logout
// @Description Revoke the current access token
// @Produce json
// @Success 200 {object} dtos.Response
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetString(middlewares.ContextAccessToken)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.MessageResponse{Message: "Successfully logged out"},
	})
}

// @Summary Get current user
// @Produce json
// @Success 200 {object} dtos.Response
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), c.GetString(middlewares.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    user,
	})
}
