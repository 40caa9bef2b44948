package handlers

import (
	"net/http"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RecommendationHandler struct {
	chatSessionService services.ChatSessionService
}

func NewRecommendationHandler(chatSessionService services.ChatSessionService) *RecommendationHandler {
	if chatSessionService == nil {
		logrus.Fatal("Chat session service cannot be nil")
	}
	return &RecommendationHandler{
		chatSessionService: chatSessionService,
	}
}

// @Summary Recommend
// @Description Run one chat turn, starting a session when sessionId is empty
// @Accept json
// @Produce json
// @Param request body dtos.RecommendationRequest true "Prompt and optional session id"
// @Success 200 {object} dtos.Response
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	var req dtos.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.chatSessionService.Converse(c.Request.Context(), req.Prompt, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    response,
	})
}

// @Summary Chat history
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} dtos.Response
func (h *RecommendationHandler) GetHistory(c *gin.Context) {
	response, err := h.chatSessionService.GetHistory(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    response,
	})
}

func (h *RecommendationHandler) DeleteSession(c *gin.Context) {
	if err := h.chatSessionService.DeleteSession(c.Request.Context(), c.Param("sessionId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.MessageResponse{Message: constants.MsgSessionDeleted},
	})
}
