package dtos

import (
	"time"

	"aneka-keramik/internal/models"
)

type RecommendationRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"sessionId"`
}

type RecommendationResponse struct {
	SessionID string                   `json:"sessionId"`
	Message   *string                  `json:"message"`
	Products  []models.ProductResponse `json:"products"`
	History   []models.ChatTurn        `json:"history"`
}

type ChatHistoryResponse struct {
	SessionID    string                   `json:"sessionId"`
	History      []models.ChatTurn        `json:"history"`
	LastProducts []models.ProductResponse `json:"lastProducts"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
