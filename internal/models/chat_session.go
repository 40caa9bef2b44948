package models

import (
	"time"

	"aneka-keramik/pkg/llm"
)

type ChatTurnRole string

const (
	ChatTurnUser      ChatTurnRole = "user"
	ChatTurnAssistant ChatTurnRole = "assistant"
)

// ChatTurn is one entry of the human-readable transcript.
type ChatTurn struct {
	Role      ChatTurnRole      `bson:"role" json:"role"`
	Text      string            `bson:"text" json:"text"`
	Products  []ProductResponse `bson:"products,omitempty" json:"products,omitempty"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
}

// ChatSession keeps both the provider-neutral model history and the display transcript.
type ChatSession struct {
	SessionID      string            `bson:"session_id" json:"sessionId"`
	Messages       []llm.Message     `bson:"messages" json:"-"`
	DisplayHistory []ChatTurn        `bson:"display_history" json:"history"`
	LastProducts   []ProductResponse `bson:"last_products" json:"lastProducts"`
	ExpiresAt      time.Time         `bson:"expires_at" json:"expiresAt"`
	Version        int64             `bson:"version" json:"-"`
	Base           `bson:",inline"`
}

func NewChatSession(sessionID string, now time.Time, ttl time.Duration) *ChatSession {
	return &ChatSession{
		SessionID:      sessionID,
		Messages:       []llm.Message{},
		DisplayHistory: []ChatTurn{},
		LastProducts:   []ProductResponse{},
		ExpiresAt:      now.Add(ttl),
		Base: Base{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// UserTurns counts the user entries of the transcript.
func (s *ChatSession) UserTurns() int {
	count := 0
	for _, turn := range s.DisplayHistory {
		if turn.Role == ChatTurnUser {
			count++
		}
	}
	return count
}
