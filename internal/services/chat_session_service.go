package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/models"
	"aneka-keramik/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ChatSessionService interface {
	Converse(ctx context.Context, prompt string, sessionID string) (*dtos.RecommendationResponse, error)
	GetHistory(ctx context.Context, sessionID string) (*dtos.ChatHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type ChatSessionOption func(*chatSessionService)

func WithClock(now func() time.Time) ChatSessionOption {
	return func(s *chatSessionService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) ChatSessionOption {
	return func(s *chatSessionService) {
		s.newID = newID
	}
}

type chatSessionService struct {
	sessionRepo repositories.ChatSessionRepository
	engine      RecommendationEngine
	timeout     time.Duration
	now         func() time.Time
	newID       func() string
	logger      *logrus.Entry
}

// NewChatSessionService runs every turn under timeout; zero disables the deadline.
func NewChatSessionService(sessionRepo repositories.ChatSessionRepository, engine RecommendationEngine, timeout time.Duration, opts ...ChatSessionOption) ChatSessionService {
	s := &chatSessionService{
		sessionRepo: sessionRepo,
		engine:      engine,
		timeout:     timeout,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logrus.WithField("service", "chat_session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *chatSessionService) Converse(ctx context.Context, prompt string, sessionID string) (*dtos.RecommendationResponse, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, BadRequest(constants.MsgPromptRequired)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var session *models.ChatSession
	isNew := sessionID == ""
	if isNew {
		session = models.NewChatSession(s.newID(), s.now(), constants.SessionTTL)
	} else {
		existing, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, NotFound(constants.MsgSessionNotFoundTurn)
		}
		if existing.UserTurns() >= constants.MaxTurnsPerSession {
			return nil, BadRequest(fmt.Sprintf(constants.MsgMaxTurnsReached, constants.MaxTurnsPerSession))
		}
		session = existing
	}

	log := s.logger.WithField("session_id", session.SessionID)
	userAt := s.now()

	result, err := s.engine.Recommend(ctx, prompt, session.Messages)
	if err != nil {
		log.WithError(err).Error("Recommendation failed")
		return nil, err
	}

	now := s.now()
	reply := ""
	if result.Message != nil {
		reply = *result.Message
	}
	session.DisplayHistory = append(session.DisplayHistory,
		models.ChatTurn{Role: models.ChatTurnUser, Text: prompt, Timestamp: userAt},
		models.ChatTurn{Role: models.ChatTurnAssistant, Text: reply, Products: result.Products, Timestamp: now},
	)
	session.Messages = result.UpdatedMessages
	session.LastProducts = result.Products
	if session.LastProducts == nil {
		session.LastProducts = []models.ProductResponse{}
	}
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(constants.SessionTTL)

	if isNew {
		err = s.sessionRepo.Create(ctx, session)
	} else {
		err = s.sessionRepo.Update(ctx, session, session.Version)
	}
	if err != nil {
		log.WithError(err).Error("Failed to save chat session")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"state":    result.State,
		"turns":    session.UserTurns(),
		"products": len(result.Products),
	}).Info("Chat turn completed")

	return &dtos.RecommendationResponse{
		SessionID: session.SessionID,
		Message:   result.Message,
		Products:  result.Products,
		History:   session.DisplayHistory,
	}, nil
}

func (s *chatSessionService) GetHistory(ctx context.Context, sessionID string) (*dtos.ChatHistoryResponse, error) {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, NotFound(constants.MsgSessionNotFound)
	}

	return &dtos.ChatHistoryResponse{
		SessionID:    session.SessionID,
		History:      session.DisplayHistory,
		LastProducts: session.LastProducts,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}, nil
}

func (s *chatSessionService) DeleteSession(ctx context.Context, sessionID string) error {
	deleted, err := s.sessionRepo.DeleteBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return NotFound(constants.MsgSessionNotFound)
	}
	s.logger.WithField("session_id", sessionID).Info("Chat session deleted")
	return nil
}
