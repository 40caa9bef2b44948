package repositories

import (
	"context"
	"time"

	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/models"
	"aneka-keramik/pkg/mongodb"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrSessionConflict is returned by Update when the stored session changed (or expired) after it was read.
var ErrSessionConflict = errors.New("chat session was modified concurrently")

type ChatSessionRepository interface {
	EnsureIndexes(ctx context.Context) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.ChatSession, error)
	Create(ctx context.Context, session *models.ChatSession) error
	Update(ctx context.Context, session *models.ChatSession, expectedVersion int64) error
	DeleteBySessionID(ctx context.Context, sessionID string) (bool, error)
}

type chatSessionRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewChatSessionRepository(mongoClient *mongodb.MongoDBClient) ChatSessionRepository {
	return &chatSessionRepository{
		collection: mongoClient.GetCollectionByName(constants.CollectionChatSessions),
		now:        time.Now,
	}
}

func (r *chatSessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to ensure chat_sessions indexes")
	}
	return nil
}

// FindBySessionID returns nil when the session does not exist or has already expired;
// the TTL monitor only sweeps periodically, so expiry is also checked here.
func (r *chatSessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.collection.FindOne(ctx, r.liveFilter(sessionID)).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find chat session %s", sessionID)
	}
	return &session, nil
}

func (r *chatSessionRepository) Create(ctx context.Context, session *models.ChatSession) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return errors.Wrapf(err, "failed to create chat session %s", session.SessionID)
	}
	return nil
}

func (r *chatSessionRepository) Update(ctx context.Context, session *models.ChatSession, expectedVersion int64) error {
	filter := r.liveFilter(session.SessionID)
	filter["version"] = expectedVersion

	update := bson.M{
		"$set": bson.M{
			"messages":        session.Messages,
			"display_history": session.DisplayHistory,
			"last_products":   session.LastProducts,
			"updated_at":      session.UpdatedAt,
			"expires_at":      session.ExpiresAt,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Wrapf(err, "failed to update chat session %s", session.SessionID)
	}
	if result.MatchedCount == 0 {
		return ErrSessionConflict
	}
	session.Version = expectedVersion + 1
	return nil
}

func (r *chatSessionRepository) DeleteBySessionID(ctx context.Context, sessionID string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, r.liveFilter(sessionID))
	if err != nil {
		return false, errors.Wrapf(err, "failed to delete chat session %s", sessionID)
	}
	return result.DeletedCount == 1, nil
}

func (r *chatSessionRepository) liveFilter(sessionID string) bson.M {
	return bson.M{
		"session_id": sessionID,
		"expires_at": bson.M{"$gt": r.now()},
	}
}
