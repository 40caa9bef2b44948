package repositories

import (
	"context"
	"fmt"
	"time"

	"aneka-keramik/internal/constants"
	"aneka-keramik/pkg/redis"

	"github.com/sirupsen/logrus"
)

type TokenRepository interface {
	BlacklistToken(ctx context.Context, token string, expiresIn time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) bool
}

type tokenRepository struct {
	redis redis.IRedisRepositories
}

func NewTokenRepository(redis redis.IRedisRepositories) TokenRepository {
	return &tokenRepository{
		redis: redis,
	}
}

func (r *tokenRepository) BlacklistToken(ctx context.Context, token string, expiresIn time.Duration) error {
	if expiresIn <= 0 {
		// already expired, nothing to revoke
		return nil
	}
	key := fmt.Sprintf(constants.CacheKeyTokenBlacklist, token)

	if err := r.redis.Set(ctx, key, []byte("blacklisted"), expiresIn); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	logrus.WithField("expires_in", expiresIn).Info("Blacklisted access token")
	return nil
}

// IsTokenBlacklisted fails open: a Redis outage does not lock admins out.
func (r *tokenRepository) IsTokenBlacklisted(ctx context.Context, token string) bool {
	key := fmt.Sprintf(constants.CacheKeyTokenBlacklist, token)
	exists, err := r.redis.Exists(ctx, key)
	if err != nil {
		logrus.WithError(err).Warn("Token blacklist lookup failed")
		return false
	}
	return exists
}
