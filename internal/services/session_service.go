package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix      = "session:"
	userSessionsKeyPrefix = "user_sessions:"
)

// SessionService records token-to-account associations in Redis so sessions
// can be listed and invalidated out of band. Registration is best effort:
// login never fails because the tracker is down.
type SessionService struct {
	client *redis.Client
	log    *zap.Logger
}

// NewSessionService connects to Redis using the given URL.
func NewSessionService(redisURL string, log *zap.Logger) (*SessionService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &SessionService{client: redis.NewClient(opts), log: log}, nil
}

// Ping verifies the Redis connection.
func (s *SessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Register associates a session token with an account for the token's
// lifetime.
func (s *SessionService) Register(accountID uuid.UUID, token string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKeyPrefix+token, accountID.String(), ttl)
	userKey := userSessionsKeyPrefix + accountID.String()
	pipe.SAdd(ctx, userKey, token)
	pipe.Expire(ctx, userKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("session registration failed",
			zap.String("account_id", accountID.String()), zap.Error(err))
		return err
	}
	return nil
}

// Lookup resolves a session token to its account ID, if the session is
// still tracked.
func (s *SessionService) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(value)
}

// ListSessions returns the tracked session tokens for an account.
func (s *SessionService) ListSessions(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	return s.client.SMembers(ctx, userSessionsKeyPrefix+accountID.String()).Result()
}

// Invalidate drops a single session token.
func (s *SessionService) Invalidate(ctx context.Context, accountID uuid.UUID, token string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.SRem(ctx, userSessionsKeyPrefix+accountID.String(), token)
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateAll drops every tracked session for an account.
func (s *SessionService) InvalidateAll(ctx context.Context, accountID uuid.UUID) error {
	tokens, err := s.ListSessions(ctx, accountID)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKeyPrefix+token)
	}
	pipe.Del(ctx, userSessionsKeyPrefix+accountID.String())
	_, err = pipe.Exec(ctx)
	return err
}
