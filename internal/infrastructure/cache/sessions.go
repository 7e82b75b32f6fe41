package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"baitlab/internal/domain/models"
	"baitlab/pkg/logger"
)

// SessionStore persists engagement sessions in Redis. Every mutation
// rewrites the full session document and refreshes the TTL, so an
// abandoned conversation ages out on its own.
type SessionStore struct {
	cache  *RedisCache
	ttl    time.Duration
	logger *logger.Logger
}

// NewSessionStore creates a session store with the given idle TTL.
func NewSessionStore(cache *RedisCache, ttl time.Duration, log *logger.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{
		cache:  cache,
		ttl:    ttl,
		logger: log.WithComponent("session_store"),
	}
}

func (s *SessionStore) sessionKey(id string) string {
	return KeySessionPrefix + id
}

// Load fetches the session for id, creating a fresh one if none exists.
// Sessions deserialized from storage are backfilled so optional maps and
// slices are always non-nil.
func (s *SessionStore) Load(ctx context.Context, id string) (*models.Session, bool, error) {
	var session models.Session
	err := s.cache.GetJSON(ctx, s.sessionKey(id), &session)
	if err == nil {
		session.Backfill()
		return &session, false, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, false, err
	}
	fresh := models.NewSession(id)
	s.logger.Info().Str("session_id", id).Msg("Created new session")
	return fresh, true, nil
}

// Save writes the session back and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, session *models.Session) error {
	return s.cache.SetJSON(ctx, s.sessionKey(session.ID), session, s.ttl)
}

// Lock takes the per-session mutex guarding concurrent turns for the
// same conversation. Returns false if another turn holds it.
func (s *SessionStore) Lock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return s.cache.AcquireLock(ctx, id, ttl)
}

// Unlock releases the per-session mutex.
func (s *SessionStore) Unlock(ctx context.Context, id string) error {
	return s.cache.ReleaseLock(ctx, id)
}
