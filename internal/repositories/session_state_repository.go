package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "projectdesk:dashboard:" // projectdesk:dashboard:{session_id}

// SessionStateStore persists dashboard state between requests
type SessionStateStore interface {
	Get(ctx context.Context, sessionID string) (*models.DashboardState, error)
	Save(ctx context.Context, state *models.DashboardState) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionRepository keeps dashboard state in Redis with a sliding TTL
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, ttl: ttl}
}

func (r *RedisSessionRepository) Get(ctx context.Context, sessionID string) (*models.DashboardState, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard session: %w", err)
	}

	var state models.DashboardState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dashboard session: %w", err)
	}
	return &state, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, state *models.DashboardState) error {
	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+state.SessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save dashboard session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// MemorySessionRepository keeps dashboard state in process memory. Used when
// no Redis address is configured. Expired sessions are dropped when read and
// by a sweep that runs from Save at most once per TTL.
type MemorySessionRepository struct {
	mu        sync.RWMutex
	ttl       time.Duration
	sessions  map[string]memorySession
	nextSweep time.Time
	now       func() time.Time
}

type memorySession struct {
	data      []byte
	expiresAt time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) Get(ctx context.Context, sessionID string) (*models.DashboardState, error) {
	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	if now := r.now(); now.After(session.expiresAt) {
		r.mu.Lock()
		if current, ok := r.sessions[sessionID]; ok && now.After(current.expiresAt) {
			delete(r.sessions, sessionID)
		}
		r.mu.Unlock()
		return nil, models.ErrSessionNotFound
	}

	// Stored as JSON so callers never share draft slices with the store.
	var state models.DashboardState
	if err := json.Unmarshal(session.data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *MemorySessionRepository) Save(ctx context.Context, state *models.DashboardState) error {
	if state.SessionID == "" {
		return errors.New("session ID is required")
	}
	now := r.now()
	state.UpdatedAt = now
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !now.Before(r.nextSweep) {
		r.purgeExpiredLocked(now)
		r.nextSweep = now.Add(r.ttl)
	}
	r.sessions[state.SessionID] = memorySession{data: data, expiresAt: now.Add(r.ttl)}
	return nil
}

func (r *MemorySessionRepository) purgeExpiredLocked(now time.Time) {
	for id, session := range r.sessions {
		if now.After(session.expiresAt) {
			delete(r.sessions, id)
		}
	}
}

func (r *MemorySessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
