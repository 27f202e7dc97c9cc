package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL 游客购物车会话默认有效期
const DefaultSessionTTL = 72 * time.Hour

// SessionStore 游客购物车会话存储。
// Get 命中会顺延有效期（滑动过期）。
type SessionStore interface {
	Create(ctx context.Context) (string, error)
	Get(ctx context.Context, sessionID string) (bool, error)
	Invalidate(ctx context.Context, sessionID string) error
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// RedisSessionStore Redis 会话存储
type RedisSessionStore struct {
	ttl time.Duration
}

// NewRedisSessionStore 创建 Redis 会话存储
func NewRedisSessionStore(ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{ttl: ttl}
}

// Create 创建会话
func (s *RedisSessionStore) Create(ctx context.Context) (string, error) {
	sessionID := uuid.NewString()
	if err := SetJSON(ctx, sessionKey(sessionID), time.Now().Unix(), s.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Get 校验会话有效性并顺延有效期
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}
	var createdAt int64
	hit, err := GetJSON(ctx, sessionKey(sessionID), &createdAt)
	if err != nil || !hit {
		return false, err
	}
	if err := SetJSON(ctx, sessionKey(sessionID), createdAt, s.ttl); err != nil {
		return true, err
	}
	return true, nil
}

// Invalidate 作废会话
func (s *RedisSessionStore) Invalidate(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	return Del(ctx, sessionKey(sessionID))
}

// MemorySessionStore 进程内会话存储（Redis 不可用时的回退），
// 后台协程定期清理过期会话。
type MemorySessionStore struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemorySessionStore 创建内存会话存储并启动清理协程
func NewMemorySessionStore(ttl, janitorInterval time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if janitorInterval <= 0 {
		janitorInterval = 10 * time.Minute
	}
	store := &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]time.Time),
		stop:     make(chan struct{}),
	}
	go store.janitor(janitorInterval)
	return store
}

// Create 创建会话
func (s *MemorySessionStore) Create(_ context.Context) (string, error) {
	sessionID := uuid.NewString()
	s.mu.Lock()
	s.sessions[sessionID] = time.Now().Add(s.ttl)
	s.mu.Unlock()
	return sessionID, nil
}

// Get 校验会话有效性并顺延有效期
func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if now.After(expiry) {
		delete(s.sessions, sessionID)
		return false, nil
	}
	s.sessions[sessionID] = now.Add(s.ttl)
	return true, nil
}

// Invalidate 作废会话
func (s *MemorySessionStore) Invalidate(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, strings.TrimSpace(sessionID))
	s.mu.Unlock()
	return nil
}

// Close 停止清理协程
func (s *MemorySessionStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *MemorySessionStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, expiry := range s.sessions {
				if now.After(expiry) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
