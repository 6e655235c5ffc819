package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/streamcart/streamcart_backend/logger"
)

// TokenBlacklist records revoked tokens until they expire. Entries live in
// Redis when it is reachable and in process memory otherwise.
type TokenBlacklist struct {
	rdb    *redis.Client
	mu     sync.RWMutex
	memory map[string]time.Time
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb, memory: make(map[string]time.Time)}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}

func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return nil
	}
	key := blacklistKey(token)
	if b.rdb != nil {
		err := b.rdb.Set(ctx, key, 1, ttl).Err()
		if err == nil {
			return nil
		}
		logger.Warn().Err(err).Msg("redis blacklist write failed, keeping token in memory")
	}
	b.mu.Lock()
	b.memory[key] = expiry
	b.mu.Unlock()
	return nil
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	key := blacklistKey(token)

	b.mu.RLock()
	expiry, ok := b.memory[key]
	b.mu.RUnlock()
	if ok && time.Now().Before(expiry) {
		return true
	}

	if b.rdb == nil {
		return false
	}
	n, err := b.rdb.Exists(ctx, key).Result()
	if err != nil {
		logger.Warn().Err(err).Msg("redis blacklist lookup failed")
		return false
	}
	return n > 0
}

// CleanupBlacklist periodically removes expired in-memory entries until ctx
// is done.
func (b *TokenBlacklist) CleanupBlacklist(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.mu.Lock()
			for key, expiry := range b.memory {
				if now.After(expiry) {
					delete(b.memory, key)
				}
			}
			b.mu.Unlock()
		}
	}
}
