// Package rediscache caches serialized, immutable policy/policy-set
// documents in Redis, keyed by PolicyId+Version. The AES-GCM envelope
// encryption and the pipelined rate limiter follow the same pattern as
// the organization/session caches elsewhere in this codebase, but the
// cached payload here is always an immutable policy document, never a
// per-request access decision: caching a decision under a key derived
// from subject/resource/action risks handing one requester's decision
// back to a different requester whose request happens to hash the
// same way. Decisions are never cached here or anywhere else in this
// module; only policy documents are.
package rediscache

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/echo-xacml/pdp/internal/logging"
)

type Cache struct {
	client        *redis.Client
	encryptionKey []byte
	defaultTTL    time.Duration
}

// New constructs a Cache against addr, deriving its AES-256-GCM key
// from encryptionKey (must be exactly 32 bytes).
func New(addr string, encryptionKey []byte, defaultTTL time.Duration) (*Cache, error) {
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("rediscache: encryption key must be 32 bytes, got %d", len(encryptionKey))
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("rediscache: failed to connect to Redis: %w", err)
	}

	return &Cache{client: client, encryptionKey: encryptionKey, defaultTTL: defaultTTL}, nil
}

func (c *Cache) Close() error { return c.client.Close() }

func policyKey(policyID, version string) string {
	if version == "" {
		version = "unversioned"
	}
	return fmt.Sprintf("policydoc:%s:%s", policyID, version)
}

// PutDocument caches raw (already-serialized, e.g. canonical XML or
// JSON) policy-document bytes under (policyID, version).
func (c *Cache) PutDocument(ctx context.Context, policyID, version string, raw []byte) error {
	encrypted, err := c.encrypt(raw)
	if err != nil {
		return fmt.Errorf("rediscache: failed to encrypt policy document: %w", err)
	}
	key := policyKey(policyID, version)
	if err := c.client.Set(ctx, key, base64.StdEncoding.EncodeToString(encrypted), c.defaultTTL).Err(); err != nil {
		return fmt.Errorf("rediscache: failed to cache policy document: %w", err)
	}
	logging.Debug("policy document cached", zap.String("policyID", policyID), zap.String("version", version))
	return nil
}

// GetDocument returns the cached raw document, or (nil, nil) on a cache miss.
func (c *Cache) GetDocument(ctx context.Context, policyID, version string) ([]byte, error) {
	key := policyKey(policyID, version)
	encoded, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rediscache: failed to get policy document: %w", err)
	}
	encrypted, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("rediscache: failed to decode policy document: %w", err)
	}
	return c.decrypt(encrypted)
}

func (c *Cache) InvalidateDocument(ctx context.Context, policyID, version string) error {
	return c.client.Del(ctx, policyKey(policyID, version)).Err()
}

func (c *Cache) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *Cache) decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("rediscache: ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// RateLimit implements a Redis-backed sliding-window limiter, used by
// cmd/pdpserver's router-wide middleware to throttle every route.
func (c *Cache) RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := c.client.Pipeline()
	now := time.Now().UnixNano()
	rlKey := fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, rlKey, "0", fmt.Sprintf("%d", now-per.Nanoseconds()))
	pipe.ZAdd(ctx, rlKey, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, rlKey)
	pipe.Expire(ctx, rlKey, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("rediscache: failed to execute rate limit commands: %w", err)
	}
	count := cmds[2].(*redis.IntCmd).Val()
	return count <= int64(limit), nil
}
