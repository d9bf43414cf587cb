// Package guard records which 3DS challenge kinds were already handled per
// payment, so duplicate submissions are refused across gateway instances.
package guard

import (
	"context"
	"sync"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "gateway:3ds:handled"

// Guard is a ChallengeGuard that owns a connection.
type Guard interface {
	application.ChallengeGuard
	Close() error
}

type RedisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{
		client: client,
		prefix: keyPrefix,
		ttl:    ttl,
	}
}

// Claim returns false when the key already exists.
func (g *RedisGuard) Claim(ctx context.Context, id domain.PaymentID, kind domain.ChallengeKind) (bool, error) {
	ok, err := g.client.SetNX(ctx, key(g.prefix, id, kind), "1", g.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (g *RedisGuard) Close() error {
	return g.client.Close()
}

type claimKey struct {
	id   domain.PaymentID
	kind domain.ChallengeKind
}

type MemoryGuard struct {
	mu     sync.Mutex
	seen   map[claimKey]time.Time
	ttl    time.Duration
	nextGC time.Time
	now    func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	now := time.Now()
	return &MemoryGuard{
		seen:   make(map[claimKey]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
		now:    time.Now,
	}
}

func (g *MemoryGuard) Claim(_ context.Context, id domain.PaymentID, kind domain.ChallengeKind) (bool, error) {
	now := g.now()
	k := claimKey{id: id, kind: kind}

	g.mu.Lock()
	defer g.mu.Unlock()

	if exp, ok := g.seen[k]; ok && exp.After(now) {
		return false, nil
	}

	g.seen[k] = now.Add(g.ttl)
	if now.After(g.nextGC) {
		for k, exp := range g.seen {
			if exp.Before(now) {
				delete(g.seen, k)
			}
		}
		g.nextGC = now.Add(g.ttl)
	}

	return true, nil
}

func (g *MemoryGuard) Close() error { return nil }

// New builds a Redis guard and falls back to memory when Redis is not
// configured or does not answer. The error reports why the fallback happened.
func New(cfg config.RedisConfig) (Guard, error) {
	ttl := cfg.GuardTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if cfg.Addr == "" {
		return NewMemoryGuard(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewMemoryGuard(ttl), err
	}

	return NewRedisGuard(client, ttl), nil
}

func key(prefix string, id domain.PaymentID, kind domain.ChallengeKind) string {
	return prefix + ":" + id.String() + ":" + string(kind)
}
