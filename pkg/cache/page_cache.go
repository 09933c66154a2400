// Package cache keeps rendered public invitation pages in Redis. A nil client turns every call into a miss.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"nika.id/configs/configslog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultPageTTL = 2 * time.Minute

// PageCache is versioned per slug: Invalidate bumps the version so every guest variant
// of that page goes stale at once without scanning keys.
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{rdb: rdb, ttl: ttl}
}

func (p *PageCache) Enabled() bool {
	return p != nil && p.rdb != nil
}

func versionKey(slug string) string {
	return "nika:page:ver:" + strings.ToLower(slug)
}

// guestHash keeps the case of guest since the greeting prints the name as given.
func guestHash(guest string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(guest)))
	return hex.EncodeToString(sum[:8])
}

func (p *PageCache) pageKey(ctx context.Context, slug, guest string) (string, error) {
	ver, err := p.rdb.Get(ctx, versionKey(slug)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("nika:page:%s:%d:%s", strings.ToLower(slug), ver, guestHash(guest)), nil
}

func (p *PageCache) Get(ctx context.Context, slug, guest string) ([]byte, bool) {
	if !p.Enabled() {
		return nil, false
	}
	key, err := p.pageKey(ctx, slug, guest)
	if err != nil {
		configslog.Log.Warn("PageCache.Get: version lookup failed", zap.String("slug", slug), zap.Error(err))
		return nil, false
	}
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			configslog.Log.Warn("PageCache.Get failed", zap.String("slug", slug), zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

func (p *PageCache) Set(ctx context.Context, slug, guest string, body []byte) {
	if !p.Enabled() {
		return
	}
	key, err := p.pageKey(ctx, slug, guest)
	if err != nil {
		return
	}
	if err := p.rdb.Set(ctx, key, body, p.ttl).Err(); err != nil {
		configslog.Log.Warn("PageCache.Set failed", zap.String("slug", slug), zap.Error(err))
	}
}

func (p *PageCache) Invalidate(ctx context.Context, slug string) {
	if !p.Enabled() || slug == "" {
		return
	}
	if err := p.rdb.Incr(ctx, versionKey(slug)).Err(); err != nil {
		configslog.Log.Warn("PageCache.Invalidate failed", zap.String("slug", slug), zap.Error(err))
	}
}
