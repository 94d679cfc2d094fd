package capability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curesight/triage-platform/pkg/logging"
)

type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CacheObserver reports cache effectiveness; implemented by the metrics
// package. May be nil.
type CacheObserver interface {
	ObserveTTSCache(hit bool)
}

// CachedSynthesizer content-addresses synthesized audio in Redis so repeated
// requests for identical text and language are served without resynthesis.
// Cache errors degrade to a direct synthesis call.
type CachedSynthesizer struct {
	redis    redisAPI
	next     Synthesizer
	logger   *logging.Logger
	observer CacheObserver
}

var _ Synthesizer = (*CachedSynthesizer)(nil)

// NewCachedSynthesizer wraps next with a Redis cache. next may be an
// UnavailableSynthesizer; cached entries are still served in that case.
func NewCachedSynthesizer(client redisAPI, next Synthesizer, logger *logging.Logger, observer CacheObserver) *CachedSynthesizer {
	if client == nil {
		panic("capability: redis client cannot be nil")
	}
	if next == nil {
		next = UnavailableSynthesizer{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedSynthesizer{redis: client, next: next, logger: logger, observer: observer}
}

// CacheKey addresses audio by language and text content.
func CacheKey(text, lang string) string {
	sum := sha256.Sum256([]byte(lang + ":::" + text))
	return "tts:" + hex.EncodeToString(sum[:])
}

// Synthesize returns cached audio when present, otherwise synthesizes and
// stores the result. Entries have no TTL: the address is a pure function of
// the input.
func (c *CachedSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	key := CacheKey(text, lang)

	audio, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		c.observe(true)
		return audio, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("capability: tts cache read failed", "error", err)
	}
	c.observe(false)

	audio, err = c.next.Synthesize(ctx, text, lang)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("capability: synthesis failed: %w", err)
	}

	if err := c.redis.Set(ctx, key, audio, 0).Err(); err != nil {
		c.logger.Warn("capability: tts cache write failed", "error", err, "key", key)
	}
	return audio, nil
}

func (c *CachedSynthesizer) observe(hit bool) {
	if c.observer != nil {
		c.observer.ObserveTTSCache(hit)
	}
}
