package capability

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSynthesizer struct {
	calls int
	audio []byte
	err   error
}

func (s *countingSynthesizer) Synthesize(context.Context, string, string) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

type recordingObserver struct {
	hits, misses int
}

func (o *recordingObserver) ObserveTTSCache(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func newCacheUnderTest(t *testing.T, next Synthesizer, obs CacheObserver) *CachedSynthesizer {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCachedSynthesizer(client, next, nil, obs)
}

func TestSynthesizeCachesByContent(t *testing.T) {
	synth := &countingSynthesizer{audio: []byte("mp3-bytes")}
	obs := &recordingObserver{}
	cache := newCacheUnderTest(t, synth, obs)
	ctx := context.Background()

	first, err := cache.Synthesize(ctx, "rest and hydrate", "en-US")
	require.NoError(t, err)
	second, err := cache.Synthesize(ctx, "rest and hydrate", "en-US")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, synth.calls, "second request must be served from cache")
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
}

func TestSynthesizeDistinguishesLanguage(t *testing.T) {
	synth := &countingSynthesizer{audio: []byte("mp3-bytes")}
	cache := newCacheUnderTest(t, synth, nil)
	ctx := context.Background()

	_, err := cache.Synthesize(ctx, "rest and hydrate", "en-US")
	require.NoError(t, err)
	_, err = cache.Synthesize(ctx, "rest and hydrate", "hi-IN")
	require.NoError(t, err)

	assert.Equal(t, 2, synth.calls, "different languages must not share cache entries")
}

func TestSynthesizeUnavailableProvider(t *testing.T) {
	cache := newCacheUnderTest(t, UnavailableSynthesizer{}, nil)

	_, err := cache.Synthesize(context.Background(), "hello", "en-US")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSynthesizeServesCacheEvenWhenProviderGone(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	warm := NewCachedSynthesizer(client, &countingSynthesizer{audio: []byte("cached")}, nil, nil)
	_, err := warm.Synthesize(ctx, "hello", "en-US")
	require.NoError(t, err)

	cold := NewCachedSynthesizer(client, UnavailableSynthesizer{}, nil, nil)
	audio, err := cold.Synthesize(ctx, "hello", "en-US")
	require.NoError(t, err)
	assert.Equal(t, []byte("cached"), audio)
}

func TestSynthesizeWrapsProviderError(t *testing.T) {
	synth := &countingSynthesizer{err: errors.New("quota exceeded")}
	cache := newCacheUnderTest(t, synth, nil)

	_, err := cache.Synthesize(context.Background(), "hello", "en-US")
	assert.ErrorContains(t, err, "quota exceeded")
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestCacheKeyStable(t *testing.T) {
	assert.Equal(t, CacheKey("hello", "en-US"), CacheKey("hello", "en-US"))
	assert.NotEqual(t, CacheKey("hello", "en-US"), CacheKey("hello", "en-GB"))
	assert.NotEqual(t, CacheKey("hello", "en-US"), CacheKey("goodbye", "en-US"))
}
