package sandbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"codecoach/internal/platform/cache"

	"github.com/rs/zerolog"
)

// CachedExecutor memoizes successful runs. Failures are never cached.
type CachedExecutor struct {
	inner Executor
	cache cache.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedExecutor(inner Executor, c cache.Cache, ttl time.Duration, log zerolog.Logger) *CachedExecutor {
	return &CachedExecutor{inner: inner, cache: c, ttl: ttl, log: log}
}

func cacheKey(req Request) string {
	version := req.Version
	if version == "" {
		version = "*"
	}
	h := sha256.New()
	for _, part := range []string{req.Language, version, req.Source, req.Stdin} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "sandbox:" + hex.EncodeToString(h.Sum(nil))
}

func (e *CachedExecutor) Execute(ctx context.Context, req Request) (string, error) {
	key := cacheKey(req)

	var output string
	err := e.cache.Get(ctx, key, &output)
	if err == nil {
		e.log.Debug().Str("lang", req.Language).Msg("cache hit for code execution")
		return output, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		e.log.Warn().Err(err).Msg("sandbox cache read failed")
	}

	output, err = e.inner.Execute(ctx, req)
	if err != nil {
		return "", err
	}

	if err := e.cache.Set(ctx, key, output, e.ttl); err != nil {
		e.log.Warn().Err(err).Msg("sandbox cache write failed")
	}
	return output, nil
}
