package service

import (
	"context"
	"fmt"

	"book-catalog-api/internal/domains/book/model"
	"book-catalog-api/pkg/logger"
)

// Cached pages are keyed by a catalog generation. Every write bumps the
// generation so old keys are never read again and expire by TTL.
const generationKey = "books:gen"

func (s *BookService) generation(ctx context.Context) (int64, bool) {
	var gen int64
	if _, err := s.cache.Get(ctx, generationKey, &gen); err != nil {
		logger.Warn("cache GET generation failed", map[string]interface{}{"error": err.Error()})
		return 0, false
	}
	return gen, true
}

// pageCacheKey trả về "" khi không dùng được cache
func (s *BookService) pageCacheKey(ctx context.Context, prefix string, page model.PageRequest) string {
	if s.cache == nil {
		return ""
	}
	gen, ok := s.generation(ctx)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:g%d:p%d:s%d", prefix, gen, page.PageNumber, page.PageSize)
}

func (s *BookService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if key == "" || s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn("cache GET failed", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}
	return found
}

func (s *BookService) cacheSet(ctx context.Context, key string, value interface{}) {
	if key == "" || s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logger.Warn("cache SET failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

// invalidate bumps the generation after a committed write
func (s *BookService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Increment(ctx, generationKey); err != nil {
		logger.Warn("cache generation bump failed", map[string]interface{}{"error": err.Error()})
	}
}
