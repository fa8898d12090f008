package newsapi

import (
	"context"
	"crypto/sha1"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finboard/internal/domain"
	"finboard/internal/repository"
)

// PageCache is the subset of cache.Cache used by CachedSource
type PageCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// CachedSource serves article pages from a cache and falls through to the
// wrapped source on a miss. Cache failures never fail a fetch.
type CachedSource struct {
	source repository.ArticleSource
	cache  PageCache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewCachedSource wraps source with cache
func NewCachedSource(source repository.ArticleSource, cache PageCache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// FetchArticles implements repository.ArticleSource
func (s *CachedSource) FetchArticles(ctx context.Context, q domain.ArticleQuery) (*domain.ArticlePage, error) {
	key := s.key(q)

	var cached domain.ArticlePage
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Article cache read failed",
			zap.String("key", key),
			zap.Error(err),
		)
		// unreadable entries are dropped
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.logger.Debug("Article cache invalidate failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	if found {
		return &cached, nil
	}

	page, err := s.source.FetchArticles(ctx, q)
	if err != nil {
		return nil, err
	}

	// empty pages are not cached so new articles show up on the next request
	if len(page.Articles) > 0 {
		if err := s.cache.Set(ctx, key, page, s.ttl); err != nil {
			s.logger.Warn("Article cache write failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return page, nil
}

// key is unique per day, search term and page
func (s *CachedSource) key(q domain.ArticleQuery) string {
	raw := fmt.Sprintf("%s %s %d", s.now().Format(publishedAfterLayout), q.Search, q.Page)
	return fmt.Sprintf("news:%x", sha1.Sum([]byte(raw)))
}
