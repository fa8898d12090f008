package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"finboard/internal/domain"
	"finboard/internal/notify"
	"finboard/internal/repository"
)

// Alert texts
const (
	AlertNoMoreArticles = "No more articles found."
	alertNetworkPrefix  = "Network error: "
	alertDecodePrefix   = "Decoding error: "
)

// FeedSnapshot is the article feed state published to observers
type FeedSnapshot struct {
	Articles    []domain.Article
	Query       string
	CurrentPage int
	TotalFound  int
	Loading     bool
	Alert       string
}

// NewsFeed accumulates article pages for a search query. At most one page
// request is in flight; a request made meanwhile is dropped.
type NewsFeed struct {
	mu      sync.Mutex
	source  repository.ArticleSource
	hub     *notify.Hub
	metrics *FetchMetrics
	logger  *zap.Logger

	state       domain.FetchState
	generation  uint64
	query       string
	articles    []domain.Article
	currentPage int
	totalFound  int
	alert       string
}

// NewNewsFeed creates an idle, empty feed
func NewNewsFeed(source repository.ArticleSource, hub *notify.Hub, metrics *FetchMetrics, logger *zap.Logger) *NewsFeed {
	return &NewsFeed{
		source:      source,
		hub:         hub,
		metrics:     metrics,
		logger:      logger,
		state:       domain.FetchIdle,
		currentPage: 1,
	}
}

// FetchPage requests one page for query. It returns false without doing anything
// when another request is in flight. Page 1 replaces the accumulated articles,
// later pages are appended.
func (f *NewsFeed) FetchPage(ctx context.Context, query string, page int) bool {
	if page < 1 {
		page = 1
	}

	f.mu.Lock()
	if f.state == domain.FetchFetching {
		f.mu.Unlock()
		f.metrics.drop()
		f.logger.Debug("Article fetch dropped, request in flight",
			zap.String("query", query),
			zap.Int("page", page),
		)
		return false
	}
	f.state = domain.FetchFetching
	f.query = query
	gen := f.generation
	f.mu.Unlock()
	f.publish()

	result, err := f.source.FetchArticles(ctx, domain.ArticleQuery{Search: query, Page: page})

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		f.metrics.observe(OutcomeDiscarded)
		return true
	}
	f.state = domain.FetchIdle

	switch {
	case err != nil:
		f.alert = alertFor(err)
		f.metrics.observe(outcomeFor(err))
		f.logger.Warn("Article fetch failed",
			zap.String("query", query),
			zap.Int("page", page),
			zap.Error(err),
		)

	default:
		if page == 1 {
			f.articles = append([]domain.Article(nil), result.Articles...)
		} else {
			f.articles = append(f.articles, result.Articles...)
		}
		f.totalFound = result.Found
		f.currentPage = page

		if len(result.Articles) == 0 {
			f.alert = AlertNoMoreArticles
			f.metrics.observe(OutcomeEmpty)
		} else {
			f.metrics.observe(OutcomeSuccess)
		}
	}
	f.mu.Unlock()

	f.publish()
	return true
}

// LoadMoreIfNeeded fetches the next page when lastSeenID is the last accumulated
// article and the source reported more articles than are loaded.
func (f *NewsFeed) LoadMoreIfNeeded(ctx context.Context, lastSeenID, query string) bool {
	f.mu.Lock()
	n := len(f.articles)
	if n == 0 || n >= f.totalFound || f.articles[n-1].ID != lastSeenID {
		f.mu.Unlock()
		return false
	}
	next := f.currentPage + 1
	f.mu.Unlock()

	return f.FetchPage(ctx, query, next)
}

// Reset clears the feed. A request in flight is allowed to finish but its
// result is discarded.
func (f *NewsFeed) Reset() {
	f.mu.Lock()
	f.generation++
	f.state = domain.FetchIdle
	f.query = ""
	f.articles = nil
	f.currentPage = 1
	f.totalFound = 0
	f.alert = ""
	f.mu.Unlock()

	f.publish()
}

// Articles returns the accumulated articles in arrival order
func (f *NewsFeed) Articles() []domain.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Article(nil), f.articles...)
}

// Query returns the search of the latest request
func (f *NewsFeed) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// CurrentPage returns the page of the latest successful request
func (f *NewsFeed) CurrentPage() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentPage
}

// TotalFound returns the total reported by the latest successful request
func (f *NewsFeed) TotalFound() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalFound
}

// IsLoading reports whether a request is in flight
func (f *NewsFeed) IsLoading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == domain.FetchFetching
}

// Alert returns the pending user-visible message, empty when there is none
func (f *NewsFeed) Alert() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alert
}

// DismissAlert clears the pending message
func (f *NewsFeed) DismissAlert() {
	f.mu.Lock()
	f.alert = ""
	f.mu.Unlock()

	f.publish()
}

// Snapshot returns a copy of the whole feed state
func (f *NewsFeed) Snapshot() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *NewsFeed) snapshotLocked() FeedSnapshot {
	return FeedSnapshot{
		Articles:    append([]domain.Article(nil), f.articles...),
		Query:       f.query,
		CurrentPage: f.currentPage,
		TotalFound:  f.totalFound,
		Loading:     f.state == domain.FetchFetching,
		Alert:       f.alert,
	}
}

func (f *NewsFeed) publish() {
	f.hub.Publish(notify.TopicArticles, f.Snapshot())
}

func alertFor(err error) string {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		if errors.Is(fe.Kind, domain.ErrArticleDecode) {
			return alertDecodePrefix + fe.Err.Error()
		}
		return alertNetworkPrefix + fe.Err.Error()
	}
	if errors.Is(err, domain.ErrArticleDecode) {
		return alertDecodePrefix + err.Error()
	}
	return alertNetworkPrefix + err.Error()
}

func outcomeFor(err error) string {
	if errors.Is(err, domain.ErrArticleDecode) {
		return OutcomeDecode
	}
	return OutcomeNetwork
}
