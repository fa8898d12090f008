package testutil

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"finboard/internal/domain"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestArticle creates a test article
func NewTestArticle(id string) domain.Article {
	return domain.Article{
		ID:          id,
		Title:       "Article " + id,
		Description: "Description of " + id,
		URL:         "https://example.com/" + id,
		Language:    "en",
		PublishedAt: time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC),
		Source:      "example.com",
		Categories:  []string{"business"},
	}
}

// NewTestArticlePage creates a page of n articles numbered from first
func NewTestArticlePage(first, n, found int) *domain.ArticlePage {
	page := &domain.ArticlePage{Found: found, Articles: make([]domain.Article, 0, n)}
	for i := 0; i < n; i++ {
		page.Articles = append(page.Articles, NewTestArticle(fmt.Sprintf("a%d", first+i)))
	}
	return page
}

// NewTestEntry creates a test watchlist entry
func NewTestEntry(itemID string) domain.WatchlistEntry {
	return domain.WatchlistEntry{
		ID:        "id-" + itemID,
		ItemID:    itemID,
		DateAdded: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}
