package repository

import (
	"context"

	"finboard/internal/domain"
)

// CredentialStore maps usernames to password hashes.
// Implementations never fail on read: an unreadable backing store behaves as empty.
type CredentialStore interface {
	Get(username string) (string, bool)
	Put(username, passwordHash string) error
	Remove(username string) error
	Contains(username string) bool
	AllUsernames() []string
}

// SessionStore persists the session between process restarts
type SessionStore interface {
	Load() (domain.Session, error)
	Save(session domain.Session) error
}

// WatchlistRepository defines durable watchlist operations
type WatchlistRepository interface {
	Add(ctx context.Context, entry domain.WatchlistEntry) error
	RemoveByItemID(ctx context.Context, itemID string) (int64, error)
	List(ctx context.Context) ([]domain.WatchlistEntry, error)
}

// ArticleSource fetches one page of articles
type ArticleSource interface {
	FetchArticles(ctx context.Context, query domain.ArticleQuery) (*domain.ArticlePage, error)
}
