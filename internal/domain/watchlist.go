package domain

import "time"

// WatchlistEntry represents a favorited item
type WatchlistEntry struct {
	ID        string
	ItemID    string
	DateAdded time.Time
}
