package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"finboard/internal/domain"
)

// WatchlistRepo implements repository.WatchlistRepository
type WatchlistRepo struct {
	db *sql.DB
}

// NewWatchlistRepo creates a new watchlist repository
func NewWatchlistRepo(db *sql.DB) *WatchlistRepo {
	return &WatchlistRepo{db: db}
}

// Add inserts an entry. An entry whose item is already present is ignored.
func (r *WatchlistRepo) Add(ctx context.Context, entry domain.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (id, item_id, date_added)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, entry.ID, entry.ItemID, entry.DateAdded); err != nil {
		return fmt.Errorf("insert watchlist entry: %w", err)
	}
	return nil
}

// RemoveByItemID deletes every entry for itemID and returns how many were removed
func (r *WatchlistRepo) RemoveByItemID(ctx context.Context, itemID string) (int64, error) {
	query := `DELETE FROM watchlist WHERE item_id = $1`

	res, err := r.db.ExecContext(ctx, query, itemID)
	if err != nil {
		return 0, fmt.Errorf("delete watchlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete watchlist entry: %w", err)
	}
	return n, nil
}

// List returns all entries, oldest first
func (r *WatchlistRepo) List(ctx context.Context) ([]domain.WatchlistEntry, error) {
	query := `
		SELECT id, item_id, date_added
		FROM watchlist
		ORDER BY date_added ASC, item_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []domain.WatchlistEntry
	for rows.Next() {
		var e domain.WatchlistEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.DateAdded); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
