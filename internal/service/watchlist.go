package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finboard/internal/domain"
	"finboard/internal/notify"
	"finboard/internal/repository"
)

// Watchlist keeps the set of watched item ids. Every mutation is written to the
// repository first; the in-memory set only changes after the write succeeded.
type Watchlist struct {
	mu     sync.Mutex
	repo   repository.WatchlistRepository
	hub    *notify.Hub
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	items map[string]struct{}
}

// NewWatchlist creates an empty watchlist; call Load to read the repository
func NewWatchlist(repo repository.WatchlistRepository, hub *notify.Hub, logger *zap.Logger) *Watchlist {
	return &Watchlist{
		repo:   repo,
		hub:    hub,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		items:  make(map[string]struct{}),
	}
}

// Load replaces the in-memory set with the repository contents. A read failure
// is logged and yields an empty set.
func (w *Watchlist) Load(ctx context.Context) []string {
	entries, err := w.repo.List(ctx)
	if err != nil {
		w.logger.Error("Failed to load watchlist", zap.Error(err))
		entries = nil
	}

	w.mu.Lock()
	w.items = itemSet(entries)
	items := w.itemsLocked()
	w.mu.Unlock()

	w.logger.Info("Watchlist loaded", zap.Int("items", len(items)))
	w.hub.Publish(notify.TopicWatchlist, items)
	return items
}

// Resync reloads the set from the repository. Unlike Load it keeps the current
// set when the read fails.
func (w *Watchlist) Resync(ctx context.Context) error {
	entries, err := w.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("resync watchlist: %w", err)
	}

	next := itemSet(entries)

	w.mu.Lock()
	changed := !sameSet(w.items, next)
	w.items = next
	items := w.itemsLocked()
	w.mu.Unlock()

	if changed {
		w.logger.Info("Watchlist changed on resync", zap.Int("items", len(items)))
		w.hub.Publish(notify.TopicWatchlist, items)
	}
	return nil
}

// Toggle removes itemID when present and adds it otherwise
func (w *Watchlist) Toggle(ctx context.Context, itemID string) error {
	if itemID == "" {
		return domain.ErrEmptyItemID
	}

	w.mu.Lock()
	var (
		changed bool
		err     error
	)
	if _, ok := w.items[itemID]; ok {
		changed, err = w.removeLocked(ctx, itemID)
	} else {
		changed, err = w.addLocked(ctx, itemID)
	}
	items := w.itemsLocked()
	w.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		w.hub.Publish(notify.TopicWatchlist, items)
	}
	return nil
}

// Add stores itemID. Adding an id that is already watched does nothing.
func (w *Watchlist) Add(ctx context.Context, itemID string) error {
	if itemID == "" {
		return domain.ErrEmptyItemID
	}

	w.mu.Lock()
	changed, err := w.addLocked(ctx, itemID)
	items := w.itemsLocked()
	w.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		w.hub.Publish(notify.TopicWatchlist, items)
	}
	return nil
}

// Remove deletes every stored entry for itemID
func (w *Watchlist) Remove(ctx context.Context, itemID string) error {
	if itemID == "" {
		return domain.ErrEmptyItemID
	}

	w.mu.Lock()
	changed, err := w.removeLocked(ctx, itemID)
	items := w.itemsLocked()
	w.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		w.hub.Publish(notify.TopicWatchlist, items)
	}
	return nil
}

// Contains reports whether itemID is watched
func (w *Watchlist) Contains(itemID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.items[itemID]
	return ok
}

// Items returns the watched ids in lexical order
func (w *Watchlist) Items() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.itemsLocked()
}

func (w *Watchlist) addLocked(ctx context.Context, itemID string) (bool, error) {
	if _, ok := w.items[itemID]; ok {
		return false, nil
	}

	entry := domain.WatchlistEntry{
		ID:        w.newID(),
		ItemID:    itemID,
		DateAdded: w.now(),
	}
	if err := w.repo.Add(ctx, entry); err != nil {
		w.logger.Error("Failed to add watchlist item",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return false, fmt.Errorf("add %s to watchlist: %w", itemID, err)
	}

	w.items[itemID] = struct{}{}
	return true, nil
}

func (w *Watchlist) removeLocked(ctx context.Context, itemID string) (bool, error) {
	removed, err := w.repo.RemoveByItemID(ctx, itemID)
	if err != nil {
		w.logger.Error("Failed to remove watchlist item",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return false, fmt.Errorf("remove %s from watchlist: %w", itemID, err)
	}

	_, present := w.items[itemID]
	delete(w.items, itemID)
	return present || removed > 0, nil
}

func (w *Watchlist) itemsLocked() []string {
	items := make([]string, 0, len(w.items))
	for id := range w.items {
		items = append(items, id)
	}
	sort.Strings(items)
	return items
}

func itemSet(entries []domain.WatchlistEntry) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e.ItemID] = struct{}{}
	}
	return set
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
