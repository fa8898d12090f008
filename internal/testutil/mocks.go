package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"finboard/internal/domain"
)

// MockWatchlistRepository is a mock for WatchlistRepository
type MockWatchlistRepository struct {
	mock.Mock
}

func (m *MockWatchlistRepository) Add(ctx context.Context, entry domain.WatchlistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWatchlistRepository) RemoveByItemID(ctx context.Context, itemID string) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWatchlistRepository) List(ctx context.Context) ([]domain.WatchlistEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WatchlistEntry), args.Error(1)
}

// MockArticleSource is a mock for ArticleSource
type MockArticleSource struct {
	mock.Mock
}

func (m *MockArticleSource) FetchArticles(ctx context.Context, q domain.ArticleQuery) (*domain.ArticlePage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArticlePage), args.Error(1)
}

// MockSessionStore is a mock for SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Load() (domain.Session, error) {
	args := m.Called()
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *MockSessionStore) Save(s domain.Session) error {
	args := m.Called(s)
	return args.Error(0)
}

// FakeCredentialStore is an in-memory CredentialStore. PutErr and RemoveErr,
// when set, are returned instead of mutating the map.
type FakeCredentialStore struct {
	mu        sync.Mutex
	Creds     map[string]string
	PutErr    error
	RemoveErr error
}

func NewFakeCredentialStore() *FakeCredentialStore {
	return &FakeCredentialStore{Creds: make(map[string]string)}
}

func (f *FakeCredentialStore) Get(username string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.Creds[username]
	return h, ok
}

func (f *FakeCredentialStore) Put(username, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PutErr != nil {
		return f.PutErr
	}
	f.Creds[username] = hash
	return nil
}

func (f *FakeCredentialStore) Remove(username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	delete(f.Creds, username)
	return nil
}

func (f *FakeCredentialStore) Contains(username string) bool {
	_, ok := f.Get(username)
	return ok
}

func (f *FakeCredentialStore) AllUsernames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.Creds))
	for n := range f.Creds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FakeSessionStore keeps the last saved session in memory
type FakeSessionStore struct {
	mu      sync.Mutex
	Session domain.Session
	Saves   int
}

func (f *FakeSessionStore) Load() (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Session, nil
}

func (f *FakeSessionStore) Save(s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Session = s
	f.Saves++
	return nil
}

// FakeWatchlistRepository is an in-memory WatchlistRepository. AddErr and
// RemoveErr, when set, fail the corresponding call.
type FakeWatchlistRepository struct {
	mu        sync.Mutex
	Entries   []domain.WatchlistEntry
	AddErr    error
	RemoveErr error
	ListErr   error
}

func (f *FakeWatchlistRepository) Add(_ context.Context, entry domain.WatchlistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddErr != nil {
		return f.AddErr
	}
	for _, e := range f.Entries {
		if e.ItemID == entry.ItemID {
			return nil
		}
	}
	f.Entries = append(f.Entries, entry)
	return nil
}

func (f *FakeWatchlistRepository) RemoveByItemID(_ context.Context, itemID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return 0, f.RemoveErr
	}
	kept := f.Entries[:0]
	var removed int64
	for _, e := range f.Entries {
		if e.ItemID == itemID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	f.Entries = kept
	return removed, nil
}

func (f *FakeWatchlistRepository) List(_ context.Context) ([]domain.WatchlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]domain.WatchlistEntry, len(f.Entries))
	copy(out, f.Entries)
	return out, nil
}
