package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"finboard/internal/domain"
)

func TestWatchlistRepo_Add(t *testing.T) {
	tests := []struct {
		name          string
		mockError     error
		expectedError bool
	}{
		{name: "inserted", mockError: nil, expectedError: false},
		{name: "database error", mockError: errors.New("connection reset"), expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewWatchlistRepo(db)
			entry := domain.WatchlistEntry{
				ID:        "7b0c4f1e-3c1a-4d4e-9a55-0f6d2b1c9e10",
				ItemID:    "AAPL",
				DateAdded: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
			}

			exp := mock.ExpectExec("INSERT INTO watchlist").
				WithArgs(entry.ID, entry.ItemID, entry.DateAdded)
			if tt.mockError != nil {
				exp.WillReturnError(tt.mockError)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err = repo.Add(context.Background(), entry)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWatchlistRepo_RemoveByItemID(t *testing.T) {
	tests := []struct {
		name          string
		affected      int64
		mockError     error
		expected      int64
		expectedError bool
	}{
		{name: "removed", affected: 1, expected: 1},
		{name: "not present", affected: 0, expected: 0},
		{name: "database error", mockError: errors.New("timeout"), expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewWatchlistRepo(db)

			exp := mock.ExpectExec("DELETE FROM watchlist").WithArgs("AAPL")
			if tt.mockError != nil {
				exp.WillReturnError(tt.mockError)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			n, err := repo.RemoveByItemID(context.Background(), "AAPL")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, n)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWatchlistRepo_List(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedCount int
		expectedError bool
	}{
		{
			name: "two entries",
			mockRows: sqlmock.NewRows([]string{"id", "item_id", "date_added"}).
				AddRow("id-1", "AAPL", time.Now()).
				AddRow("id-2", "MSFT", time.Now()),
			expectedCount: 2,
		},
		{
			name:          "empty",
			mockRows:      sqlmock.NewRows([]string{"id", "item_id", "date_added"}),
			expectedCount: 0,
		},
		{
			name:          "query error",
			mockError:     errors.New("relation does not exist"),
			expectedError: true,
		},
		{
			name: "scan error",
			mockRows: sqlmock.NewRows([]string{"id", "item_id", "date_added"}).
				AddRow("id-1", "AAPL", "not a time"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewWatchlistRepo(db)

			exp := mock.ExpectQuery("SELECT id, item_id, date_added FROM watchlist")
			if tt.mockError != nil {
				exp.WillReturnError(tt.mockError)
			} else {
				exp.WillReturnRows(tt.mockRows)
			}

			entries, err := repo.List(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, entries, tt.expectedCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
