package notes

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO doctor_notes").
		WithArgs("q-123", "follow up in one week", "dr.patel").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	repo := NewRepository(db)
	n := &Note{QueryID: "q-123", Note: "follow up in one week", Author: "dr.patel"}
	require.NoError(t, repo.Add(context.Background(), n))

	assert.Equal(t, int64(7), n.ID)
	assert.Equal(t, created, n.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "query_id", "note", "author", "created_at"}).
		AddRow(int64(1), "q-123", "first note", "dr.patel", time.Now().Add(-time.Hour)).
		AddRow(int64(2), "q-123", "second note", "", time.Now())
	mock.ExpectQuery("SELECT id, query_id, note, author, created_at").
		WithArgs("q-123").
		WillReturnRows(rows)

	repo := NewRepository(db)
	notes, err := repo.ListForQuery(context.Background(), "q-123")
	require.NoError(t, err)

	require.Len(t, notes, 2)
	assert.Equal(t, "first note", notes[0].Note)
	assert.Equal(t, "second note", notes[1].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForQueryEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, query_id, note, author, created_at").
		WithArgs("q-absent").
		WillReturnRows(sqlmock.NewRows([]string{"id", "query_id", "note", "author", "created_at"}))

	repo := NewRepository(db)
	notes, err := repo.ListForQuery(context.Background(), "q-absent")
	require.NoError(t, err)

	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}
