package notes

import (
	"context"
	"database/sql"
	"time"
)

// Note is a clinician follow-up attached to a persisted query record.
type Note struct {
	ID        int64     `json:"id"`
	QueryID   string    `json:"query_id"`
	Note      string    `json:"note"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Add(ctx context.Context, n *Note) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO doctor_notes (query_id, note, author)
		VALUES ($1, $2, $3) RETURNING id, created_at`,
		n.QueryID, n.Note, n.Author).Scan(&n.ID, &n.CreatedAt)
}

func (r *Repository) ListForQuery(ctx context.Context, queryID string) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, query_id, note, author, created_at
		FROM doctor_notes WHERE query_id = $1 ORDER BY created_at ASC`, queryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.QueryID, &n.Note, &n.Author, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if out == nil {
		out = []Note{}
	}
	return out, rows.Err()
}
