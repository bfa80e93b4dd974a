package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/loanbook/internal/database"
)

// ErrNoSnapshot is returned when the snapshots table is empty
var ErrNoSnapshot = errors.New("no snapshot stored")

// Record is one stored export document
type Record struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`
	PeopleCount int       `json:"peopleCount"`
	CreatedAt   time.Time `json:"createdAt"`
	Document    []byte    `json:"-"`
}

// Repository handles snapshot persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new snapshot repository with database dependency injected
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a new snapshot
func (r *Repository) Save(ctx context.Context, reason string, document []byte, peopleCount int) (*Record, error) {
	rec := &Record{
		ID:          uuid.NewString(),
		Reason:      reason,
		PeopleCount: peopleCount,
		CreatedAt:   time.Now().UTC(),
		Document:    document,
	}

	query := r.db.Rebind(`
		INSERT INTO snapshots (id, reason, document, people_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.Reason, string(rec.Document), rec.PeopleCount, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return rec, nil
}

// Latest retrieves the most recent snapshot with its document
func (r *Repository) Latest(ctx context.Context) (*Record, error) {
	query := `
		SELECT id, reason, document, people_count, created_at
		FROM snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`

	rec := &Record{}
	var document string
	err := r.db.QueryRowContext(ctx, query).Scan(
		&rec.ID,
		&rec.Reason,
		&document,
		&rec.PeopleCount,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	rec.Document = []byte(document)
	return rec, nil
}

// List returns snapshot metadata, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]*Record, error) {
	query := r.db.Rebind(`
		SELECT id, reason, people_count, created_at
		FROM snapshots
		ORDER BY created_at DESC
		LIMIT ?
	`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(&rec.ID, &rec.Reason, &rec.PeopleCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
