package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fkhayef/loanbook/internal/ledger"
)

// ErrSnapshotsDisabled is returned by snapshot operations when no database is configured
var ErrSnapshotsDisabled = errors.New("snapshot storage is disabled")

// Snapshot reasons
const (
	ReasonManual   = "manual"
	ReasonShutdown = "shutdown"
)

// Service exports, imports and snapshots the ledger
type Service struct {
	ledger *ledger.Ledger
	repo   *Repository
}

// NewService creates a new backup service. repo may be nil when persistence is off.
func NewService(l *ledger.Ledger, repo *Repository) *Service {
	return &Service{ledger: l, repo: repo}
}

// Export returns the full export document
func (s *Service) Export() ledger.Snapshot {
	return s.ledger.Export()
}

// Import replaces the ledger with the document. A rejected document changes nothing.
func (s *Service) Import(data []byte) (ledger.Snapshot, error) {
	snap, err := ledger.ParseSnapshot(data)
	if err != nil {
		slog.Warn("Import rejected", "error", err)
		return ledger.Snapshot{}, err
	}
	s.ledger.Restore(snap)
	slog.Info("Ledger imported", "people", len(snap.People), "split_expenses", len(snap.SplitExpenses))
	return snap, nil
}

// WriteWorkbook writes the current state as a spreadsheet
func (s *Service) WriteWorkbook(w io.Writer) error {
	return writeWorkbook(w, s.ledger.Export())
}

// SaveSnapshot stores the current export document
func (s *Service) SaveSnapshot(ctx context.Context, reason string) (*Record, error) {
	if s.repo == nil {
		return nil, ErrSnapshotsDisabled
	}

	snap := s.ledger.Export()
	doc, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	rec, err := s.repo.Save(ctx, reason, doc, len(snap.People))
	if err != nil {
		return nil, err
	}
	slog.Info("Snapshot saved", "snapshot_id", rec.ID, "reason", reason, "people", rec.PeopleCount, "bytes", len(doc))
	return rec, nil
}

// RestoreLatest replaces the ledger with the most recent snapshot
func (s *Service) RestoreLatest(ctx context.Context) (*Record, error) {
	if s.repo == nil {
		return nil, ErrSnapshotsDisabled
	}

	rec, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := ledger.ParseSnapshot(rec.Document)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", rec.ID, err)
	}
	s.ledger.Restore(snap)
	slog.Info("Snapshot restored", "snapshot_id", rec.ID, "created_at", rec.CreatedAt, "people", rec.PeopleCount)
	return rec, nil
}

// Snapshots lists the most recent snapshots
func (s *Service) Snapshots(ctx context.Context, limit int) ([]*Record, error) {
	if s.repo == nil {
		return nil, ErrSnapshotsDisabled
	}
	return s.repo.List(ctx, limit)
}

// LoadLatest restores the latest snapshot if there is one. Used at startup.
func (s *Service) LoadLatest(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if _, err := s.RestoreLatest(ctx); err != nil && !errors.Is(err, ErrNoSnapshot) {
		return err
	}
	return nil
}
