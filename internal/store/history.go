package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"songfetch/internal/core"
)

// History persists terminal job outcomes to SQLite.
type History struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistory opens (and if needed creates) the history database at path.
func NewHistory(path string, logger *zap.Logger) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		track_id TEXT NOT NULL,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		requested_by TEXT NOT NULL,
		outcome TEXT NOT NULL,
		delivered_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_deliveries_at ON deliveries(delivered_at);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &History{
		db:     db,
		logger: logger.Named("history"),
	}, nil
}

// Record appends one terminal outcome.
func (h *History) Record(ctx context.Context, rec core.DeliveryRecord) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO deliveries (track_id, title, artist, requested_by, outcome, delivered_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.TrackID, rec.Title, rec.Artist, rec.RequestedBy, rec.Outcome, at)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	h.logger.Debug("Recorded delivery",
		zap.String("track_id", rec.TrackID),
		zap.String("outcome", rec.Outcome))

	return nil
}

// Recent returns the latest n records, newest first.
func (h *History) Recent(ctx context.Context, n int) ([]core.DeliveryRecord, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT track_id, title, artist, requested_by, outcome, delivered_at
		 FROM deliveries ORDER BY delivered_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []core.DeliveryRecord
	for rows.Next() {
		var rec core.DeliveryRecord
		if err := rows.Scan(&rec.TrackID, &rec.Title, &rec.Artist, &rec.RequestedBy, &rec.Outcome, &rec.At); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
