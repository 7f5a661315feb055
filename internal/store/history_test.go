package store

import (
	"context"
	"path/filepath"
	"testing"

	"songfetch/internal/core"

	"go.uber.org/zap"
)

func TestHistoryRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := NewHistory(path, zap.NewNop())
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	records := []core.DeliveryRecord{
		{TrackID: "a", Title: "First", Artist: "A", RequestedBy: "1", Outcome: "delivered"},
		{TrackID: "b", Title: "Second", Artist: "B", RequestedBy: "2", Outcome: "not_found"},
	}
	for _, rec := range records {
		if err := h.Record(ctx, rec); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	got, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	for _, rec := range got {
		if rec.At.IsZero() {
			t.Error("record timestamp should be set")
		}
	}
}
