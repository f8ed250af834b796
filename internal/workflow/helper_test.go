package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/ktcloud-ops/snapguard/internal/cloud/gplatform"
	"github.com/ktcloud-ops/snapguard/internal/ledger"
)

// fakeAPI implements API with overridable behavior per test. Unset operations
// fail the test if called.
type fakeAPI struct {
	t *testing.T

	listDisks      func(ctx context.Context) ([]gplatform.Disk, error)
	listSnapshots  func(ctx context.Context) ([]gplatform.Snapshot, error)
	createSnapshot func(ctx context.Context, diskID, name string) (string, error)
	deleteSnapshot func(ctx context.Context, snapshotID string) (string, error)
	queryJob       func(ctx context.Context, jobID string) (gplatform.JobOutcome, error)
}

func (f *fakeAPI) ListDisks(ctx context.Context) ([]gplatform.Disk, error) {
	if f.listDisks == nil {
		f.t.Fatal("unexpected ListDisks call")
	}
	return f.listDisks(ctx)
}

func (f *fakeAPI) ListSnapshots(ctx context.Context) ([]gplatform.Snapshot, error) {
	if f.listSnapshots == nil {
		f.t.Fatal("unexpected ListSnapshots call")
	}
	return f.listSnapshots(ctx)
}

func (f *fakeAPI) CreateSnapshot(ctx context.Context, diskID, name string) (string, error) {
	if f.createSnapshot == nil {
		f.t.Fatal("unexpected CreateSnapshot call")
	}
	return f.createSnapshot(ctx, diskID, name)
}

func (f *fakeAPI) DeleteSnapshot(ctx context.Context, snapshotID string) (string, error) {
	if f.deleteSnapshot == nil {
		f.t.Fatal("unexpected DeleteSnapshot call")
	}
	return f.deleteSnapshot(ctx, snapshotID)
}

func (f *fakeAPI) QueryJob(ctx context.Context, jobID string) (gplatform.JobOutcome, error) {
	if f.queryJob == nil {
		f.t.Fatal("unexpected QueryJob call")
	}
	return f.queryJob(ctx, jobID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	return ledger.New(filepath.Join(t.TempDir(), "job_list"))
}

func mustEntries(t *testing.T, led *ledger.Ledger) []ledger.Entry {
	t.Helper()
	entries, err := led.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	return entries
}
