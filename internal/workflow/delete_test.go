package workflow

import (
	"context"
	"testing"

	"github.com/ktcloud-ops/snapguard/internal/cloud/gplatform"
)

func TestSelectExpired_ExactDateMatch(t *testing.T) {
	snapshots := []gplatform.Snapshot{
		{ID: "s1", Name: "data1-2024-01-01"},
		{ID: "s2", Name: "data1-2024-01-02"},
		{ID: "s3", Name: "data2-srvA-2024-01-01"},
		{ID: "s4", Name: "data3-2023-12-31"},
		{ID: "s5", Name: "db-2024-01-01-copy"},
	}

	expired := selectExpired(snapshots, "2024-01-01")

	if len(expired) != 2 {
		t.Fatalf("selectExpired() returned %d snapshots, want 2: %+v", len(expired), expired)
	}
	if expired[0].ID != "s1" || expired[1].ID != "s3" {
		t.Errorf("selectExpired() = %+v, want s1 and s3", expired)
	}
}

func TestRunDelete_IssuesDeletesForCutoff(t *testing.T) {
	var deleted []string

	api := &fakeAPI{
		t: t,
		listSnapshots: func(ctx context.Context) ([]gplatform.Snapshot, error) {
			return []gplatform.Snapshot{
				{ID: "s1", Name: "data1-2024-01-01"},
				{ID: "s2", Name: "data1-2024-01-02"},
			}, nil
		},
		deleteSnapshot: func(ctx context.Context, snapshotID string) (string, error) {
			deleted = append(deleted, snapshotID)
			return "job-del-1", nil
		},
	}

	led := testLedger(t)
	summary, err := runDelete(context.Background(), api, led, "2024-01-01", newPacer(0), testLogger())
	if err != nil {
		t.Fatalf("runDelete() error: %v", err)
	}

	if len(deleted) != 1 || deleted[0] != "s1" {
		t.Errorf("deleted = %v, want [s1]", deleted)
	}

	entries := mustEntries(t, led)
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %v, want 1", entries)
	}
	if entries[0].JobID != "job-del-1" || entries[0].Subject != "data1-2024-01-01" {
		t.Errorf("ledger entry = %+v", entries[0])
	}

	if summary.Count(ItemIssued) != 1 {
		t.Errorf("issued count = %d, want 1", summary.Count(ItemIssued))
	}
}

func TestRunDelete_PartialFailureIsolation(t *testing.T) {
	var deleted []string

	api := &fakeAPI{
		t: t,
		listSnapshots: func(ctx context.Context) ([]gplatform.Snapshot, error) {
			return []gplatform.Snapshot{
				{ID: "s1", Name: "data1-2024-01-01"},
				{ID: "s2", Name: "data2-2024-01-01"},
				{ID: "s3", Name: "data3-2024-01-01"},
			}, nil
		},
		deleteSnapshot: func(ctx context.Context, snapshotID string) (string, error) {
			if snapshotID == "s2" {
				return "", &gplatform.APIError{StatusCode: 500, Body: "internal error"}
			}
			deleted = append(deleted, snapshotID)
			return "job-" + snapshotID, nil
		},
	}

	led := testLedger(t)
	summary, err := runDelete(context.Background(), api, led, "2024-01-01", newPacer(0), testLogger())
	if err != nil {
		t.Fatalf("runDelete() must not fail on per-item errors, got: %v", err)
	}

	if len(deleted) != 2 {
		t.Errorf("deleted = %v, want s1 and s3", deleted)
	}
	if summary.Count(ItemIssued) != 2 || summary.Count(ItemFailed) != 1 {
		t.Errorf("summary counts = issued %d failed %d, want 2/1",
			summary.Count(ItemIssued), summary.Count(ItemFailed))
	}
	if entries := mustEntries(t, led); len(entries) != 2 {
		t.Errorf("ledger entries = %v, want 2", entries)
	}
}

func TestRunDelete_InventoryFailureAbortsCycle(t *testing.T) {
	api := &fakeAPI{
		t: t,
		listSnapshots: func(ctx context.Context) ([]gplatform.Snapshot, error) {
			return nil, &gplatform.APIError{StatusCode: 503, Body: "unavailable"}
		},
	}

	if _, err := runDelete(context.Background(), api, testLedger(t), "2024-01-01", newPacer(0), testLogger()); err == nil {
		t.Fatal("runDelete() with failing snapshot listing did not fail")
	}
}
