package workflow

import (
	"context"
	"testing"

	"github.com/ktcloud-ops/snapguard/internal/cloud/gplatform"
	"github.com/ktcloud-ops/snapguard/internal/ledger"
)

func TestBuildReport(t *testing.T) {
	outcomes := map[string]gplatform.JobOutcome{
		"job-1": {Status: gplatform.JobSucceeded},
		"job-2": {Status: gplatform.JobPending},
		"job-3": {
			Status:    gplatform.JobFailed,
			ErrorText: "snapshot limit",
			Command:   "com.cloud.api.commands.CreateSnapshotCmd",
		},
		"job-4": {Status: gplatform.JobSucceeded},
	}

	api := &fakeAPI{
		t: t,
		queryJob: func(ctx context.Context, jobID string) (gplatform.JobOutcome, error) {
			outcome, ok := outcomes[jobID]
			if !ok {
				t.Fatalf("unexpected QueryJob(%q)", jobID)
			}
			return outcome, nil
		},
	}

	createEntries := []ledger.Entry{
		{JobID: "job-1", Subject: "data1"},
		{JobID: "job-2", Subject: "data2"},
		{JobID: "job-3", Subject: "data3"},
	}
	deleteEntries := []ledger.Entry{
		{JobID: "job-4", Subject: "data1-2024-01-01"},
	}

	report := buildReport(context.Background(), api, createEntries, deleteEntries, fixedDate(t, "2024-06-01"), testLogger())

	if report.Date != "2024-06-01" {
		t.Errorf("Date = %q, want 2024-06-01", report.Date)
	}

	wantCreated := Tally{Success: 1, Pending: 1, Failed: 1, Total: 3}
	if report.Created != wantCreated {
		t.Errorf("Created = %+v, want %+v", report.Created, wantCreated)
	}

	wantDeleted := Tally{Success: 1, Total: 1}
	if report.Deleted != wantDeleted {
		t.Errorf("Deleted = %+v, want %+v", report.Deleted, wantDeleted)
	}
}

func TestBuildReport_PollFailureCountsAsFailed(t *testing.T) {
	api := &fakeAPI{
		t: t,
		queryJob: func(ctx context.Context, jobID string) (gplatform.JobOutcome, error) {
			return gplatform.JobOutcome{}, &gplatform.APIError{StatusCode: 500, Body: "boom"}
		},
	}

	entries := []ledger.Entry{{JobID: "job-1", Subject: "data1"}}
	report := buildReport(context.Background(), api, entries, nil, fixedDate(t, "2024-06-01"), testLogger())

	want := Tally{Failed: 1, Total: 1}
	if report.Created != want {
		t.Errorf("Created = %+v, want %+v", report.Created, want)
	}
}

func TestBuildReport_RepollIsStateless(t *testing.T) {
	// A job that was pending on the first poll and succeeded on the second
	// must be tallied from the fresh poll, never from cached state.
	polls := 0
	api := &fakeAPI{
		t: t,
		queryJob: func(ctx context.Context, jobID string) (gplatform.JobOutcome, error) {
			polls++
			if polls == 1 {
				return gplatform.JobOutcome{Status: gplatform.JobPending}, nil
			}
			return gplatform.JobOutcome{Status: gplatform.JobSucceeded}, nil
		},
	}

	entries := []ledger.Entry{{JobID: "job-1", Subject: "data1"}}

	first := buildReport(context.Background(), api, entries, nil, fixedDate(t, "2024-06-01"), testLogger())
	second := buildReport(context.Background(), api, entries, nil, fixedDate(t, "2024-06-01"), testLogger())

	if first.Created.Pending != 1 {
		t.Errorf("first poll Pending = %d, want 1", first.Created.Pending)
	}
	if second.Created.Success != 1 {
		t.Errorf("second poll Success = %d, want 1", second.Created.Success)
	}
}

func TestReportRender(t *testing.T) {
	report := Report{
		Date:    "2024-06-01",
		Created: Tally{Success: 2, Pending: 1, Total: 3},
		Deleted: Tally{Success: 1, Total: 2, Failed: 1},
	}

	want := "2024-06-01 snapshot backup results\n" +
		"created: 2 / 3 (processing 1)\n" +
		"deleted: 1 / 2 (processing 0)"

	if got := report.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestShortCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"com.cloud.api.commands.CreateSnapshotCmd", "CreateSnapshotCmd"},
		{"DeleteSnapshotCmd", "DeleteSnapshotCmd"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := shortCommand(tt.in); got != tt.want {
			t.Errorf("shortCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
