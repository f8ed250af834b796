package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ktcloud-ops/snapguard/internal/cloud/gplatform"
	"github.com/ktcloud-ops/snapguard/internal/config"
	"github.com/ktcloud-ops/snapguard/internal/ledger"
)

// Tally is the point-in-time classification of one ledger's jobs.
type Tally struct {
	Success int
	Pending int
	Failed  int
	Total   int
}

// Report is the aggregate handed verbatim to the notification transport.
type Report struct {
	Date    string
	Created Tally
	Deleted Tally
}

// Render formats the report as the operator-facing message.
func (r Report) Render() string {
	return fmt.Sprintf(
		"%s snapshot backup results\n"+
			"created: %d / %d (processing %d)\n"+
			"deleted: %d / %d (processing %d)",
		r.Date,
		r.Created.Success, r.Created.Total, r.Created.Pending,
		r.Deleted.Success, r.Deleted.Total, r.Deleted.Pending)
}

// RunReportWorkflow reconciles both job ledgers against the provider's
// job-status API and delivers the aggregate report.
//
// Reconciliation is stateless and performs no retries: it reports the state at
// poll time, and a later run naturally reflects jobs that have since finished.
// Notification delivery failure is logged but never affects orchestration
// state.
func RunReportWorkflow(cfg *config.Config, timeoutSeconds int, logLevel string, notifier Notifier) error {
	logger := SetupLogger(logLevel).With(
		"workflow", "report",
		"run_id", fmt.Sprintf("run-%s", uuid.New().String()),
	)

	logger.Info("Initializing reconciliation and report cycle")

	ctx, cancel := workflowContext(timeoutSeconds)
	defer cancel()

	client, err := initClient(cfg)
	if err != nil {
		logger.Error("G-platform client initialization failed", "error", err)
		return err
	}

	createEntries, err := ledger.New(cfg.CreateLedgerPath()).ReadAll()
	if err != nil {
		logger.Error("Create ledger unreadable", "error", err)
		return err
	}
	deleteEntries, err := ledger.New(cfg.DeleteLedgerPath()).ReadAll()
	if err != nil {
		logger.Error("Delete ledger unreadable", "error", err)
		return err
	}

	report := buildReport(ctx, client, createEntries, deleteEntries, time.Now(), logger)

	logger.Info("Reconciliation complete",
		"created_success", report.Created.Success,
		"created_total", report.Created.Total,
		"created_pending", report.Created.Pending,
		"deleted_success", report.Deleted.Success,
		"deleted_total", report.Deleted.Total,
		"deleted_pending", report.Deleted.Pending)

	if err := notifier.Notify(report.Render()); err != nil {
		logger.Error("Report notification delivery failed", "error", err)
	}

	return nil
}

// buildReport polls every ledger entry and classifies the outcomes. Poll
// failures and failed jobs land in the same bucket: neither counts as success,
// and pending is reserved for jobs the provider confirmed are still running.
func buildReport(ctx context.Context, api API, createEntries, deleteEntries []ledger.Entry, now time.Time, logger *slog.Logger) Report {
	return Report{
		Date:    now.Format(dateLayout),
		Created: tallyJobs(ctx, api, createEntries, logger.With("ledger", "create")),
		Deleted: tallyJobs(ctx, api, deleteEntries, logger.With("ledger", "delete")),
	}
}

func tallyJobs(ctx context.Context, api API, entries []ledger.Entry, logger *slog.Logger) Tally {
	tally := Tally{Total: len(entries)}

	for _, entry := range entries {
		outcome, err := api.QueryJob(ctx, entry.JobID)
		if err != nil {
			logger.Error("Job status poll failed", "job_id", entry.JobID, "subject", entry.Subject, "error", err)
			tally.Failed++
			continue
		}

		switch outcome.Status {
		case gplatform.JobSucceeded:
			tally.Success++
		case gplatform.JobPending:
			tally.Pending++
		default:
			tally.Failed++
			logger.Error("Snapshot job failed",
				"command", shortCommand(outcome.Command),
				"subject", entry.Subject,
				"error_text", outcome.ErrorText)
		}
	}

	return tally
}

// shortCommand trims the provider's fully qualified command class name down to
// its last segment for readable logs.
func shortCommand(command string) string {
	if i := strings.LastIndex(command, "."); i >= 0 {
		return command[i+1:]
	}
	return command
}
