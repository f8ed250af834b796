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
	"golang.org/x/time/rate"
)

// RunDeleteWorkflow executes one retention enforcement cycle.
//
// The cutoff is a single calendar date, today minus the configured retention
// days. Only snapshots whose embedded date token equals the cutoff exactly are
// deleted; older dates from a missed cycle are left alone. That keeps deletion
// idempotent per calendar day but means a skipped cycle orphans that day's
// snapshots. Inherited behavior; widening it to "older than" would change the
// deletion volume and needs an explicit decision.
func RunDeleteWorkflow(cfg *config.Config, timeoutSeconds int, logLevel string) error {
	days, err := cfg.RetentionDays()
	if err != nil {
		return err
	}
	cutoff := time.Now().AddDate(0, 0, -days).Format(dateLayout)

	logger := SetupLogger(logLevel).With(
		"workflow", "delete",
		"cutoff", cutoff,
		"run_id", fmt.Sprintf("run-%s", uuid.New().String()),
	)

	logger.Info("Initializing snapshot deletion cycle")

	ctx, cancel := workflowContext(timeoutSeconds)
	defer cancel()

	client, err := initClient(cfg)
	if err != nil {
		logger.Error("G-platform client initialization failed", "error", err)
		return err
	}

	summary, err := runDelete(ctx, client, ledger.New(cfg.DeleteLedgerPath()), cutoff, newPacer(cfg.Pacing.Interval), logger)
	if err != nil {
		logger.Error("Snapshot deletion cycle aborted", "error", err)
		return err
	}

	logger.Info("Snapshot deletion cycle summary",
		"cutoff", summary.Date,
		"candidates", len(summary.Results),
		"issued", summary.Count(ItemIssued),
		"failed", summary.Count(ItemFailed))

	return nil
}

// runDelete lists the snapshot inventory, selects the cutoff's snapshots and
// issues one delete call per match with the same pacing and non-fatal per-item
// discipline as the create cycle.
func runDelete(ctx context.Context, api API, led *ledger.Ledger, cutoff string, pacer *rate.Limiter, logger *slog.Logger) (CycleSummary, error) {
	summary := CycleSummary{Date: cutoff}

	snapshots, err := api.ListSnapshots(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing snapshots: %w", err)
	}

	candidates := selectExpired(snapshots, cutoff)
	logger.Info("Snapshot inventory fetched",
		"snapshot_count", len(snapshots),
		"candidate_count", len(candidates))

	if err := led.Reset(); err != nil {
		return summary, fmt.Errorf("resetting delete ledger: %w", err)
	}

	for i, snap := range candidates {
		if err := ctx.Err(); err != nil {
			logger.Warn("Cycle halted by cancellation or timeout")
			return summary, err
		}
		if i > 0 {
			if err := pacer.Wait(ctx); err != nil {
				logger.Warn("Cycle halted during pacing wait", "error", err)
				return summary, err
			}
		}

		snapLog := logger.With(
			"snapshot_name", snap.Name,
			"snapshot_id", snap.ID,
			"progress", fmt.Sprintf("%d/%d", i+1, len(candidates)),
		)

		summary.Results = append(summary.Results, deleteOne(ctx, api, led, snap, snapLog))
	}

	return summary, nil
}

// selectExpired returns the snapshots whose embedded date token matches the
// cutoff exactly. The token is the trailing date the name was created with;
// matching on the suffix keeps a name like "db-2024-01-01-copy" from ever
// qualifying.
func selectExpired(snapshots []gplatform.Snapshot, cutoff string) []gplatform.Snapshot {
	var expired []gplatform.Snapshot
	for _, s := range snapshots {
		if strings.HasSuffix(s.Name, "-"+cutoff) {
			expired = append(expired, s)
		}
	}
	return expired
}

func deleteOne(ctx context.Context, api API, led *ledger.Ledger, snap gplatform.Snapshot, logger *slog.Logger) ItemResult {
	result := ItemResult{Subject: snap.Name}

	jobID, err := api.DeleteSnapshot(ctx, snap.ID)
	if err != nil {
		logger.Error("Snapshot deletion call failed", "error", err)
		result.Status = ItemFailed
		result.Err = err
		return result
	}

	result.Status = ItemIssued
	result.JobID = jobID

	if err := led.Append(jobID, snap.Name); err != nil {
		logger.Error("Ledger append failed for issued job", "job_id", jobID, "error", err)
		result.Err = err
		return result
	}

	logger.Info("Snapshot deletion call issued", "job_id", jobID)
	return result
}
