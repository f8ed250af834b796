package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ktcloud-ops/snapguard/internal/config"
	"github.com/ktcloud-ops/snapguard/internal/ledger"
	"golang.org/x/time/rate"
)

// RunCreateWorkflow executes one snapshot creation cycle end to end.
//
// Responsibilities:
//  1. Discovery: fetches the live disk inventory. Disk names are resolved
//     fresh every cycle; the inventory may change between runs.
//  2. Recording: truncates the create ledger, then appends one entry per job
//     the provider accepts, so reconciliation can run later and elsewhere.
//  3. Iteration: attempts targets sequentially in file order, paced between
//     calls to respect the provider's rate limits.
//
// Inventory fetch failure aborts the cycle (nothing was attempted, nothing is
// inconsistent). Per-target failures never do; partial completion is normal.
func RunCreateWorkflow(cfg *config.Config, timeoutSeconds int, logLevel string) error {
	logger := SetupLogger(logLevel).With(
		"workflow", "create",
		"run_id", fmt.Sprintf("run-%s", uuid.New().String()),
	)

	logger.Info("Initializing snapshot creation cycle")

	ctx, cancel := workflowContext(timeoutSeconds)
	defer cancel()

	client, err := initClient(cfg)
	if err != nil {
		logger.Error("G-platform client initialization failed", "error", err)
		return err
	}

	targets, err := ReadTargets(cfg.Paths.DiskList)
	if err != nil {
		logger.Error("Disk list unreadable", "error", err)
		return err
	}
	logger.Info("Disk list loaded", "target_count", len(targets))

	summary, err := runCreate(ctx, client, ledger.New(cfg.CreateLedgerPath()), targets, time.Now(), newPacer(cfg.Pacing.Interval), logger)
	if err != nil {
		logger.Error("Snapshot creation cycle aborted", "error", err)
		return err
	}

	logger.Info("Snapshot creation cycle summary",
		"date", summary.Date,
		"targets", len(summary.Results),
		"issued", summary.Count(ItemIssued),
		"skipped", summary.Count(ItemSkipped),
		"failed", summary.Count(ItemFailed))

	return nil
}

// runCreate drives the per-cycle state machine: fetch inventory, reset ledger,
// then one attempt per target. The date token is fixed once at cycle start so
// every snapshot of the cycle shares it, which retention matching depends on.
func runCreate(ctx context.Context, api API, led *ledger.Ledger, targets []Target, now time.Time, pacer *rate.Limiter, logger *slog.Logger) (CycleSummary, error) {
	today := now.Format(dateLayout)
	summary := CycleSummary{Date: today}

	disks, err := api.ListDisks(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing disks: %w", err)
	}
	index := BuildDiskIndex(disks)
	logger.Debug("Disk inventory fetched", "disk_count", len(disks))

	if err := led.Reset(); err != nil {
		return summary, fmt.Errorf("resetting create ledger: %w", err)
	}

	for i, target := range targets {
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

		targetLog := logger.With(
			"disk_name", target.DiskName,
			"server_name", target.ServerName,
			"progress", fmt.Sprintf("%d/%d", i+1, len(targets)),
		)

		summary.Results = append(summary.Results, createOne(ctx, api, led, target, index, today, targetLog))
	}

	return summary, nil
}

// createOne attempts a single target and returns its explicit result. All
// failure paths are non-fatal to the cycle.
func createOne(ctx context.Context, api API, led *ledger.Ledger, target Target, index DiskIndex, today string, logger *slog.Logger) ItemResult {
	result := ItemResult{Subject: target.DiskName}

	diskID, qualified, err := index.Resolve(target)
	if err != nil {
		logger.Error("Target skipped", "error", err)
		result.Status = ItemSkipped
		result.Err = err
		return result
	}

	result.SnapshotName = snapshotName(target, qualified, today)

	jobID, err := api.CreateSnapshot(ctx, diskID, result.SnapshotName)
	if err != nil {
		logger.Error("Snapshot creation call failed", "snapshot_name", result.SnapshotName, "error", err)
		result.Status = ItemFailed
		result.Err = err
		return result
	}

	result.Status = ItemIssued
	result.JobID = jobID

	if err := led.Append(jobID, target.DiskName); err != nil {
		// The job is running but unrecorded; reconciliation will under-count.
		logger.Error("Ledger append failed for issued job", "job_id", jobID, "error", err)
		result.Err = err
		return result
	}

	logger.Info("Snapshot creation call issued", "snapshot_name", result.SnapshotName, "job_id", jobID)
	return result
}
