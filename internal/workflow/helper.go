package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ktcloud-ops/snapguard/internal/cloud"
	"github.com/ktcloud-ops/snapguard/internal/cloud/gplatform"
	"github.com/ktcloud-ops/snapguard/internal/config"
	"github.com/lmittmann/tint"
	"golang.org/x/time/rate"
)

// dateLayout is the date token embedded in snapshot names. Retention matching
// compares these tokens verbatim, so the layout must never change between the
// create and delete cycles.
const dateLayout = "2006-01-02"

// API is the provider surface the workflows drive. *gplatform.Client satisfies
// it; tests substitute fakes.
type API interface {
	ListDisks(ctx context.Context) ([]gplatform.Disk, error)
	ListSnapshots(ctx context.Context) ([]gplatform.Snapshot, error)
	CreateSnapshot(ctx context.Context, diskID, name string) (string, error)
	DeleteSnapshot(ctx context.Context, snapshotID string) (string, error)
	QueryJob(ctx context.Context, jobID string) (gplatform.JobOutcome, error)
}

// Notifier delivers the aggregate report to the operator channel.
type Notifier interface {
	Notify(message string) error
}

// SetupLogger configures the application-wide logger.
// It uses "tint" for colorized, structured logging that is easy to read in terminals.
func SetupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initClient spins up the G-platform client with retry defaults shared by all
// workflows.
func initClient(cfg *config.Config) (*gplatform.Client, error) {
	client := gplatform.Client{
		Endpoint:           cfg.KTCloud.Endpoint,
		APIKey:             cfg.KTCloud.APIKey,
		SecretKey:          cfg.KTCloud.SecretKey,
		InsecureSkipVerify: cfg.KTCloud.InsecureSkipVerify,
		RetryConfig: cloud.RetryConfig{
			MaxRetries:       3,
			BaseDelay:        2 * time.Second,
			MaxDelay:         10 * time.Second,
			OperationTimeout: 30 * time.Second,
		},
	}
	if err := client.NewClient(); err != nil {
		return nil, fmt.Errorf("client initialization failed: %w", err)
	}
	return &client, nil
}

// newPacer returns the rate limiter spacing per-item provider calls. Waiting
// on it is context-aware, so a cancelled cycle stops between items instead of
// sleeping through the remainder of the interval.
func newPacer(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}

// workflowContext applies the optional global timeout.
func workflowContext(timeoutSeconds int) (context.Context, context.CancelFunc) {
	if timeoutSeconds > 0 {
		return context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
	}
	return context.WithCancel(context.Background())
}
