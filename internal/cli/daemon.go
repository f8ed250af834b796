package cli

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-co-op/gocron-ui/server"
	"github.com/go-co-op/gocron/v2"
	"github.com/ktcloud-ops/snapguard/internal/config"
	"github.com/ktcloud-ops/snapguard/internal/notifications"
	"github.com/ktcloud-ops/snapguard/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	createSchedule string
	deleteSchedule string
	reportSchedule string
	bindAddress    string
)

var daemonCommand = &cobra.Command{
	Use:     "daemon",
	Short:   "Run Snapguard in daemon mode",
	GroupID: "snapguard",
	Long:    `Starts Snapguard as a long-lived service that runs the creation, deletion, and reconciliation cycles on independent cron schedules. Cycles of the same type never overlap: a schedule that fires while its prior run is still pacing through its items is rescheduled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		banner := fmt.Sprintf("Snapguard - Daemon Mode \n\nVersion: %s\nBuild Date: %s", SnapguardVersion, SnapguardDate)
		fmt.Println(headerStyle.Render(banner))

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		telegramProvider := &notifications.Telegram{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
		}

		dlog := workflow.SetupLogger(logLevel).With("component", "daemon")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		// Optional delayed start: no cycle fires before the configured date.
		if cfg.Time.StartDate != "" {
			startDate, _ := time.Parse("2006-01-02", cfg.Time.StartDate)
			if wait := time.Until(startDate); wait > 0 {
				dlog.Info("Waiting for configured start date", "start_date", cfg.Time.StartDate)
				select {
				case <-time.After(wait):
				case <-sigChan:
					dlog.Warn("Shutting down before start date due to system signal")
					return nil
				}
			}
		}

		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		s.Start()
		dlog.Info("Scheduler started")

		jobs := []struct {
			name     string
			schedule string
			task     func()
		}{
			{
				name:     "Snapshot Creation Cycle",
				schedule: createSchedule,
				task: func() {
					if err := workflow.RunCreateWorkflow(cfg, timeout, logLevel); err != nil {
						dlog.Error("Snapshot creation cycle failed", "error", err)
					}
				},
			},
			{
				name:     "Snapshot Deletion Cycle",
				schedule: deleteSchedule,
				task: func() {
					if err := workflow.RunDeleteWorkflow(cfg, timeout, logLevel); err != nil {
						dlog.Error("Snapshot deletion cycle failed", "error", err)
					}
				},
			},
			{
				name:     "Reconciliation Report",
				schedule: reportSchedule,
				task: func() {
					if err := workflow.RunReportWorkflow(cfg, timeout, logLevel, telegramProvider); err != nil {
						dlog.Error("Reconciliation report failed", "error", err)
					}
				},
			},
		}

		for _, j := range jobs {
			job, err := s.NewJob(
				gocron.CronJob(j.schedule, false),
				gocron.NewTask(j.task),
				gocron.WithName(j.name),
				gocron.WithSingletonMode(gocron.LimitModeReschedule),
			)
			if err != nil {
				return fmt.Errorf("failed to schedule %q: %w", j.name, err)
			}

			if nextRun, err := job.NextRun(); err == nil {
				dlog.Info("Job scheduled",
					"job_name", job.Name(),
					"job_id", job.ID(),
					"schedule", j.schedule,
					"next_run", nextRun.Format(time.RFC3339))
			}
		}

		srv := server.NewServer(s, uiPort(bindAddress), server.WithTitle("Snapguard - Dashboard"))
		go func() {
			dlog.Info("Snapguard scheduler UI started", "address", bindAddress)
			if err := http.ListenAndServe(bindAddress, srv.Router); err != nil {
				dlog.Error("Failed to start UI server", "error", err)
			}
		}()

		<-sigChan

		dlog.Warn("Shutting down scheduler due to system signal...")
		return s.Shutdown()
	},
}

// uiPort extracts the port the dashboard listens on from the bind address, so
// the UI advertises the same port it is actually served from.
func uiPort(bindAddress string) int {
	_, portStr, err := net.SplitHostPort(bindAddress)
	if err != nil {
		return 8080
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 8080
	}
	return port
}

func init() {
	rootCommand.AddCommand(daemonCommand)
	daemonCommand.Flags().StringVar(&createSchedule, "create-schedule", "0 1 * * *", "Cron schedule for the snapshot creation cycle")
	daemonCommand.Flags().StringVar(&deleteSchedule, "delete-schedule", "0 4 * * *", "Cron schedule for the snapshot deletion cycle")
	daemonCommand.Flags().StringVar(&reportSchedule, "report-schedule", "30 9 * * *", "Cron schedule for the reconciliation report")
	daemonCommand.Flags().StringVar(&bindAddress, "bind-address", "0.0.0.0:8080", "Address to bind the UI server")
}
