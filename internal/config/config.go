// Package config loads and validates the snapguard configuration file.
//
// Configuration problems are fatal: they are reported before any cycle starts,
// so a bad config never leaves half-issued work behind.
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// KTCloud holds the provider credentials and endpoint settings.
type KTCloud struct {
	APIKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
	// InsecureSkipVerify disables TLS verification for the provider's
	// self-signed endpoint. Defaults to true to preserve the historical
	// behavior against this provider; set to false if the endpoint ever
	// presents a valid certificate.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// Telegram holds the notification transport settings.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// Retention controls which snapshots the delete cycle targets.
type Retention struct {
	// Cycle is "<days>d", e.g. "13d": delete snapshots whose embedded date
	// equals today minus that many days. This single key replaces the
	// historical cycle/del_cycle split.
	Cycle string `mapstructure:"cycle"`
}

// Paths locates the on-disk inputs and state.
type Paths struct {
	// DiskList is the file of target disks, one "disk_name[,server_name]"
	// entry per line.
	DiskList string `mapstructure:"disk_list"`
	// LedgerDir holds the create and delete job ledgers.
	LedgerDir string `mapstructure:"ledger_dir"`
}

// Pacing throttles per-item provider calls inside a cycle.
type Pacing struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Schedule holds daemon-mode timing settings.
type Schedule struct {
	// StartDate (YYYY-MM-DD, optional) delays the first cycle until that day.
	StartDate string `mapstructure:"start_date"`
}

// Config is the process-wide configuration, constructed once at startup and
// passed by reference into each workflow. Never mutated after Load.
type Config struct {
	KTCloud   KTCloud   `mapstructure:"kt_cloud"`
	Telegram  Telegram  `mapstructure:"telegram"`
	Retention Retention `mapstructure:"retention"`
	Paths     Paths     `mapstructure:"paths"`
	Pacing    Pacing    `mapstructure:"pacing"`
	Time      Schedule  `mapstructure:"time"`
}

// Load reads the YAML config at path, applies defaults and environment
// overrides (SNAPGUARD_ prefix), and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("kt_cloud.insecure_skip_verify", true)
	v.SetDefault("retention.cycle", "13d")
	v.SetDefault("paths.disk_list", "/etc/snapguard/disk_list")
	v.SetDefault("paths.ledger_dir", "/var/lib/snapguard")
	v.SetDefault("pacing.interval", "5m")

	v.SetEnvPrefix("SNAPGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only surfaces keys viper already knows about. Keys with no
	// default must be bound explicitly or their env overrides are ignored when
	// they are absent from the config file.
	for _, key := range []string{
		"kt_cloud.api_key",
		"kt_cloud.secret_key",
		"kt_cloud.endpoint",
		"telegram.bot_token",
		"telegram.chat_id",
		"time.start_date",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks everything orchestration depends on. It runs once, before
// any cycle, so per-cycle code can assume a well-formed config.
func (c *Config) Validate() error {
	if c.KTCloud.APIKey == "" {
		return fmt.Errorf("config: kt_cloud.api_key is required")
	}
	if c.KTCloud.SecretKey == "" {
		return fmt.Errorf("config: kt_cloud.secret_key is required")
	}
	if _, err := c.RetentionDays(); err != nil {
		return err
	}
	if c.Pacing.Interval < 0 {
		return fmt.Errorf("config: pacing.interval must not be negative")
	}
	if c.Time.StartDate != "" {
		if _, err := time.Parse("2006-01-02", c.Time.StartDate); err != nil {
			return fmt.Errorf("config: time.start_date must be YYYY-MM-DD, got %q", c.Time.StartDate)
		}
	}
	return nil
}

// RetentionDays parses retention.cycle ("<days>d") into a day count.
func (c *Config) RetentionDays() (int, error) {
	cycle := c.Retention.Cycle
	if !strings.HasSuffix(cycle, "d") {
		return 0, fmt.Errorf("config: retention.cycle must be a day count like \"13d\", got %q", cycle)
	}
	days, err := strconv.Atoi(strings.TrimSuffix(cycle, "d"))
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("config: retention.cycle must be a positive day count like \"13d\", got %q", cycle)
	}
	return days, nil
}

// CreateLedgerPath is the well-known path of the create-cycle job ledger.
func (c *Config) CreateLedgerPath() string {
	return filepath.Join(c.Paths.LedgerDir, "create_job_list")
}

// DeleteLedgerPath is the well-known path of the delete-cycle job ledger.
func (c *Config) DeleteLedgerPath() string {
	return filepath.Join(c.Paths.LedgerDir, "delete_job_list")
}
