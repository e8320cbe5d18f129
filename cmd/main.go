package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xhad/compligen/internal/logger"
	cfgPkg "github.com/xhad/compligen/pkg/config"
	"github.com/xhad/compligen/pkg/metrics"
)

var version = "dev"

var (
	configPath  string
	metricsFile string
	logMode     string

	cfg *cfgPkg.Config
	log *logger.Logger
	mtr *metrics.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "compligen",
	Short: "Generate Australian compliance documents from a legislation corpus",
	Long: `compligen drafts Privacy Policies, Terms of Service, Data Processing
Agreements, Acceptable Use Policies and Cookie Policies. Each document is
grounded in retrieved legislation and example policies, generated as
schema-valid JSON and repaired deterministically before it is written.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log mode: dev or prod (overrides config)")
}

// setup loads .env, the config file and the shared logger and metrics.
// Commands that need no config (version) still get a usable logger.
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	loaded, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logMode != "" {
		loaded.Log.Mode = logMode
	}
	if metricsFile == "" {
		metricsFile = loaded.Metrics.File
	}
	cfg = loaded

	log, err = logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	mtr = metrics.New()
	return nil
}

func teardown() {
	if mtr != nil && metricsFile != "" {
		if err := mtr.WriteToTextfile(metricsFile); err != nil && log != nil {
			log.Warn("failed to write metrics", "path", metricsFile, "error", err)
		}
	}
	if log != nil {
		log.Sync()
	}
}

// validateConfig reports every config problem at once.
func validateConfig() error {
	errs := cfg.Validate()
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		color.Red("  %s", e.Error())
	}
	return fmt.Errorf("invalid configuration (%d problems)", len(errs))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// PersistentPostRun is skipped when RunE fails.
		teardown()
		color.Red("Error: %v", err)
		os.Exit(exitCode(err))
	}
}
