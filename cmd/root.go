package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/config"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "timetable",
	Short:         "Convert timetable CSV exports into the schedule JSON payload",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runConvert,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file (optional)")
	addSourceFlags(rootCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// sourceFlags override configuration values for a single invocation.
type sourceFlags struct {
	dir         string
	file        string
	out         []string
	semester    string
	propagation string
}

var flags sourceFlags

func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flags.dir, "source", "", "directory holding the CSV exports")
	f.StringVar(&flags.file, "file", "", "single CSV export, overrides --source")
	f.StringSliceVarP(&flags.out, "out", "o", nil, "output path, repeatable")
	f.StringVar(&flags.semester, "semester-start", "", "Monday of week 1 (YYYY-MM-DD)")
	f.StringVar(&flags.propagation, "propagation", "", "parent group propagation: first or all")
}

// setup loads the configuration, applies flag overrides and initializes
// logging and error monitoring. The returned func flushes the monitor.
func setup(cmd *cobra.Command) (*config.Config, func(), error) {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Lookup("source") != nil {
		applyFlags(cmd, cfg)
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid flags: %w", err)
		}
	}
	logger.Configure(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		logger.New("main").Warnf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
	}
	return cfg, func() { coremon.Flush(2 * time.Second) }, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("source") {
		cfg.Source.Dir = flags.dir
		cfg.Source.File = ""
	}
	if f.Changed("file") {
		cfg.Source.File = flags.file
	}
	if f.Changed("out") {
		cfg.Output.Paths = flags.out
	}
	if f.Changed("semester-start") {
		cfg.Semester.Start = flags.semester
	}
	if f.Changed("propagation") {
		cfg.Aggregation.Propagation = flags.propagation
	}
}
