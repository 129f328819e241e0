package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/app"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Convert once, then again whenever a CSV export changes",
	RunE:  runWatch,
}

func init() {
	addSourceFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before reconverting")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, flush, err := setup(cmd)
	if err != nil {
		return err
	}
	defer flush()
	defer coremon.Recover()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)
	return watchAndRun(ctx, svc, watchDebounce)
}

// watchAndRun converts once and then on every batch of source changes until
// ctx ends. Run failures are logged and do not stop the loop.
func watchAndRun(ctx context.Context, svc *app.Service, debounce time.Duration) error {
	log := logger.New("watch")
	_, _ = svc.Run(ctx)
	w, err := watch.New(svc.Config().Source, debounce)
	if err != nil {
		return err
	}
	log.Infof("watching for changes")
	return w.Run(ctx, func(changed []string) {
		log.Infof("%d source files changed", len(changed))
		_, _ = svc.Run(ctx)
	})
}
