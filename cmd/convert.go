package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/app"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/infra/logger"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the CSV exports once and write the payload",
	RunE:  runConvert,
}

func init() {
	addSourceFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, _ []string) error {
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

	res, err := svc.Run(ctx)
	if app.IsNoInput(err) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "nothing to convert: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d sessions from %d files written to %d destinations (run %s)\n",
		res.Stats.Emitted, len(res.Sources), len(res.Emit.Written), res.RunID)
	return nil
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}
