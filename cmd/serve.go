package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/api/schedule"
	"github.com/kilianp07/timetable/app"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/watch"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Convert once and serve the schedule over HTTP",
	RunE:  runServe,
}

func init() {
	addSourceFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.address")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reconvert when a CSV export changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, flush, err := setup(cmd)
	if err != nil {
		return err
	}
	defer flush()
	defer coremon.Recover()
	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)

	deps := schedule.Deps{Snapshots: svc, Metrics: promhttp.Handler(), Token: cfg.Server.Token}
	if cfg.History.Backend != "none" {
		deps.Runs = svc.Store()
	}
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           schedule.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log := logger.New("serve")

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if serveWatch {
		go func() {
			if err := watchAndRun(ctx, svc, watch.DefaultDebounce); err != nil {
				log.Errorf("watch: %v", err)
			}
		}()
	} else {
		_, _ = svc.Run(ctx)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
