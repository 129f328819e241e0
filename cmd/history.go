package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/core/history"
	coremon "github.com/kilianp07/timetable/core/monitoring"
)

var historyOpts struct {
	since  time.Duration
	status string
	limit  int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversion runs",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.DurationVar(&historyOpts.since, "since", 0, "only runs newer than this duration")
	f.StringVar(&historyOpts.status, "status", "", "filter by status: ok, failed or no_input")
	f.IntVar(&historyOpts.limit, "limit", 20, "maximum number of runs, 0 for all")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, flush, err := setup(cmd)
	if err != nil {
		return err
	}
	defer flush()
	defer coremon.Recover()
	if cfg.History.Backend == "none" {
		return fmt.Errorf("history is disabled, set history.backend")
	}
	store, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	q := history.RunQuery{Status: historyOpts.status, Limit: historyOpts.limit}
	if historyOpts.since > 0 {
		q.Start = time.Now().Add(-historyOpts.since)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
