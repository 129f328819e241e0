package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/core/emit"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/core/planner"
	"github.com/kilianp07/timetable/pkg/export"
)

var planOpts struct {
	payload      string
	request      string
	subjects     []string
	preference   string
	allowOverlap bool
	limit        int
	format       string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Rank conflict-free group combinations for a set of subjects",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planOpts.payload, "payload", "", "schedule payload to plan from (default: first output path)")
	f.StringVarP(&planOpts.request, "request", "r", "", "request file (yaml or json)")
	f.StringSliceVarP(&planOpts.subjects, "subjects", "s", nil, "subject codes, overrides the request file")
	f.StringVar(&planOpts.preference, "preference", "", "morning, afternoon or dontcare")
	f.BoolVar(&planOpts.allowOverlap, "allow-overlap", false, "keep combinations with colliding sessions")
	f.IntVar(&planOpts.limit, "limit", 10, "maximum number of schedules, 0 for all")
	f.StringVar(&planOpts.format, "format", "json", "output format: json or csv")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, flush, err := setup(cmd)
	if err != nil {
		return err
	}
	defer flush()
	defer coremon.Recover()

	path := planOpts.payload
	if path == "" && len(cfg.Output.Paths) > 0 {
		path = cfg.Output.Paths[0]
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	payload, err := emit.Decode(b)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	var req planner.Request
	if planOpts.request != "" {
		if req, err = planner.LoadRequest(planOpts.request); err != nil {
			return fmt.Errorf("load request: %w", err)
		}
	}
	f := cmd.Flags()
	if f.Changed("subjects") {
		req.Subjects = planOpts.subjects
	}
	if f.Changed("preference") {
		req.Preference = planner.Preference(planOpts.preference)
	}
	if f.Changed("allow-overlap") {
		req.AllowOverlap = planOpts.allowOverlap
	}
	if f.Changed("limit") || planOpts.request == "" {
		req.Limit = planOpts.limit
	}

	schedules, err := planner.New(payload.Results).Plan(req)
	if err != nil {
		return err
	}
	switch planOpts.format {
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), schedules)
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), schedules)
	default:
		return fmt.Errorf("unknown format %s", planOpts.format)
	}
}
