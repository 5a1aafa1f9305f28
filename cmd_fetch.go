// cmd_fetch.go
package main

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gewnthar/crewsched/database"
	"github.com/gewnthar/crewsched/fetcher"
	"github.com/gewnthar/crewsched/metrics"
	"github.com/gewnthar/crewsched/models"
)

var (
	fetchMonth int
	fetchYear  int
	fetchSave  bool
	fetchRaw   bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one month's schedule from the portal",
	Long: `Fetches the schedule detail page for a block date using the configured portal
session. Prints the extracted schedule as JSON, or the raw page with --raw.
With --save the record is also written to the cache.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	now := time.Now()
	fetchCmd.Flags().IntVar(&fetchMonth, "month", int(now.Month()), "Block month (1-12)")
	fetchCmd.Flags().IntVar(&fetchYear, "year", now.Year(), "Block year")
	fetchCmd.Flags().BoolVar(&fetchSave, "save", false, "Store the extracted schedule in the cache")
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "Print the page HTML instead of JSON")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	bd := models.BlockDate{Month: fetchMonth, Year: fetchYear}
	if err := bd.Validate(); err != nil {
		return err
	}
	if cfg.Portal.ScheduleURL == "" {
		return fmt.Errorf("portal schedule_url is not configured")
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if fetchRaw {
		page, err := fetcher.New(cfg.Portal, nil, log).Fetch(ctx, bd)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, page.Body)
		return err
	}

	m := metrics.NewMetrics("crewsched", prometheus.NewRegistry())
	svc, err := buildService(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer database.CloseDB()
	if !fetchSave {
		svc.Cache = nil
	}

	c, err := svc.Refresh(ctx, bd)
	if err != nil {
		return err
	}
	return writeJSON(out, c.Schedule, true)
}
