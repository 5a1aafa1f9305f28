// main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gewnthar/crewsched/config"
	"github.com/gewnthar/crewsched/logger"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "crewsched",
	Short: "Extract airline crew monthly schedules from the crew portal",
	Long: `crewsched turns the crew portal's schedule detail page into a structured
monthly schedule: calendar, trips with duty periods and layovers, activities
and monthly totals. It can parse saved pages, fetch them from the portal,
cache them and serve them over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads AppConfig and builds the logger it describes.
func loadConfig() (*config.Config, *logger.ZapLogger, error) {
	if err := config.LoadConfig(configPath); err != nil {
		return nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}
	cfg := &config.AppConfig
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
