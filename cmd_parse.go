// cmd_parse.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/services"
)

var (
	parseEngine string
	parsePretty bool
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Extract a saved schedule page to JSON",
	Long:  `Reads a schedule detail page (or "-" for stdin) and prints the monthly schedule as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseEngine, "engine", "goquery", "Extractor engine: goquery or sandbox")
	parseCmd.Flags().BoolVar(&parsePretty, "pretty", false, "Indent the JSON output")
}

func readInput(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(b), nil
}

// parseFile extracts a schedule from a file without loading any config.
func parseFile(path, engine string) (*models.MonthlySchedule, error) {
	doc, err := readInput(path)
	if err != nil {
		return nil, err
	}
	ext, err := services.NewExtractor(engine, logger.NewNop(), nil)
	if err != nil {
		return nil, err
	}
	svc := &services.ScheduleService{Extractor: ext}
	return svc.Parse(doc)
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func runParse(cmd *cobra.Command, args []string) error {
	schedule, err := parseFile(args[0], parseEngine)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), schedule, parsePretty)
}
