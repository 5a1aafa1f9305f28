// cmd_export.go
package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gewnthar/crewsched/export"
	"github.com/gewnthar/crewsched/models"
)

var (
	exportWhat   string
	exportEngine string
	exportVerify bool
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export a saved schedule page as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportWhat, "what", "legs", "Table to export: legs or calendar")
	exportCmd.Flags().StringVar(&exportEngine, "engine", "goquery", "Extractor engine: goquery or sandbox")
	exportCmd.Flags().BoolVar(&exportVerify, "verify", false, "Read the CSV back and check it before writing it out")
}

func runExport(cmd *cobra.Command, args []string) error {
	schedule, err := parseFile(args[0], exportEngine)
	if err != nil {
		return err
	}
	var (
		write  func(io.Writer, *models.MonthlySchedule) error
		verify func(io.Reader, *models.MonthlySchedule) error
	)
	switch exportWhat {
	case "legs":
		write, verify = export.WriteLegs, export.VerifyLegs
	case "calendar":
		write, verify = export.WriteCalendar, export.VerifyCalendar
	default:
		return fmt.Errorf("unknown export table %q (want legs or calendar)", exportWhat)
	}
	if !exportVerify {
		return write(cmd.OutOrStdout(), schedule)
	}

	var buf bytes.Buffer
	if err := write(&buf, schedule); err != nil {
		return err
	}
	if err := verify(bytes.NewReader(buf.Bytes()), schedule); err != nil {
		return err
	}
	_, err = buf.WriteTo(cmd.OutOrStdout())
	return err
}
