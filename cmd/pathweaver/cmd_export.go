package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pathweaver/internal/export"
	"pathweaver/internal/model"
)

var (
	exportFormat string
	exportOut    string
)

// exportCmd renders a completed pathway file as CSV or XML.
var exportCmd = &cobra.Command{
	Use:   "export [completed.json]",
	Short: "Render a completed pathway as CSV or XML",
	Long: `Reads a completed pathway document (as produced by predict) and
renders it in a flat interchange format. Writes to stdout unless --out
is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv or xml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var plan model.CompletedPathway
	if err := json.Unmarshal(data, &plan); err != nil {
		return fmt.Errorf("failed to parse completed pathway: %w", err)
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "csv":
		return export.WriteCSV(out, plan)
	case "xml":
		return export.WriteXML(out, plan)
	default:
		return fmt.Errorf("unsupported format %q (use csv or xml)", exportFormat)
	}
}
