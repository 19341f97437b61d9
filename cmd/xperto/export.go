package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"xperto/internal/normalize"
)

var (
	exportIn     string
	exportOutput outputFlags
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a saved record as PDF, XLSX, CSV or terminal output",
	Long: `Reads a record previously printed by "analyze --json" and renders it.
Without any output path the report is printed to the terminal.

Example:
  xperto export --in record.json --pdf informe.pdf`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportIn, "in", "i", "-", `record JSON file ("-" for stdin)`)
	bindOutputFlags(exportCmd.Flags(), &exportOutput)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	data, err := readInput(cmd.InOrStdin(), exportIn)
	if err != nil {
		return err
	}
	rec, err := normalize.DecodeRecord(data)
	if err != nil {
		return err
	}

	wrote, err := writeExports(ctx, newExportService(), rec, &exportOutput, cmd.ErrOrStderr())
	if err != nil || wrote {
		return err
	}
	return renderTerminal(cmd.OutOrStdout(), rec, exportOutput.plain)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	return data, nil
}
