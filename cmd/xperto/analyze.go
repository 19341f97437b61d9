package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"xperto/internal/inference"
	"xperto/internal/inference/providers"
	"xperto/internal/service"
	"xperto/internal/upload"
)

var (
	analyzeFiles  []string
	analyzeJSON   bool
	analyzeOutput outputFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [question]",
	Short: "Analyze a component from a question and/or attached files",
	Long: `Builds one request from the question and the attached files, sends it to the
configured upstream and prints the normalized report.

Examples:
  xperto analyze "rodamiento 6205-2RS"
  xperto analyze --file ficha.pdf --pdf informe.pdf
  xperto analyze "identificar" --file foto.jpg --json`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVarP(&analyzeFiles, "file", "f", nil, "attach a PDF or image (repeatable)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the record as JSON")
	bindOutputFlags(analyzeCmd.Flags(), &analyzeOutput)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	providers.RegisterAll()
	client, err := inference.NewClient(&cfg.Upstream, inference.Deps{Logger: logger.Named("inference")})
	if err != nil {
		return err
	}
	svc := service.NewAnalysisService(upload.NewEncoder(cfg.Upload), client, logger.Named("analysis"))

	input := service.AnalyzeInput{Question: strings.Join(args, " ")}
	for _, path := range analyzeFiles {
		input.Files = append(input.Files, pathSource(path))
	}

	result, err := svc.Analyze(ctx, input)
	if err != nil {
		return err
	}

	wrote, err := writeExports(ctx, newExportService(), result.Record, &analyzeOutput, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case analyzeJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Record)
	case wrote:
		return nil
	default:
		return renderTerminal(out, result.Record, analyzeOutput.plain)
	}
}

func pathSource(path string) upload.Source {
	return upload.Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}
