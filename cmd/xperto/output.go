package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/pflag"

	"xperto/internal/domain"
	"xperto/internal/pdfexport"
	"xperto/internal/report"
	"xperto/internal/service"
)

// outputFlags are the export destinations shared by analyze and export.
type outputFlags struct {
	pdf   string
	xlsx  string
	csv   string
	plain bool
}

func (o *outputFlags) targets() map[domain.ExportFormat]string {
	out := map[domain.ExportFormat]string{}
	for format, path := range map[domain.ExportFormat]string{
		domain.ExportPDF:  o.pdf,
		domain.ExportXLSX: o.xlsx,
		domain.ExportCSV:  o.csv,
	} {
		if path != "" {
			out[format] = path
		}
	}
	return out
}

func newExportService() service.ExportService {
	return service.NewExportService(
		pdfexport.NewExporter(pdfexport.WithCompression(cfg.Export.Compress)),
		nil,
		&cfg.Storage,
		logger.Named("export"),
	)
}

// writeExports renders rec once per requested format. It reports whether
// anything was written.
func writeExports(ctx context.Context, svc service.ExportService, rec domain.AnalysisRecord, o *outputFlags, stderr io.Writer) (bool, error) {
	targets := o.targets()
	for format, path := range targets {
		file, err := svc.Export(ctx, rec, format)
		if err != nil {
			return false, fmt.Errorf("exporting %s: %w", format, err)
		}
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return false, fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(stderr, "%s: %s (%d bytes)\n", format, path, len(file.Data))
	}
	return len(targets) > 0, nil
}

// renderTerminal prints rec as styled Markdown, or raw Markdown with plain.
func renderTerminal(w io.Writer, rec domain.AnalysisRecord, plain bool) error {
	md := report.Markdown(rec)
	if plain {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func bindOutputFlags(fs *pflag.FlagSet, o *outputFlags) {
	fs.StringVar(&o.pdf, "pdf", "", "write the report as PDF to this path")
	fs.StringVar(&o.xlsx, "xlsx", "", "write the report as XLSX to this path")
	fs.StringVar(&o.csv, "csv", "", "write the report as CSV to this path")
	fs.BoolVar(&o.plain, "plain", false, "print raw Markdown instead of styled output")
}
