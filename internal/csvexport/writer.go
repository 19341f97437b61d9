package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"xperto/internal/domain"
	"xperto/internal/richtext"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// ContentType is the media type of exported CSV files.
const ContentType = "text/csv; charset=utf-8"

// columns defines the CSV header row.
var columns = []string{"Sección", "Parámetro", "Valor"}

// Writer wraps csv.Writer for exporting an analysis record as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecord flattens a record into section/parameter/value rows.
func (w *Writer) WriteRecord(rec domain.AnalysisRecord) error {
	for _, row := range recordToRows(rec) {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Export writes BOM, header and record rows to out.
func Export(out io.Writer, rec domain.AnalysisRecord) error {
	if _, err := out.Write(BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteRecord(rec); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

func recordToRows(rec domain.AnalysisRecord) [][]string {
	const ident = "Identificación"
	p := rec.Product
	rows := [][]string{
		{ident, "Producto", p.Name},
		{ident, "Referencia", p.ReferenceCode},
	}
	optional := []struct{ label, value string }{
		{"Dimensiones", p.Dimensions},
		{"Material", p.Material},
		{"Peso", p.Weight},
		{"Capacidad", p.Capacity},
		{"Rango de temperatura", p.TemperatureRange},
		{"Normas", p.Standards},
		{"Variantes", p.VariantsSummary},
	}
	for _, o := range optional {
		if strings.TrimSpace(o.value) != "" {
			rows = append(rows, []string{ident, o.label, o.value})
		}
	}

	for _, r := range p.SpecRows {
		rows = append(rows, []string{"Parámetros técnicos", richtext.ToPlain(r.Label), richtext.ToPlain(r.Value)})
	}

	for _, c := range rec.ComparisonRows {
		section := "Comparativa: " + c.Brand
		fields := []struct{ label, value string }{
			{"Referencia", c.ReferenceCode},
			{"Material", c.Material},
			{"Dimensiones", c.Dimensions},
			{"Peso", c.Weight},
			{"Capacidad", c.Capacity},
			{"Normas", c.Standards},
			{"Opciones", c.Options},
		}
		for _, f := range fields {
			rows = append(rows, []string{section, f.label, f.value})
		}
	}

	rows = append(rows,
		[]string{"Análisis de variantes", "Narrativa", richtext.ToPlain(rec.VariantsNarrative)},
		[]string{"Dictamen de experto", "Recomendaciones", richtext.ToPlain(rec.Recommendations)},
		[]string{"Confianza", "Nivel (0-100)", strconv.FormatFloat(rec.Confidence, 'f', -1, 64)},
	)
	return rows
}

// nonAlphanumeric matches characters not safe for filenames.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore collapses consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a reference code for use in Content-Disposition.
// Replaces non-alphanumeric chars (except _ and -) with underscore,
// collapses runs, trims edges, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: Xperto_Reporte_{reference}_{YYYY-MM-DD}.csv
func BuildFilename(reference string, now time.Time) string {
	sanitized := SanitizeFilename(reference)
	if sanitized == "" {
		sanitized = "Tecnico"
	}
	return fmt.Sprintf("Xperto_Reporte_%s_%s.csv", sanitized, now.Format("2006-01-02"))
}
