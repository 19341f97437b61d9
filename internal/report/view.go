// Package report renders analysis records for people: an HTML results view
// served by the web front-end and a Markdown document for terminals.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"xperto/internal/domain"
	"xperto/internal/richtext"
)

//go:embed templates/*.html
var templateFS embed.FS

// Attribute is an optional headline property of the product.
type Attribute struct {
	Label string
	Value template.HTML
}

// Row is one line of the technical table.
type Row struct {
	Label template.HTML
	Value template.HTML
}

// View is the display model of one record. Narrative fields are already
// sanitized HTML.
type View struct {
	Name            string
	Reference       string
	Confidence      string
	Kind            domain.ReplyKind
	Attributes      []Attribute
	SpecRows        []Row
	Variants        template.HTML
	Matrix          Matrix
	Recommendations template.HTML
	// RecordJSON is the record as posted back by the export forms.
	RecordJSON      string
}

// Page is the data passed to the index template.
type Page struct {
	Title    string
	Question string
	Error    string
	MaxFiles int
	Report   *View
}

// NewView builds the display model. rec is expected to be finalized.
func NewView(rec domain.AnalysisRecord, kind domain.ReplyKind) (*View, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	p := rec.Product
	v := &View{
		Name:            p.Name,
		Reference:       p.ReferenceCode,
		Confidence:      FormatConfidence(rec.Confidence),
		Kind:            kind,
		Variants:        template.HTML(richtext.ToHTML(rec.VariantsNarrative)),
		Matrix:          NewMatrix(rec.ComparisonRows),
		Recommendations: template.HTML(richtext.ToHTML(rec.Recommendations)),
		RecordJSON:      string(raw),
	}
	for _, a := range headline(p) {
		v.Attributes = append(v.Attributes, Attribute{Label: a[0], Value: template.HTML(richtext.ToHTML(a[1]))})
	}
	for _, r := range p.SpecRows {
		v.SpecRows = append(v.SpecRows, Row{
			Label: template.HTML(richtext.ToHTML(r.Label)),
			Value: template.HTML(richtext.ToHTML(r.Value)),
		})
	}
	return v, nil
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// FormatConfidence renders a confidence value without trailing zeros.
func FormatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// headline returns the non-blank optional attributes as label/value pairs.
func headline(p domain.Product) [][2]string {
	all := [][2]string{
		{"Dimensiones", p.Dimensions},
		{"Material", p.Material},
		{"Peso", p.Weight},
		{"Capacidad", p.Capacity},
		{"Rango de temperatura", p.TemperatureRange},
		{"Normas", p.Standards},
		{"Variantes", p.VariantsSummary},
	}
	out := all[:0]
	for _, a := range all {
		if strings.TrimSpace(a[1]) != "" {
			out = append(out, a)
		}
	}
	return out
}
