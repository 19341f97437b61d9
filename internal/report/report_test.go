package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xperto/internal/domain"
	"xperto/internal/normalize"
	"xperto/internal/report"
)

func sampleRecord() domain.AnalysisRecord {
	return normalize.Finalize(domain.AnalysisRecord{
		Product: domain.Product{
			Name:          "Rodamiento 6205",
			ReferenceCode: "6205-2RS",
			Material:      "Acero cromo",
			SpecRows: []domain.SpecRow{
				{Label: "Diámetro interior", Value: "25 mm"},
				{Label: "Carga", Value: "**14 kN** dinámica"},
			},
		},
		VariantsNarrative: "Versiones:\n- ZZ\n- 2RS",
		ComparisonRows: []domain.ComparisonRow{
			{Brand: "SKF", ReferenceCode: "6205-2RSH", Material: "Acero", Dimensions: "25x52x15", Capacity: "14.8 kN"},
			{Brand: "FAG", ReferenceCode: "6205-2RSR", Material: "Acero", Dimensions: "25x52x15", Capacity: "15 kN", Standards: "ISO 15"},
		},
		Recommendations: "Usar **grasa** de litio.<script>alert(1)</script>",
		Confidence:      92.5,
	})
}

func TestNewMatrix_Transposes(t *testing.T) {
	m := report.NewMatrix(sampleRecord().ComparisonRows)

	assert.Equal(t, []string{"SKF", "FAG"}, m.Brands)

	labels := make([]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		labels = append(labels, r.Label)
		assert.Len(t, r.Cells, 2)
	}
	assert.Equal(t, []string{"REF", "MATERIAL", "DIMS", "CAPACIDAD", "NORMAS"}, labels)
	assert.Equal(t, []string{"6205-2RSH", "6205-2RSR"}, m.Rows[0].Cells)
	assert.Equal(t, []string{"", "ISO 15"}, m.Rows[4].Cells)
}

func TestNewMatrix_Empty(t *testing.T) {
	m := report.NewMatrix(nil)
	assert.True(t, m.Empty())
	assert.Empty(t, m.Rows)
}

func TestNewView(t *testing.T) {
	rec := sampleRecord()
	v, err := report.NewView(rec, domain.ReplyKindStrict)
	require.NoError(t, err)

	assert.Equal(t, "Rodamiento 6205", v.Name)
	assert.Equal(t, "92.5", v.Confidence)
	require.Len(t, v.Attributes, 1)
	assert.Equal(t, "Material", v.Attributes[0].Label)
	assert.Contains(t, string(v.SpecRows[1].Value), "<strong>14 kN</strong>")
	assert.Contains(t, string(v.Variants), "<li>ZZ</li>")
	assert.Contains(t, string(v.Recommendations), "<strong>grasa</strong>")
	assert.NotContains(t, string(v.Recommendations), "<script>")

	var back domain.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(v.RecordJSON), &back))
	assert.Equal(t, rec, back)
}

func TestTemplates_RenderReport(t *testing.T) {
	tmpl, err := report.Templates()
	require.NoError(t, err)

	v, err := report.NewView(sampleRecord(), domain.ReplyKindStrict)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "index.html", report.Page{Question: "6205", Report: v}))
	out := buf.String()

	assert.Contains(t, out, "MATRIZ COMPARATIVA")
	assert.Contains(t, out, "Identificación Positiva")
	assert.Contains(t, out, `action="/report/pdf"`)
	assert.Contains(t, out, "<strong>grasa</strong>")
	assert.NotContains(t, out, "<script>alert(1)")
	assert.NotContains(t, out, `class="banner"`)
}

func TestTemplates_RenderErrorBanner(t *testing.T) {
	tmpl, err := report.Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "index.html", report.Page{Error: "Error de comunicación con el servidor experto."}))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, `class="banner"`))
	assert.Contains(t, out, "Error de comunicación con el servidor experto.")
	assert.NotContains(t, out, `id="report"`)
}

func TestTemplates_ProseReplyOmitsMatrix(t *testing.T) {
	tmpl, err := report.Templates()
	require.NoError(t, err)

	rec, kind := normalize.NormalizeKind("Hola, necesito más datos del producto.")
	v, err := report.NewView(rec, kind)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "index.html", report.Page{Report: v}))
	out := buf.String()

	assert.Contains(t, out, "Consulta General")
	assert.NotContains(t, out, "MATRIZ COMPARATIVA")
	assert.NotContains(t, out, "Identificación Positiva")
}

func TestMarkdown(t *testing.T) {
	md := report.Markdown(sampleRecord())

	assert.True(t, strings.HasPrefix(md, "# Rodamiento 6205\n"))
	assert.Contains(t, md, "**Confianza:** 92.5%")
	assert.Contains(t, md, "| Carga | 14 kN dinámica |")
	assert.Contains(t, md, "| Propiedad | SKF | FAG |")
	assert.Contains(t, md, "|---|---|---|")
	assert.Contains(t, md, "- ZZ\n- 2RS")
	assert.Contains(t, md, "Usar **grasa** de litio.")
	assert.NotContains(t, md, "<script>")
}

func TestMarkdown_EscapesPipes(t *testing.T) {
	rec := sampleRecord()
	rec.Product.SpecRows = []domain.SpecRow{{Label: "Rosca", Value: "M8 | M10\nfina"}}

	md := report.Markdown(rec)
	assert.Contains(t, md, `| Rosca | M8 \| M10 fina |`)
}
