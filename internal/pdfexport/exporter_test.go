package pdfexport

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xperto/internal/domain"
)

func sampleRecord() domain.AnalysisRecord {
	return domain.AnalysisRecord{
		Product: domain.Product{
			Name:          "Válvula de bola 2 vías",
			ReferenceCode: "VB-25/316",
			Material:      "AISI 316L",
			SpecRows: []domain.SpecRow{
				{Label: "Presión nominal", Value: "PN40"},
				{Label: "Conexión", Value: "Rosca **BSP** 1\""},
			},
		},
		VariantsNarrative: "La variante con juntas **Viton** resiste agentes químicos.\nLa estándar usa PTFE.",
		Recommendations:   "- Revisar el par de apriete\n- Sustituir juntas cada 2 años",
		Confidence:        82,
	}
}

func withComparison(rec domain.AnalysisRecord) domain.AnalysisRecord {
	rec.ComparisonRows = []domain.ComparisonRow{
		{Brand: "Festo", ReferenceCode: "VZBA-1", Material: "Inox", Dimensions: "DN25", Capacity: "40 bar"},
		{Brand: "SMC", ReferenceCode: "VNB-25", Material: "Latón", Dimensions: "DN25", Capacity: "16 bar"},
	}
	return rec
}

func testExporter() *Exporter {
	return NewExporter(
		WithCompression(false),
		WithClock(func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }),
		WithReportID(func() string { return "ABC123XYZ" }),
	)
}

func TestPlan_WithoutComparison(t *testing.T) {
	sections := Plan(sampleRecord())

	require.Len(t, sections, 3)
	assert.Equal(t, SectionIdentification, sections[0].Kind)
	assert.Equal(t, SectionVariants, sections[1].Kind)
	assert.Equal(t, SectionRecommendations, sections[2].Kind)
	assert.Equal(t, "3. DICTAMEN DE EXPERTO", sections[2].Title)
}

func TestPlan_WithComparison(t *testing.T) {
	sections := Plan(withComparison(sampleRecord()))

	require.Len(t, sections, 4)
	assert.Equal(t, SectionComparison, sections[2].Kind)
	assert.Equal(t, "3. MATRIZ COMPARATIVA", sections[2].Title)
	assert.Equal(t, "4. DICTAMEN DE EXPERTO", sections[3].Title)
}

func TestExport_OmitsComparisonWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testExporter().Export(&buf, sampleRecord()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.NotContains(t, out, "MATRIZ COMPARATIVA")
	assert.Contains(t, out, "DICTAMEN DE EXPERTO")
	assert.Contains(t, out, "ID REPORTE: ABC123XYZ")
	assert.Contains(t, out, "FECHA: 09/03/2026")
}

func TestExport_IncludesComparison(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testExporter().Export(&buf, withComparison(sampleRecord())))

	out := buf.String()
	assert.Contains(t, out, "MATRIZ COMPARATIVA")
	assert.Contains(t, out, "Festo")
	assert.Contains(t, out, "VNB-25")
}

func TestExport_StripsMarkup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testExporter().Export(&buf, sampleRecord()))

	out := buf.String()
	assert.NotContains(t, out, "**")
	assert.Contains(t, out, "juntas Viton resiste")
}

func TestExport_PaginatesLongContent(t *testing.T) {
	rec := withComparison(sampleRecord())
	for i := 0; i < 60; i++ {
		rec.Product.SpecRows = append(rec.Product.SpecRows, domain.SpecRow{Label: "Parámetro", Value: strings.Repeat("valor largo ", 8)})
	}
	rec.Recommendations = strings.Repeat("Recomendación extensa sobre mantenimiento predictivo. ", 120)

	pdf := testExporter().render(rec)
	require.False(t, pdf.Err(), "pdf error: %v", pdf.Error())
	assert.Greater(t, pdf.PageCount(), 2)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	assert.Contains(t, buf.String(), "de "+strconv.Itoa(pdf.PageCount())+" // Generado por Xperto IndustrIAL System")
}

func TestExport_SplitsRowTallerThanPage(t *testing.T) {
	var answer strings.Builder
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&answer, "linea-%03d de la respuesta\n", i)
	}
	rec := sampleRecord()
	rec.Product.SpecRows = []domain.SpecRow{{Label: "Respuesta", Value: answer.String()}}

	pdf := testExporter().render(rec)
	require.False(t, pdf.Err(), "pdf error: %v", pdf.Error())

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	out := buf.String()
	assert.GreaterOrEqual(t, strings.Count(out, "VALOR T"), 3)
	for _, marker := range []string{"linea-000", "linea-075", "linea-149"} {
		assert.Contains(t, out, marker)
	}
}

func TestRowChunks(t *testing.T) {
	fresh := linesFitting(marginTop + headerRowH)
	tests := []struct {
		name  string
		lines int
		y     float64
		want  []int
	}{
		{"fits here", 3, 100, []int{3}},
		{"moves whole row", fresh, breakY - bandHeight(2), []int{0, fresh}},
		{"no room left", 1, breakY - 1, []int{0, 1}},
		{"splits oversized row", fresh + 10, breakY - bandHeight(4), []int{4, fresh, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := rowChunks(tt.lines, tt.y)
			assert.Equal(t, tt.want, chunks)

			total := 0
			for _, n := range chunks {
				total += n
			}
			assert.Equal(t, tt.lines, total)
		})
	}
}

func TestExport_Compressed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().Export(&buf, sampleRecord()))

	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
	assert.NotContains(t, buf.String(), "DICTAMEN DE EXPERTO")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Xperto_Reporte_V-100.pdf", Filename(domain.AnalysisRecord{Product: domain.Product{ReferenceCode: "V-100"}}))
	assert.Equal(t, "Xperto_Reporte_VB-25_316.pdf", Filename(domain.AnalysisRecord{Product: domain.Product{ReferenceCode: "VB-25/316"}}))
	assert.Equal(t, "Xperto_Reporte_Tecnico.pdf", Filename(domain.AnalysisRecord{}))
}
