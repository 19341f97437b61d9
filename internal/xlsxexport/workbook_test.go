package xlsxexport_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"xperto/internal/domain"
	"xperto/internal/xlsxexport"
)

func record() domain.AnalysisRecord {
	return domain.AnalysisRecord{
		Product: domain.Product{
			Name:          "Motor trifásico IE3",
			ReferenceCode: "1LE1003",
			Standards:     "IEC 60034",
			SpecRows:      []domain.SpecRow{{Label: "Potencia", Value: "**7,5 kW**"}},
		},
		VariantsNarrative: "Brida B5 o patas B3.",
		Recommendations:   "<p>Verificar alineación.</p>",
		Confidence:        64,
	}
}

func open(t *testing.T, rec domain.AnalysisRecord) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, xlsxexport.Write(&buf, rec))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWrite_Identification(t *testing.T) {
	f := open(t, record())

	rows, err := f.GetRows(xlsxexport.SheetIdentification)
	require.NoError(t, err)
	assert.Equal(t, []string{"Parámetro", "Valor"}, rows[0])
	assert.Equal(t, []string{"Producto", "Motor trifásico IE3"}, rows[1])
	assert.Equal(t, []string{"Referencia", "1LE1003"}, rows[2])
	assert.Equal(t, []string{"Normas", "IEC 60034"}, rows[3])
	assert.Equal(t, []string{"Potencia", "7,5 kW"}, rows[4])
}

func TestWrite_ComparisonSheetOnlyWithRows(t *testing.T) {
	f := open(t, record())
	assert.Equal(t, []string{xlsxexport.SheetIdentification, xlsxexport.SheetAnalysis}, f.GetSheetList())

	rec := record()
	rec.ComparisonRows = []domain.ComparisonRow{{Brand: "ABB", ReferenceCode: "M3BP", Capacity: "7,5 kW"}}
	f = open(t, rec)
	assert.Equal(t, []string{xlsxexport.SheetIdentification, xlsxexport.SheetComparison, xlsxexport.SheetAnalysis}, f.GetSheetList())

	rows, err := f.GetRows(xlsxexport.SheetComparison)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ABB", rows[1][0])
	assert.Equal(t, "M3BP", rows[1][1])
}

func TestWrite_AnalysisSheet(t *testing.T) {
	f := open(t, record())

	rows, err := f.GetRows(xlsxexport.SheetAnalysis)
	require.NoError(t, err)
	assert.Equal(t, []string{"Análisis de variantes", "Brida B5 o patas B3."}, rows[1])
	assert.Equal(t, []string{"Recomendaciones", "Verificar alineación."}, rows[2])
	assert.Equal(t, []string{"Confianza", "64"}, rows[3])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Xperto_Reporte_1LE1003.xlsx", xlsxexport.Filename(record()))
	assert.Equal(t, "Xperto_Reporte_Tecnico.xlsx", xlsxexport.Filename(domain.AnalysisRecord{}))
}
