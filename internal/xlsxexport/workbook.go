// Package xlsxexport writes an analysis record as an Excel workbook.
package xlsxexport

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"xperto/internal/csvexport"
	"xperto/internal/domain"
	"xperto/internal/richtext"
)

// Sheet names, in workbook order. The comparison sheet is only present when
// the record has comparison rows.
const (
	SheetIdentification = "Identificación"
	SheetComparison     = "Comparativa"
	SheetAnalysis       = "Dictamen"
)

// ContentType is the media type of exported workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename derives the download name from the record's reference code.
func Filename(rec domain.AnalysisRecord) string {
	ref := csvexport.SanitizeFilename(rec.Product.ReferenceCode)
	if ref == "" {
		ref = "Tecnico"
	}
	return "Xperto_Reporte_" + ref + ".xlsx"
}

// Write renders rec as a workbook to w.
func Write(w io.Writer, rec domain.AnalysisRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"0F172A"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("creating wrap style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetIdentification); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := writeTable(f, SheetIdentification, []string{"Parámetro", "Valor"}, identificationRows(rec.Product), headStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetIdentification, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetIdentification, "B", "B", 70); err != nil {
		return err
	}

	if rec.HasComparison() {
		if _, err := f.NewSheet(SheetComparison); err != nil {
			return fmt.Errorf("creating sheet %s: %w", SheetComparison, err)
		}
		head := []string{"Marca", "Referencia", "Material", "Dimensiones", "Peso", "Capacidad", "Normas", "Opciones"}
		if err := writeTable(f, SheetComparison, head, comparisonRows(rec.ComparisonRows), headStyle); err != nil {
			return err
		}
		if err := f.SetColWidth(SheetComparison, "A", "H", 20); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetAnalysis); err != nil {
		return fmt.Errorf("creating sheet %s: %w", SheetAnalysis, err)
	}
	analysis := [][]string{
		{"Análisis de variantes", richtext.ToPlain(rec.VariantsNarrative)},
		{"Recomendaciones", richtext.ToPlain(rec.Recommendations)},
	}
	if err := writeTable(f, SheetAnalysis, []string{"Sección", "Contenido"}, analysis, headStyle); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetAnalysis, "A4", "Confianza"); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetAnalysis, "B4", rec.Confidence); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetAnalysis, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetAnalysis, "B", "B", 100); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetAnalysis, "B2", "B3", wrapStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, head []string, rows [][]string, headStyle int) error {
	if err := setRow(f, sheet, 1, head); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(head), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, n, err)
	}
	return nil
}

func identificationRows(p domain.Product) [][]string {
	rows := [][]string{
		{"Producto", p.Name},
		{"Referencia", p.ReferenceCode},
	}
	for _, o := range [][2]string{
		{"Dimensiones", p.Dimensions},
		{"Material", p.Material},
		{"Peso", p.Weight},
		{"Capacidad", p.Capacity},
		{"Rango de temperatura", p.TemperatureRange},
		{"Normas", p.Standards},
		{"Variantes", p.VariantsSummary},
	} {
		if strings.TrimSpace(o[1]) != "" {
			rows = append(rows, []string{o[0], o[1]})
		}
	}
	for _, r := range p.SpecRows {
		rows = append(rows, []string{richtext.ToPlain(r.Label), richtext.ToPlain(r.Value)})
	}
	return rows
}

func comparisonRows(rows []domain.ComparisonRow) [][]string {
	out := make([][]string, len(rows))
	for i, c := range rows {
		out[i] = []string{c.Brand, c.ReferenceCode, c.Material, c.Dimensions, c.Weight, c.Capacity, c.Standards, c.Options}
	}
	return out
}
