package report

import (
	"strings"

	"xperto/internal/domain"
)

// Matrix is the comparison table transposed for display: one column per
// brand, one row per property.
type Matrix struct {
	Brands []string
	Rows   []MatrixRow
}

// MatrixRow is one property across every brand.
type MatrixRow struct {
	Label string
	Cells []string
}

var matrixProperties = []struct {
	label    string
	value    func(domain.ComparisonRow) string
	optional bool
}{
	{"REF", func(r domain.ComparisonRow) string { return r.ReferenceCode }, false},
	{"MATERIAL", func(r domain.ComparisonRow) string { return r.Material }, false},
	{"DIMS", func(r domain.ComparisonRow) string { return r.Dimensions }, false},
	{"PESO", func(r domain.ComparisonRow) string { return r.Weight }, true},
	{"CAPACIDAD", func(r domain.ComparisonRow) string { return r.Capacity }, false},
	{"NORMAS", func(r domain.ComparisonRow) string { return r.Standards }, true},
	{"OPCIONES", func(r domain.ComparisonRow) string { return r.Options }, true},
}

// NewMatrix transposes rows. Optional properties appear only when at least
// one brand has a value for them. An empty input yields an empty matrix.
func NewMatrix(rows []domain.ComparisonRow) Matrix {
	var m Matrix
	if len(rows) == 0 {
		return m
	}
	for _, r := range rows {
		m.Brands = append(m.Brands, r.Brand)
	}
	for _, p := range matrixProperties {
		cells := make([]string, len(rows))
		filled := false
		for i, r := range rows {
			cells[i] = p.value(r)
			if strings.TrimSpace(cells[i]) != "" {
				filled = true
			}
		}
		if p.optional && !filled {
			continue
		}
		m.Rows = append(m.Rows, MatrixRow{Label: p.label, Cells: cells})
	}
	return m
}

// Empty reports whether the matrix has no brands.
func (m Matrix) Empty() bool {
	return len(m.Brands) == 0
}
