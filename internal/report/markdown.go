package report

import (
	"strings"

	"xperto/internal/domain"
	"xperto/internal/richtext"
)

// Markdown renders rec as a Markdown document for terminal display.
func Markdown(rec domain.AnalysisRecord) string {
	var b strings.Builder
	p := rec.Product

	b.WriteString("# " + p.Name + "\n\n")
	b.WriteString("**REF:** `" + p.ReferenceCode + "` · **Confianza:** " + FormatConfidence(rec.Confidence) + "%\n\n")

	if attrs := headline(p); len(attrs) > 0 {
		for _, a := range attrs {
			b.WriteString("- **" + a[0] + ":** " + inline(a[1]) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Especificaciones técnicas\n\n")
	if len(p.SpecRows) > 0 {
		b.WriteString("| Parámetro | Valor / Descripción |\n|---|---|\n")
		for _, r := range p.SpecRows {
			b.WriteString("| " + cell(r.Label) + " | " + cell(r.Value) + " |\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Variantes de sistema\n\n")
	b.WriteString(richtext.ToMarkdown(rec.VariantsNarrative) + "\n\n")

	if m := NewMatrix(rec.ComparisonRows); !m.Empty() {
		b.WriteString("## Matriz comparativa\n\n")
		b.WriteString("| Propiedad |")
		for _, brand := range m.Brands {
			b.WriteString(" " + cell(brand) + " |")
		}
		b.WriteString("\n|---|" + strings.Repeat("---|", len(m.Brands)) + "\n")
		for _, row := range m.Rows {
			b.WriteString("| " + row.Label + " |")
			for _, c := range row.Cells {
				b.WriteString(" " + cell(c) + " |")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Análisis experto\n\n")
	b.WriteString(richtext.ToMarkdown(rec.Recommendations) + "\n")
	return b.String()
}

// cell flattens text into a single table cell.
func cell(s string) string {
	return strings.ReplaceAll(inline(s), "|", `\|`)
}

func inline(s string) string {
	return strings.Join(strings.Fields(richtext.ToPlain(s)), " ")
}
