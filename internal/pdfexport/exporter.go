// Package pdfexport lays an analysis record out as a paginated A4 report.
package pdfexport

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"xperto/internal/csvexport"
	"xperto/internal/domain"
	"xperto/internal/richtext"
)

// SectionKind identifies one of the fixed report sections.
type SectionKind int

const (
	SectionIdentification SectionKind = iota
	SectionVariants
	SectionComparison
	SectionRecommendations
)

// Section is one planned section of the document, in print order.
type Section struct {
	Kind  SectionKind
	Title string
}

var sectionTitles = map[SectionKind]string{
	SectionIdentification:  "IDENTIFICACIÓN DE COMPONENTE",
	SectionVariants:        "ANÁLISIS DE VARIANTES",
	SectionComparison:      "MATRIZ COMPARATIVA",
	SectionRecommendations: "DICTAMEN DE EXPERTO",
}

// Plan returns the sections a record produces. The comparison matrix is
// omitted when the record has no comparison rows.
func Plan(rec domain.AnalysisRecord) []Section {
	kinds := []SectionKind{SectionIdentification, SectionVariants}
	if rec.HasComparison() {
		kinds = append(kinds, SectionComparison)
	}
	kinds = append(kinds, SectionRecommendations)

	sections := make([]Section, len(kinds))
	for i, k := range kinds {
		sections[i] = Section{Kind: k, Title: fmt.Sprintf("%d. %s", i+1, sectionTitles[k])}
	}
	return sections
}

// Filename derives the download name from the record's reference code.
func Filename(rec domain.AnalysisRecord) string {
	ref := csvexport.SanitizeFilename(rec.Product.ReferenceCode)
	if ref == "" {
		ref = "Tecnico"
	}
	return "Xperto_Reporte_" + ref + ".pdf"
}

// ContentType is the media type of exported documents.
const ContentType = "application/pdf"

// Option configures an Exporter.
type Option func(*Exporter)

// WithCompression toggles stream compression. Uncompressed output is easier
// to inspect.
func WithCompression(on bool) Option {
	return func(e *Exporter) { e.compress = on }
}

// WithClock sets the time source used for the report date.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithReportID sets the generator of the printed report id.
func WithReportID(newID func() string) Option {
	return func(e *Exporter) { e.newID = newID }
}

// Exporter renders records to PDF. It holds no per-document state and is
// safe for concurrent use.
type Exporter struct {
	compress bool
	now      func() time.Time
	newID    func() string
}

// NewExporter creates an Exporter. Compression is on by default.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		compress: true,
		now:      time.Now,
		newID:    newReportID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes the PDF for rec to w.
func (e *Exporter) Export(w io.Writer, rec domain.AnalysisRecord) error {
	pdf := e.render(rec)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func newReportID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

// Layout, in millimetres on A4 portrait.
const (
	pageW        = 210.0
	marginLeft   = 14.0
	marginTop    = 20.0
	marginRight  = 16.0
	marginBottom = 20.0
	contentW     = pageW - marginLeft - marginRight
	pageH        = 297.0
	breakY       = pageH - marginBottom
	headerBandH  = 40.0
	footerTop    = 285.0
	lineH        = 5.0
	rowLineH     = lineH - 1
	headerRowH   = 7.0
	cellPad      = 1.5
)

type rgb struct{ r, g, b int }

var (
	colorDark   = rgb{15, 23, 42}
	colorPurple = rgb{126, 34, 206}
	colorCyan   = rgb{14, 116, 144}
	colorBrand  = rgb{34, 211, 238}
	colorMuted  = rgb{200, 200, 200}
	colorFooter = rgb{150, 150, 150}
	colorBody   = rgb{50, 50, 50}
	colorLabel  = rgb{60, 60, 60}
	colorStripe = rgb{241, 245, 249}
	colorWhite  = rgb{255, 255, 255}
)

// doc bundles one in-progress document with its text translator.
type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (e *Exporter) render(rec domain.AnalysisRecord) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AliasNbPages("{nb}")
	pdf.SetTitle("Informe técnico "+rec.Product.ReferenceCode, true)
	pdf.SetCreator("Xperto IndustrIAL", true)

	d := &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(d.footer)

	pdf.AddPage()
	d.header(e.now(), e.newID())
	pdf.SetY(headerBandH + 10)

	for i, s := range Plan(rec) {
		accent := colorPurple
		if i%2 == 1 {
			accent = colorCyan
		}
		d.heading(s.Title, accent)
		switch s.Kind {
		case SectionIdentification:
			d.identification(rec.Product)
		case SectionVariants:
			d.paragraph(rec.VariantsNarrative, "")
		case SectionComparison:
			d.comparison(rec.ComparisonRows)
		case SectionRecommendations:
			d.paragraph(rec.Recommendations, "I")
		}
		pdf.Ln(8)
	}
	return pdf
}

func (d *doc) header(now time.Time, reportID string) {
	p := d.pdf
	setFill(p, colorDark)
	p.Rect(0, 0, pageW, headerBandH, "F")

	p.SetFont("Helvetica", "B", 24)
	setText(p, colorWhite)
	p.Text(marginLeft, 20, "Xperto")
	brandX := marginLeft + p.GetStringWidth("Xperto ")
	setText(p, colorBrand)
	p.Text(brandX, 20, "IndustrIAL")

	p.SetFont("Helvetica", "", 10)
	setText(p, colorMuted)
	p.Text(marginLeft, 28, d.tr("INFORME TÉCNICO AVANZADO"))

	p.SetFont("Helvetica", "", 9)
	p.Text(150, 20, "FECHA: "+now.Format("02/01/2006"))
	p.Text(150, 25, "ID REPORTE: "+reportID)
}

func (d *doc) footer() {
	p := d.pdf
	setFill(p, colorDark)
	p.Rect(0, footerTop, pageW, pageH-footerTop, "F")
	p.SetY(footerTop + 3)
	p.SetFont("Helvetica", "", 8)
	setText(p, colorFooter)
	text := fmt.Sprintf("Página %d de {nb} // Generado por Xperto IndustrIAL System", p.PageNo())
	p.CellFormat(0, 6, d.tr(text), "", 0, "C", false, 0, "")
}

// heading starts a section, moving to a new page when fewer than about
// three lines of content would fit below it.
func (d *doc) heading(title string, accent rgb) {
	p := d.pdf
	d.ensureSpace(30)
	p.SetFont("Helvetica", "B", 14)
	setText(p, colorDark)
	p.CellFormat(0, 7, d.tr(title), "", 1, "L", false, 0, "")
	y := p.GetY()
	setDraw(p, accent)
	p.SetLineWidth(0.5)
	p.Line(marginLeft, y, 100, y)
	p.Ln(4)
}

func (d *doc) identification(prod domain.Product) {
	p := d.pdf
	p.SetFont("Courier", "B", 11)
	setText(p, colorLabel)
	lines := []struct{ label, value string }{
		{"PRODUCTO", prod.Name},
		{"REFERENCIA", prod.ReferenceCode},
		{"DIMENSIONES", prod.Dimensions},
		{"MATERIAL", prod.Material},
		{"PESO", prod.Weight},
		{"CAPACIDAD", prod.Capacity},
		{"TEMPERATURA", prod.TemperatureRange},
		{"NORMAS", prod.Standards},
		{"VARIANTES", prod.VariantsSummary},
	}
	for _, l := range lines {
		if strings.TrimSpace(l.value) == "" {
			continue
		}
		p.MultiCell(contentW, 6, d.tr(l.label+": "+richtext.ToPlain(l.value)), "", "L", false)
	}
	p.Ln(4)

	if len(prod.SpecRows) == 0 {
		p.SetFont("Helvetica", "I", 9)
		setText(p, colorBody)
		p.MultiCell(contentW, lineH, d.tr("Sin parámetros técnicos registrados."), "", "L", false)
		return
	}
	rows := make([][]string, len(prod.SpecRows))
	for i, r := range prod.SpecRows {
		rows[i] = []string{richtext.ToPlain(r.Label), richtext.ToPlain(r.Value)}
	}
	d.table([]string{"PARÁMETRO", "VALOR TÉCNICO"}, []float64{60, contentW - 60}, rows, "Courier", 9)
}

func (d *doc) comparison(rows []domain.ComparisonRow) {
	body := make([][]string, len(rows))
	for i, r := range rows {
		body[i] = []string{
			richtext.ToPlain(r.Brand),
			richtext.ToPlain(r.ReferenceCode),
			richtext.ToPlain(r.Material),
			richtext.ToPlain(r.Dimensions),
			richtext.ToPlain(r.Capacity),
		}
	}
	d.table(
		[]string{"MARCA", "REF", "MATERIAL", "DIMS", "CAPACIDAD"},
		[]float64{36, 32, 40, 36, contentW - 144},
		body, "Courier", 8,
	)
}

func (d *doc) paragraph(text, style string) {
	p := d.pdf
	p.SetFont("Helvetica", style, 10)
	setText(p, colorBody)
	p.MultiCell(contentW, lineH, d.tr(richtext.ToPlain(text)), "", "L", false)
}

// table draws a grid with a repeated header row. Cells wrap, and a row that
// does not fit moves to the next page together with a fresh header. A row
// taller than a whole page is split across pages, each part with its own
// borders and header.
func (d *doc) table(head []string, widths []float64, rows [][]string, font string, size float64) {
	p := d.pdf
	d.tableHeader(head, widths, font, size)

	for i, row := range rows {
		p.SetFont("Helvetica", "", size)
		cells, lines := d.wrapRow(row, widths)
		off := 0
		for k, n := range rowChunks(lines, p.GetY()) {
			if k > 0 {
				p.AddPage()
				d.tableHeader(head, widths, font, size)
				p.SetFont("Helvetica", "", size)
			}
			if n == 0 {
				continue
			}
			d.rowSlice(cells, widths, off, n, i%2 == 1)
			off += n
		}
	}
}

// rowSlice draws lines [off, off+n) of every cell as one bordered band.
func (d *doc) rowSlice(cells [][]string, widths []float64, off, n int, fill bool) {
	p := d.pdf
	height := bandHeight(n)
	x, y := marginLeft, p.GetY()
	setFill(p, colorStripe)
	setDraw(p, colorMuted)
	setText(p, colorBody)
	p.SetLineWidth(0.2)
	style := "D"
	if fill {
		style = "FD"
	}
	for c, lines := range cells {
		p.Rect(x, y, widths[c], height, style)
		for j := off; j < off+n && j < len(lines); j++ {
			p.SetXY(x+cellPad, y+cellPad+float64(j-off)*rowLineH)
			p.CellFormat(widths[c]-2*cellPad, rowLineH, lines[j], "", 0, "L", false, 0, "")
		}
		x += widths[c]
	}
	p.SetXY(marginLeft, y+height)
}

func (d *doc) tableHeader(head []string, widths []float64, font string, size float64) {
	p := d.pdf
	p.SetFont(font, "B", size)
	setFill(p, colorDark)
	setText(p, colorWhite)
	for c, h := range head {
		p.CellFormat(widths[c], headerRowH, d.tr(h), "1", 0, "L", true, 0, "")
	}
	p.Ln(-1)
}

// wrapRow splits every cell into printable lines and returns the row's
// line count, which is at least one.
func (d *doc) wrapRow(row []string, widths []float64) ([][]string, int) {
	cells := make([][]string, len(row))
	maxLines := 1
	for c, text := range row {
		cells[c] = d.pdf.SplitText(d.tr(text), widths[c]-2*cellPad)
		maxLines = max(maxLines, len(cells[c]))
	}
	return cells, maxLines
}

// rowChunks distributes a row of the given line count over pages, starting
// at y on the current page. The first entry is what is printed on the
// current page and may be zero; each later entry starts a fresh page. A row
// that fits on a fresh page is never split.
func rowChunks(lines int, y float64) []int {
	here := linesFitting(y)
	if lines <= here {
		return []int{lines}
	}
	fresh := linesFitting(marginTop + headerRowH)
	if lines <= fresh || here < 1 {
		here = 0
	}
	chunks := []int{here}
	for rest := lines - here; rest > 0; rest -= fresh {
		chunks = append(chunks, min(rest, fresh))
	}
	return chunks
}

func linesFitting(y float64) int {
	return int(math.Floor((breakY - y - 2*cellPad) / rowLineH))
}

func bandHeight(lines int) float64 {
	return float64(lines)*rowLineH + 2*cellPad
}

func (d *doc) ensureSpace(h float64) {
	if d.pdf.GetY()+h > breakY {
		d.pdf.AddPage()
	}
}

func setFill(p *fpdf.Fpdf, c rgb) { p.SetFillColor(c.r, c.g, c.b) }
func setText(p *fpdf.Fpdf, c rgb) { p.SetTextColor(c.r, c.g, c.b) }
func setDraw(p *fpdf.Fpdf, c rgb) { p.SetDrawColor(c.r, c.g, c.b) }
