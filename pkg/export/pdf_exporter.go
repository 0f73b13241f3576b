package export

import (
	"bytes"
	"fmt"
	"unicode"

	"github.com/go-fonts/dejavu/dejavusanscondensed"
	"github.com/go-fonts/dejavu/dejavusanscondensedbold"
	"github.com/jung-kurt/gofpdf"
)

const pdfFontFamily = "DejaVu"

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct {
	compress bool
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{compress: true}
}

// Render creates a PDF document with an optional title and table body. Text
// is set in an embedded UTF-8 font; cells holding Arabic are laid out
// right to left.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", dejavusanscondensed.TTF)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", dejavusanscondensedbold.TTF)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load pdf font: %w", err)
	}
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	cell := func(w, h float64, text, border, align string, fill bool) {
		if isRightToLeft(text) {
			pdf.RTL()
			defer pdf.LTR()
			if align == "" {
				align = "R"
			}
		}
		pdf.CellFormat(w, h, text, border, 0, align, fill, 0, "")
	}

	if title != "" {
		pdf.SetFont(pdfFontFamily, "B", 14)
		cell(0, 10, title, "", "C", false)
		pdf.Ln(14)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(data.Headers))

	pdf.SetFont(pdfFontFamily, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, header := range data.Headers {
		cell(colWidth, 8, header, "1", "C", true)
	}
	pdf.Ln(-1)

	pdf.SetFont(pdfFontFamily, "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			cell(colWidth, 7, truncate(row[header], 40), "1", "", false)
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) ContentType() string { return "application/pdf" }

func (e *PDFExporter) Extension() string { return "pdf" }

func isRightToLeft(value string) bool {
	for _, r := range value {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}
