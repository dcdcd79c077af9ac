package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ContentTypePDF is the MIME type of rendered documents.
const ContentTypePDF = "application/pdf"

// Table defines tabular report content keyed by header.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Document describes a report to render: a title, free-form info lines,
// an optional one-row summary table, a detail table, and an optional
// base64-encoded chart image (data-URI prefix accepted).
type Document struct {
	Title      string
	Info       []string
	Summary    *Table
	DetailName string
	Detail     Table
	ChartImage string
}

// Renderer produces PDF documents from aggregated report data.
type Renderer struct{}

// NewRenderer constructs a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render builds the PDF. A malformed chart payload degrades to a
// placeholder note instead of failing the document.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	if len(doc.Detail.Headers) == 0 {
		return nil, fmt.Errorf("report requires at least one detail column")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "", 11)
	for _, line := range doc.Info {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	if len(doc.Info) > 0 {
		pdf.Ln(3)
	}

	if doc.Summary != nil {
		renderTable(pdf, *doc.Summary)
		pdf.Ln(5)
	}

	if doc.ChartImage != "" {
		r.embedChart(pdf, doc.ChartImage)
		pdf.Ln(5)
	}

	if doc.DetailName != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, doc.DetailName, "", 1, "L", false, 0, "")
		pdf.Ln(1)
	}
	renderTable(pdf, doc.Detail)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func renderTable(pdf *gofpdf.Fpdf, table Table) {
	colWidth := 190.0 / float64(len(table.Headers))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range table.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range table.Rows {
		for _, header := range table.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// embedChart decodes the submitted base64 payload and embeds it. Clients
// send canvas exports, typically "data:image/png;base64,...." strings.
func (r *Renderer) embedChart(pdf *gofpdf.Fpdf, payload string) {
	encoded := payload
	if idx := strings.Index(payload, ","); idx >= 0 {
		encoded = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimSpace(encoded))
	}
	if err != nil || len(raw) == 0 {
		placeholderNote(pdf)
		return
	}

	imageType := ""
	switch http.DetectContentType(raw) {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg":
		imageType = "JPG"
	default:
		placeholderNote(pdf)
		return
	}

	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(raw))
	if pdf.Err() {
		pdf.ClearError()
		placeholderNote(pdf)
		return
	}
	pdf.ImageOptions("chart", 25, pdf.GetY(), 160, 0, true, opts, 0, "")
	if pdf.Err() {
		pdf.ClearError()
		placeholderNote(pdf)
	}
}

func placeholderNote(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 8, "[grafico indisponivel]", "", 1, "C", false, 0, "")
}
