package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/fieldops/visits-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Render(report model.VisitReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Visit Report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Reference %s - %s", report.Visit.Reference, formatDate(report.Visit.VisitDate)), "", 1, "C", false, 0, "")
	if report.Contract != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Contract %s (%s to %s)",
			report.Contract.Name,
			formatDate(report.Contract.StartDate),
			formatDate(report.Contract.EndDate),
		), "", 1, "C", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Non-contracted visit", "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	addClientBlock(pdf, g.fontName, report.Client)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Visit details", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Field", "Value"}
	colWidths := []float64{55, 125}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	rows := [][]string{
		{"Scheduled month", report.Visit.VisitMonth.String()},
		{"Sequence in month", fmt.Sprintf("%d", report.Visit.SequenceNo)},
		{"Status", string(report.Visit.State)},
		{"Type", visitKindLabel(report.Visit.Kind)},
		{"Assigned engineer", safeValue(report.Visit.EngineerName)},
		{"Type of problem", safeValue(report.Visit.ProblemType)},
		{"Visit address", safeValue(report.Visit.Address)},
	}
	if report.Visit.Kind == model.VisitKindExtra {
		rows = append(rows, []string{"Extra visit reason", safeValue(report.Visit.ExtraReason)})
	}
	for _, row := range rows {
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Engineer comments", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, safeValue(report.Visit.EngineerComments), "", "L", false)

	pdf.Ln(8)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	signatureBlock(pdf, g.fontName, "Engineer", report.Visit.EngineerName)
	signatureBlock(pdf, g.fontName, "Client", report.Client.Name)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addClientBlock(pdf *gofpdf.Fpdf, fontName string, client model.Client) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, "Client", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		client.Name,
		fmt.Sprintf("Address: %s", safeValue(client.Address)),
		fmt.Sprintf("Email: %s", safeValue(client.Email)),
		fmt.Sprintf("Phone: %s", safeValue(client.Phone)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label, name string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(name)), "", 1, "L", false, 0, "")
}

func visitKindLabel(kind model.VisitKind) string {
	if kind == model.VisitKindExtra {
		return "Extra (beyond quota)"
	}
	return "Scheduled"
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
