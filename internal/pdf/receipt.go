package pdf

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator is mocked in service tests.
type Generator interface {
	GenerateReceipt(data ReceiptData) ([]byte, error)
}

type ReceiptLine struct {
	Title string
	Qty   int
	// Price and Total are display strings, e.g. "9.99".
	Price string
	Total string
}

type ReceiptData struct {
	Reference string
	Customer  string
	Email     string
	PaidAt    time.Time
	Lines     []ReceiptLine
	Total     string
	Currency  string
}

type ReceiptGenerator struct {
	// FontPath is an optional TTF for non-Latin titles; core Helvetica otherwise.
	FontPath string
	fontName string
}

func NewReceiptGenerator(fontPath string) *ReceiptGenerator {
	g := &ReceiptGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.fontName = "DejaVu"
		}
	}
	return g
}

func (g *ReceiptGenerator) GenerateReceipt(data ReceiptData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+data.Reference, false)
	pdf.SetAuthor("DigiRead Store", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "DigiRead Store", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 7, "Payment receipt", "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.kvLine(pdf, "Reference", data.Reference)
	g.kvLine(pdf, "Customer", data.Customer)
	g.kvLine(pdf, "Email", data.Email)
	g.kvLine(pdf, "Paid at", data.PaidAt.Format("02 Jan 2006 15:04 MST"))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Items")
	g.tableRow(pdf, true, "Title", "Qty", "Price", "Total")
	for _, l := range data.Lines {
		g.tableRow(pdf, false, l.Title, fmt.Sprintf("%d", l.Qty), l.Price, l.Total)
	}
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total: %s %s", data.Total, data.Currency), "", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReceiptGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.fontName == "Helvetica" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

func (g *ReceiptGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReceiptGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(35, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReceiptGenerator) tableRow(pdf *gofpdf.Fpdf, header bool, title, qty, price, total string) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 11)
	pdf.CellFormat(95, 7, title, "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 7, qty, "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, price, "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, total, "B", 1, "R", false, 0, "")
}

func (g *ReceiptGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
