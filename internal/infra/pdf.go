package infra

// pdf.go: close-out report rendered with go-pdf/fpdf.
// One A5 page: session header, ledger totals, the reconciliation
// (esperado / contado / diferencia) and the classification.
// The output file is saved to storagePath/cierre_{sesion}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateCierrePDF writes the close-out report for a session and returns the
// path of the generated file.
func GenerateCierrePDF(c dto.CierreResponse, cajero string, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("cierre_%s.pdf", c.SesionCajaID))

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20
	labelW := contentW * 0.65
	valueW := contentW - labelW

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Cierre de caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sesion "+c.SesionCajaID, "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, "Cajero: "+cajero+"   Cierre: "+c.ClosedAt, "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	fila := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, "S/ "+v.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Ledger totals ─────────────────────────────────────────────────────────
	r := c.Resumen
	fila("Monto inicial", r.MontoInicial, false)
	fila(fmt.Sprintf("Ventas registradas (%d)", r.QVentas), r.TotalVentasApp, false)
	fila("Monto sistema POS", c.MontoPOS, false)
	fila("(+) Cobros de deuda en efectivo", r.CobrosDeudaEfectivo, false)
	fila("(-) Ventas digitales (Yape/Plin)", r.VentasDigitales, false)
	fila("(-) Deudas nuevas", r.TotalDeudasNuevas, false)
	fila("(-) Gastos y retiros", r.TotalGastos, false)

	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Reconciliation ────────────────────────────────────────────────────────
	fila("Efectivo esperado", c.MontoEsperado, true)
	fila("Efectivo contado", c.MontoContado, true)
	fila("Diferencia", c.Diferencia, true)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Resultado: "+c.Clasificacion, "1", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
