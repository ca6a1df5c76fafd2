package worker

// cierre_worker.go
// Renders the close-out PDF of a session and mails it to the owner.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/infra"

	"github.com/rs/zerolog/log"
)

// CierreJobPayload is enqueued by CajaService after a successful close.
type CierreJobPayload struct {
	Cierre dto.CierreResponse `json:"cierre"`
	Cajero string             `json:"cajero"`
}

// CierreWorker turns a CierreJobPayload into a PDF and an email.
type CierreWorker struct {
	mailer         Enviador
	pdfStoragePath string
	destinatario   string
	generar        func(dto.CierreResponse, string, string) (string, error)
}

// NewCierreWorker wires the report destination. An empty destinatario keeps
// the PDF on disk without mailing it.
func NewCierreWorker(mailer Enviador, pdfStoragePath, destinatario string) *CierreWorker {
	return &CierreWorker{
		mailer:         mailer,
		pdfStoragePath: pdfStoragePath,
		destinatario:   destinatario,
		generar:        infra.GenerateCierrePDF,
	}
}

func (w *CierreWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload CierreJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("cierre_worker: invalid payload: %w", err)
	}

	path, err := w.generar(payload.Cierre, payload.Cajero, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("cierre_worker: pdf: %w", err)
	}
	log.Info().Str("sesion_caja_id", payload.Cierre.SesionCajaID).Str("pdf", path).Msg("cierre_worker: report generated")

	if w.destinatario == "" || w.mailer == nil {
		return nil
	}

	c := payload.Cierre
	body := fmt.Sprintf(
		"Cierre de caja %s\nCajero: %s\nEsperado: S/ %s\nContado: S/ %s\nDiferencia: S/ %s (%s)\n",
		c.SesionCajaID, payload.Cajero,
		c.MontoEsperado.StringFixed(2), c.MontoContado.StringFixed(2),
		c.Diferencia.StringFixed(2), c.Clasificacion,
	)
	if err := w.mailer.Enviar(infra.Mensaje{
		To:       []string{w.destinatario},
		Subject:  "Cierre de caja " + c.ClosedAt,
		Body:     body,
		Adjuntos: []string{path},
	}); err != nil {
		return fmt.Errorf("cierre_worker: send: %w", err)
	}
	return nil
}
