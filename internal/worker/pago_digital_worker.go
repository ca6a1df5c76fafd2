package worker

// pago_digital_worker.go
// Journals Yape/Plin notifications as automatic payments in the open session.
// A notification that arrives with no open session keeps failing and ends up
// in dlq:jobs:pago_digital for an operator to register by hand.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"

	"github.com/rs/zerolog/log"
)

// PagoDigitalJobPayload is the notification as received over HTTP.
type PagoDigitalJobPayload = dto.NotificacionPagoRequest

// RegistradorPagoDigital records an automatic PagoManual and returns its id.
type RegistradorPagoDigital interface {
	RegistrarAutomatico(ctx context.Context, n dto.NotificacionPagoRequest) (string, error)
}

type PagoDigitalWorker struct {
	pagos RegistradorPagoDigital
}

func NewPagoDigitalWorker(pagos RegistradorPagoDigital) *PagoDigitalWorker {
	return &PagoDigitalWorker{pagos: pagos}
}

func (w *PagoDigitalWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload PagoDigitalJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("pago_digital_worker: invalid payload: %w", err)
	}
	id, err := w.pagos.RegistrarAutomatico(ctx, payload)
	if err != nil {
		return fmt.Errorf("pago_digital_worker: %s %s: %w", payload.Metodo, payload.Codigo, err)
	}
	log.Info().Str("pago_id", id).Str("metodo", payload.Metodo).Str("codigo", payload.Codigo).
		Str("monto", payload.Monto.StringFixed(2)).Msg("pago_digital_worker: payment journaled")
	return nil
}
