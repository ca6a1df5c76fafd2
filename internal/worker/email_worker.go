package worker

// email_worker.go
// Processes email jobs from QueueEmail through the circuit-breaking mailer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/machelox/Proyecto-Cyberia/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Adjuntos []string `json:"adjuntos,omitempty"`
}

// Enviador is the subset of *infra.Mailer the workers need.
type Enviador interface {
	Enviar(msg infra.Mensaje) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer Enviador
}

func NewEmailWorker(mailer Enviador) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if len(payload.To) == 0 {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: no recipients, skipping")
		return nil
	}
	if w.mailer == nil {
		return errors.New("email_worker: mailer not configured")
	}

	if err := w.mailer.Enviar(infra.Mensaje{
		To:       payload.To,
		Subject:  payload.Subject,
		Body:     payload.Body,
		Adjuntos: payload.Adjuntos,
	}); err != nil {
		return fmt.Errorf("email_worker: send: %w", err)
	}
	log.Info().Strs("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
