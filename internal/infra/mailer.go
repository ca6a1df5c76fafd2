package infra

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/config"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Mensaje is one outgoing email; Adjuntos are file paths.
type Mensaje struct {
	To       []string
	Subject  string
	Body     string
	Adjuntos []string
}

// Sender delivers a prepared *email.Email. Swapped in tests.
type Sender func(e *email.Email) error

// Mailer sends email through SMTP behind a circuit breaker so a downed relay
// fails fast instead of stalling the worker pool.
type Mailer struct {
	from string
	send Sender
	cb   *gobreaker.CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return NewMailerWithSender(cfg.SMTPUser, func(e *email.Email) error {
		return e.Send(addr, auth)
	})
}

// NewMailerWithSender builds a Mailer around an arbitrary delivery function.
func NewMailerWithSender(from string, send Sender) *Mailer {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("mailer: circuit breaker state changed")
		},
	})
	return &Mailer{from: from, send: send, cb: cb}
}

// Enviar builds and sends m. Returns gobreaker.ErrOpenState while the
// breaker is open.
func (m *Mailer) Enviar(msg Mensaje) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	for _, path := range msg.Adjuntos {
		if path == "" {
			continue
		}
		if _, err := e.AttachFile(path); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", path, err)
		}
	}

	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.send(e)
	})
	return err
}

// Estado exposes the breaker state for health reporting.
func (m *Mailer) Estado() string {
	return m.cb.State().String()
}
