package infra

import (
	"errors"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_Enviar(t *testing.T) {
	var enviado *email.Email
	m := NewMailerWithSender("caja@cyberia.pe", func(e *email.Email) error {
		enviado = e
		return nil
	})

	err := m.Enviar(Mensaje{To: []string{"dueno@cyberia.pe"}, Subject: "Cierre", Body: "ok"})
	require.NoError(t, err)
	require.NotNil(t, enviado)
	assert.Equal(t, "caja@cyberia.pe", enviado.From)
	assert.Equal(t, []string{"dueno@cyberia.pe"}, enviado.To)
	assert.Equal(t, "Cierre", enviado.Subject)
}

func TestMailer_BreakerAbreTrasFallos(t *testing.T) {
	llamadas := 0
	m := NewMailerWithSender("caja@cyberia.pe", func(*email.Email) error {
		llamadas++
		return errors.New("smtp down")
	})

	for i := 0; i < 3; i++ {
		assert.Error(t, m.Enviar(Mensaje{To: []string{"x@y.pe"}}))
	}
	err := m.Enviar(Mensaje{To: []string{"x@y.pe"}})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, llamadas, "open breaker must not reach the relay")
	assert.Equal(t, "open", m.Estado())
}
