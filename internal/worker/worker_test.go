package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/infra"
	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []infra.Mensaje
	err  error
}

func (f *fakeMailer) Enviar(m infra.Mensaje) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeRegistrador struct {
	got dto.NotificacionPagoRequest
	err error
}

func (f *fakeRegistrador) RegistrarAutomatico(_ context.Context, n dto.NotificacionPagoRequest) (string, error) {
	f.got = n
	return "pago-1", f.err
}

type fakePendientes struct{ deudas []dto.DeudaResponse }

func (f fakePendientes) Pendientes(context.Context) ([]dto.DeudaResponse, error) {
	return f.deudas, nil
}

type fakeEncolador struct{ jobs []EmailJobPayload }

func (f *fakeEncolador) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	f.jobs = append(f.jobs, p)
	return nil
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestSiguientePaso(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, pasoListo, siguientePaso(Job{Attempts: 1}, nil))
	assert.Equal(t, pasoReintentar, siguientePaso(Job{Attempts: 1}, boom))
	assert.Equal(t, pasoReintentar, siguientePaso(Job{Attempts: MaxJobAttempts - 1}, boom))
	assert.Equal(t, pasoDLQ, siguientePaso(Job{Attempts: MaxJobAttempts}, boom))
}

func TestEmailWorker_Process(t *testing.T) {
	m := &fakeMailer{}
	w := NewEmailWorker(m)

	err := w.Process(context.Background(), mustJSON(t, EmailJobPayload{To: []string{"a@b.pe"}, Subject: "hola", Body: "x"}))
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "hola", m.sent[0].Subject)

	// no recipients is not an error
	require.NoError(t, w.Process(context.Background(), mustJSON(t, EmailJobPayload{Subject: "nadie"})))
	assert.Len(t, m.sent, 1)

	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{bad`)))

	m.err = errors.New("smtp down")
	assert.Error(t, w.Process(context.Background(), mustJSON(t, EmailJobPayload{To: []string{"a@b.pe"}})))
}

func TestCierreWorker_GeneratesAndMails(t *testing.T) {
	m := &fakeMailer{}
	w := NewCierreWorker(m, t.TempDir(), "owner@cyberia.pe")
	w.generar = func(c dto.CierreResponse, cajero, dir string) (string, error) {
		return dir + "/cierre_" + c.SesionCajaID + ".pdf", nil
	}

	payload := CierreJobPayload{
		Cajero: "cajero@cyberia.pe",
		Cierre: dto.CierreResponse{
			SesionCajaID:  "s1",
			MontoEsperado: decimal.RequireFromString("265.00"),
			MontoContado:  decimal.RequireFromString("265.05"),
			Diferencia:    decimal.RequireFromString("0.05"),
			Clasificacion: "cuadrada",
		},
	}
	require.NoError(t, w.Process(context.Background(), mustJSON(t, payload)))
	require.Len(t, m.sent, 1)
	assert.Equal(t, []string{"owner@cyberia.pe"}, m.sent[0].To)
	assert.Contains(t, m.sent[0].Body, "0.05 (cuadrada)")
	assert.Len(t, m.sent[0].Adjuntos, 1)
}

func TestCierreWorker_NoRecipientKeepsPDFOnly(t *testing.T) {
	m := &fakeMailer{}
	w := NewCierreWorker(m, t.TempDir(), "")
	w.generar = func(dto.CierreResponse, string, string) (string, error) { return "x.pdf", nil }

	require.NoError(t, w.Process(context.Background(), mustJSON(t, CierreJobPayload{})))
	assert.Empty(t, m.sent)
}

func TestCierreWorker_PDFErrorIsRetried(t *testing.T) {
	w := NewCierreWorker(&fakeMailer{}, t.TempDir(), "x@y.pe")
	w.generar = func(dto.CierreResponse, string, string) (string, error) { return "", errors.New("disk full") }
	assert.Error(t, w.Process(context.Background(), mustJSON(t, CierreJobPayload{})))
}

func TestPagoDigitalWorker_Process(t *testing.T) {
	reg := &fakeRegistrador{}
	w := NewPagoDigitalWorker(reg)

	n := dto.NotificacionPagoRequest{Metodo: "yape", Monto: decimal.NewFromInt(12), ClienteRef: "Ana", Codigo: "OP-1"}
	require.NoError(t, w.Process(context.Background(), mustJSON(t, n)))
	assert.Equal(t, "OP-1", reg.got.Codigo)
	assert.True(t, reg.got.Monto.Equal(decimal.NewFromInt(12)))

	reg.err = errors.New("no open session")
	assert.Error(t, w.Process(context.Background(), mustJSON(t, n)))
}

func TestRecordatorioDeudas_Run(t *testing.T) {
	vence := "2026-10-01"
	lister := fakePendientes{deudas: []dto.DeudaResponse{
		{ClienteRef: "Luis", Saldo: decimal.NewFromInt(20), Vencimiento: model.VencimientoVencida, FechaVencimiento: &vence},
		{ClienteRef: "Rosa", Saldo: decimal.NewFromInt(5), Vencimiento: model.VencimientoNormal},
		{ClienteRef: "Juan", Saldo: decimal.NewFromInt(7), Vencimiento: model.VencimientoPorVencer},
	}}
	enc := &fakeEncolador{}
	r := NewRecordatorioDeudas(lister, enc, "owner@cyberia.pe")

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, enc.jobs, 1)
	assert.Equal(t, "Deudas por cobrar (2)", enc.jobs[0].Subject)
	assert.Contains(t, enc.jobs[0].Body, "Luis")
	assert.Contains(t, enc.jobs[0].Body, "Juan")
	assert.NotContains(t, enc.jobs[0].Body, "Rosa")
}

func TestRecordatorioDeudas_NothingDue(t *testing.T) {
	enc := &fakeEncolador{}
	r := NewRecordatorioDeudas(fakePendientes{}, enc, "owner@cyberia.pe")
	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, enc.jobs)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler()
	err := s.AddJob(context.Background(), "not a cron", NewRecordatorioDeudas(fakePendientes{}, nil, ""))
	assert.Error(t, err)
}
