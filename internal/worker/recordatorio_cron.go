package worker

// recordatorio_cron.go
// Daily job that lists overdue and soon-due debts, logs them and mails the
// list to the owner through QueueEmail.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// PendientesLister returns the pending debts annotated with vencimiento.
type PendientesLister interface {
	Pendientes(ctx context.Context) ([]dto.DeudaResponse, error)
}

// EmailEncolador is the subset of *Dispatcher the reminder needs.
type EmailEncolador interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// RecordatorioDeudas is a scheduled job.
type RecordatorioDeudas struct {
	deudas       PendientesLister
	emails       EmailEncolador
	destinatario string
}

func NewRecordatorioDeudas(deudas PendientesLister, emails EmailEncolador, destinatario string) *RecordatorioDeudas {
	return &RecordatorioDeudas{deudas: deudas, emails: emails, destinatario: destinatario}
}

func (r *RecordatorioDeudas) Name() string { return "recordatorio_deudas" }

// Run collects vencida/por_vencer debts. Nothing is sent when there are none.
func (r *RecordatorioDeudas) Run(ctx context.Context) error {
	pendientes, err := r.deudas.Pendientes(ctx)
	if err != nil {
		return fmt.Errorf("recordatorio: %w", err)
	}

	var lineas []string
	for _, d := range pendientes {
		if d.Vencimiento != model.VencimientoVencida && d.Vencimiento != model.VencimientoPorVencer {
			continue
		}
		vence := "-"
		if d.FechaVencimiento != nil {
			vence = *d.FechaVencimiento
		}
		lineas = append(lineas, fmt.Sprintf("%-10s %-30s S/ %10s  vence %s",
			d.Vencimiento, d.ClienteRef, d.Saldo.StringFixed(2), vence))
	}
	if len(lineas) == 0 {
		log.Debug().Msg("recordatorio: no debts due")
		return nil
	}
	log.Info().Int("deudas", len(lineas)).Msg("recordatorio: debts due")

	if r.destinatario == "" || r.emails == nil {
		return nil
	}
	return r.emails.EnqueueEmail(ctx, EmailJobPayload{
		To:      []string{r.destinatario},
		Subject: fmt.Sprintf("Deudas por cobrar (%d)", len(lineas)),
		Body:    strings.Join(lineas, "\n") + "\n",
	})
}

// Scheduler runs cron jobs until Stop.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// CronJob is anything the scheduler can run.
type CronJob interface {
	Run(ctx context.Context) error
	Name() string
}

// AddJob registers job under a standard 5-field cron schedule.
func (s *Scheduler) AddJob(ctx context.Context, schedule string, job CronJob) error {
	_, err := s.cron.AddFunc(schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := job.Run(runCtx); err != nil {
			log.Error().Err(err).Str("job", job.Name()).Msg("cron: job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("cron: schedule %q: %w", schedule, err)
	}
	log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("cron: job registered")
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
