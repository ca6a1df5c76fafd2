package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueCierre      = "jobs:cierre"
	QueuePagoDigital = "jobs:pago_digital"
	QueueEmail       = "jobs:email"
)

// MaxJobAttempts is how many times a job runs before it goes to the DLQ.
const MaxJobAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes the payload of one job type. A returned error makes the
// pool retry the job until MaxJobAttempts, then dead-letter it.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueCierre pushes a close-out report job.
func (d *Dispatcher) EnqueueCierre(ctx context.Context, payload CierreJobPayload) error {
	return d.enqueue(ctx, QueueCierre, Job{Type: "cierre"}, payload)
}

// EnqueuePagoDigital pushes a wallet notification to be journaled.
func (d *Dispatcher) EnqueuePagoDigital(ctx context.Context, payload PagoDigitalJobPayload) error {
	return d.enqueue(ctx, QueuePagoDigital, Job{Type: "pago_digital"}, payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, Job{Type: "email"}, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue string, job Job, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job.Payload = data
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes every registered queue with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler // queue → handler
	metrics  *metrics.Metrics
}

func NewPool(rdb *redis.Client, m *metrics.Metrics) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]Handler), metrics: m}
}

// Register binds a handler to a queue. Call before Start.
func (p *Pool) Register(queue string, h Handler) {
	p.handlers[queue] = h
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle
// workers cost no CPU. They stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i, queues)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
}

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, Job{Type: "desconocido", Payload: json.RawMessage(`null`)}, "unmarshal: "+err.Error())
		p.metrics.Job(queue, "dlq")
		return
	}

	h, ok := p.handlers[queue]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job, "no handler registered")
		p.metrics.Job(queue, "dlq")
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	switch siguientePaso(job, err) {
	case pasoListo:
		p.metrics.Job(queue, "ok")
	case pasoReintentar:
		log.Warn().Err(err).Str("queue", queue).Int("attempt", job.Attempts).Msg("job failed, requeueing")
		encoded, mErr := json.Marshal(job)
		if mErr == nil {
			mErr = p.rdb.LPush(ctx, queue, encoded).Err()
		}
		if mErr != nil {
			SendToDLQ(ctx, p.rdb, queue, job, "requeue: "+mErr.Error())
			p.metrics.Job(queue, "dlq")
			return
		}
		p.metrics.Job(queue, "retry")
	case pasoDLQ:
		SendToDLQ(ctx, p.rdb, queue, job, err.Error())
		p.metrics.Job(queue, "dlq")
	}
}

type paso int

const (
	pasoListo paso = iota
	pasoReintentar
	pasoDLQ
)

// siguientePaso decides what happens to a job after an attempt.
func siguientePaso(job Job, err error) paso {
	switch {
	case err == nil:
		return pasoListo
	case job.Attempts < MaxJobAttempts:
		return pasoReintentar
	default:
		return pasoDLQ
	}
}
