// Package worker executa a notificação de leads fora do ciclo da requisição HTTP.
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

// Notifier é o orquestrador visto pelo worker.
type Notifier interface {
	Execute(ctx context.Context, leadID string) (*usecase.NotifyLeadOutput, error)
}

// Dispatcher é um pool fixo alimentado por um canal com buffer. Com o buffer
// cheio o job roda numa goroutine própria; depois que o Serve começou a
// encerrar, roda direto em quem chamou. Nenhum lead fica sem notificação.
type Dispatcher struct {
	notifier Notifier
	workers  int
	jobs     chan string
	inflight sync.WaitGroup

	mu      sync.RWMutex
	closing bool
}

func NewDispatcher(notifier Notifier, workers, buffer int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 100
	}
	return &Dispatcher{
		notifier: notifier,
		workers:  workers,
		jobs:     make(chan string, buffer),
	}
}

// Dispatch implementa usecase.Dispatcher.
func (d *Dispatcher) Dispatch(_ context.Context, leadID string) error {
	d.mu.RLock()
	if d.closing {
		d.mu.RUnlock()
		log.Warn().Str("lead_id", leadID).Msg("⚠️ Dispatcher encerrando, notificando fora do pool")
		d.process(context.Background(), leadID)
		return nil
	}
	defer d.mu.RUnlock()

	select {
	case d.jobs <- leadID:
	default:
		log.Warn().Str("lead_id", leadID).Msg("⚠️ Fila do dispatcher cheia, rodando fora do pool")
		d.inflight.Add(1)
		go func() {
			defer d.inflight.Done()
			d.process(context.Background(), leadID)
		}()
	}
	return nil
}

// Serve roda os workers até o ctx ser cancelado e então drena o que já
// estava no buffer.
func (d *Dispatcher) Serve(ctx context.Context) error {
	d.setClosing(false)
	log.Info().Int("workers", d.workers).Msg("⚙️ Dispatcher de notificações iniciado")

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-d.jobs:
					d.process(ctx, id)
				}
			}
		}()
	}
	wg.Wait()

	// a partir daqui nada novo entra no buffer
	d.setClosing(true)
	d.drain()
	d.inflight.Wait()
	log.Info().Msg("⚠️ Dispatcher de notificações encerrado")
	return ctx.Err()
}

func (d *Dispatcher) String() string { return "notification-dispatcher" }

func (d *Dispatcher) setClosing(v bool) {
	d.mu.Lock()
	d.closing = v
	d.mu.Unlock()
}

func (d *Dispatcher) drain() {
	for {
		select {
		case id := <-d.jobs:
			d.process(context.Background(), id)
		default:
			return
		}
	}
}

// process nunca propaga o erro: o resultado de cada canal já fica no ledger.
func (d *Dispatcher) process(ctx context.Context, leadID string) {
	ctx = context.WithoutCancel(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("lead_id", leadID).Msg("🔥 Panic ao notificar lead")
		}
	}()

	if _, err := d.notifier.Execute(ctx, leadID); err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("❌ Falha ao notificar lead")
	}
}
