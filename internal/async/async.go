// Package async reúne as primitivas de espera do cliente: corrida contra um
// prazo e tarefa periódica cancelável.
package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrDeadline é devolvido por FirstSettled quando o prazo vence antes de fn.
var ErrDeadline = errors.New("async: prazo esgotado")

// FirstSettled roda fn e devolve o que terminar primeiro: o resultado de fn ou
// ErrDeadline depois de bound. O perdedor é cancelado e seu resultado descartado.
func FirstSettled[T any](ctx context.Context, bound time.Duration, fn func(context.Context) (T, error)) (T, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(runCtx)
		done <- result{v, err}
	}()

	timer := time.NewTimer(bound)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.v, r.err
	case <-timer.C:
		return zero, ErrDeadline
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Poller é uma tarefa periódica. Há no máximo um laço por Poller.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start chama fn a cada interval até fn devolver false, ctx ser cancelado ou Stop.
// A primeira chamada acontece depois do primeiro intervalo.
func Start(ctx context.Context, interval time.Duration, fn func(context.Context) bool) *Poller {
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		defer cancel()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !fn(ctx) {
					return
				}
			}
		}
	}()
	return p
}

// Stop cancela o laço e espera ele sair. Pode ser chamado mais de uma vez,
// mas não de dentro de fn.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	p.once.Do(p.cancel)
	<-p.done
}

// Done fecha quando o laço termina.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
