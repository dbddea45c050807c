package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// InviteExpirer é satisfeito por *usecase.InviteUseCase.
type InviteExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// InviteExpirationWorker marca como expirado todo convite pendente vencido.
type InviteExpirationWorker struct {
	invites      InviteExpirer
	tickInterval time.Duration
	log          *zap.SugaredLogger
}

func NewInviteExpirationWorker(invites InviteExpirer, log *zap.Logger) *InviteExpirationWorker {
	return &InviteExpirationWorker{
		invites:      invites,
		tickInterval: 1 * time.Minute,
		log:          log.Sugar(),
	}
}

func (w *InviteExpirationWorker) WithInterval(d time.Duration) *InviteExpirationWorker {
	w.tickInterval = d
	return w
}

// Start bloqueia até o ctx ser cancelado.
func (w *InviteExpirationWorker) Start(ctx context.Context) {
	w.log.Infow("🕒 Invite Expiration Worker iniciado", "interval", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.expire(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("⚠️ Invite Expiration Worker encerrado")
			return
		case <-ticker.C:
			w.expire(ctx)
		}
	}
}

func (w *InviteExpirationWorker) expire(ctx context.Context) {
	n, err := w.invites.ExpireOverdue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Errorw("❌ Erro ao expirar convites", "error", err)
		}
		return
	}
	if n > 0 {
		w.log.Infow("✅ Convites marcados como expirados", "count", n)
	}
}
