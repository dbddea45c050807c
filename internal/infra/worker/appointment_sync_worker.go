package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AppointmentSyncer é satisfeito por *usecase.SyncAppointmentsUseCase.
type AppointmentSyncer interface {
	Execute(ctx context.Context, clinicID string) (int, error)
}

// AppointmentSyncWorker copia os agendamentos do dia do Clinicorp para o funil.
type AppointmentSyncWorker struct {
	syncer       AppointmentSyncer
	clinicIDs    []string
	tickInterval time.Duration
	log          *zap.SugaredLogger
}

func NewAppointmentSyncWorker(syncer AppointmentSyncer, clinicIDs []string, log *zap.Logger) *AppointmentSyncWorker {
	return &AppointmentSyncWorker{
		syncer:       syncer,
		clinicIDs:    clinicIDs,
		tickInterval: 15 * time.Minute,
		log:          log.Sugar(),
	}
}

func (w *AppointmentSyncWorker) WithInterval(d time.Duration) *AppointmentSyncWorker {
	w.tickInterval = d
	return w
}

func (w *AppointmentSyncWorker) Start(ctx context.Context) {
	w.log.Infow("🕒 Appointment Sync Worker iniciado", "interval", w.tickInterval, "clinics", len(w.clinicIDs))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("⚠️ Appointment Sync Worker encerrado")
			return
		case <-ticker.C:
			w.sync(ctx)
		}
	}
}

func (w *AppointmentSyncWorker) sync(ctx context.Context) {
	for _, clinicID := range w.clinicIDs {
		if ctx.Err() != nil {
			return
		}
		n, err := w.syncer.Execute(ctx, clinicID)
		if err != nil {
			w.log.Errorw("❌ Erro ao sincronizar agenda", "clinic_id", clinicID, "error", err)
			continue
		}
		if n > 0 {
			w.log.Infow("✅ Agendamentos sincronizados", "clinic_id", clinicID, "count", n)
		}
	}
}
