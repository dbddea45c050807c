package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/clinicorp"
)

// ExternalIDPrefix marca deals que vieram de agendamentos do Clinicorp.
const ExternalIDPrefix = "clinicorp:"

type ListDealsUseCase struct {
	Deals     entity.DealRepositoryInterface
	Clinicorp ClinicorpResolver
	Now       func() time.Time
	log       *zap.SugaredLogger
}

func NewListDealsUseCase(deals entity.DealRepositoryInterface, resolver ClinicorpResolver, log *zap.Logger) *ListDealsUseCase {
	return &ListDealsUseCase{Deals: deals, Clinicorp: resolver, Now: time.Now, log: log.Sugar()}
}

// Execute junta as conversas locais com os agendamentos de hoje do Clinicorp.
// Falha em uma das fontes é logada e a outra ainda é devolvida.
func (uc *ListDealsUseCase) Execute(ctx context.Context, clinicID string) ([]entity.Deal, error) {
	var (
		local, remote       []entity.Deal
		localErr, remoteErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		local, localErr = uc.Deals.List(gctx, clinicID)
		if localErr != nil {
			uc.log.Errorw("❌ Erro ao buscar deals locais", "clinic_id", clinicID, "error", localErr)
		}
		return nil
	})
	g.Go(func() error {
		remote, remoteErr = uc.appointments(gctx, clinicID)
		if remoteErr != nil && !errors.Is(remoteErr, ErrClinicorpNotConfigured) {
			uc.log.Warnw("⚠️ Erro ao buscar agendamentos do Clinicorp", "clinic_id", clinicID, "error", remoteErr)
		}
		return nil
	})
	g.Wait()

	if localErr != nil && remoteErr != nil {
		return nil, databaseError("erro ao carregar deals", localErr)
	}

	seen := make(map[string]bool, len(local))
	deals := make([]entity.Deal, 0, len(local)+len(remote))
	for _, d := range local {
		if d.ExternalID != "" {
			seen[d.ExternalID] = true
		}
		deals = append(deals, d)
	}
	for _, d := range remote {
		if seen[d.ExternalID] {
			continue
		}
		deals = append(deals, d)
	}
	return deals, nil
}

func (uc *ListDealsUseCase) appointments(ctx context.Context, clinicID string) ([]entity.Deal, error) {
	if uc.Clinicorp == nil {
		return nil, ErrClinicorpNotConfigured
	}
	gw, err := uc.Clinicorp.For(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	now := uc.Now()
	appts, err := gw.GetAppointments(ctx, now.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	out := make([]entity.Deal, 0, len(appts))
	for _, a := range appts {
		out = append(out, DealFromAppointment(a, now))
	}
	return out, nil
}

// DealFromAppointment converte um agendamento em card da coluna "Agendados".
func DealFromAppointment(a clinicorp.Appointment, now time.Time) entity.Deal {
	id := a.ID.String()
	if id == "" {
		id = "appt_unknown"
	}
	lastContact := now
	if a.Date != "" {
		layout, value := "2006-01-02", a.Date
		if a.Time != "" {
			layout, value = "2006-01-02 15:04", a.Date+" "+a.Time
		}
		if t, err := time.ParseInLocation(layout, value, now.Location()); err == nil {
			lastContact = t
		}
	}
	return entity.Deal{
		ID:            id,
		PatientName:   a.Name(),
		Phone:         a.Patient.Phone,
		Status:        entity.StatusScheduled,
		Source:        entity.SourceIndication,
		LastContact:   lastContact,
		Probability:   entity.ProbabilityHigh,
		TreatmentType: "Consulta",
		ExternalID:    ExternalIDPrefix + id,
	}
}

type UpdateDealStatusInput struct {
	Status string `json:"status"`
}

type UpdateDealStatusOutput struct {
	Status    string        `json:"status"`
	NewStatus entity.Status `json:"new_status"`
	Message   string        `json:"message"`
}

type UpdateDealStatusUseCase struct {
	Deals entity.DealRepositoryInterface
	Now   func() time.Time
	log   *zap.SugaredLogger
}

func NewUpdateDealStatusUseCase(deals entity.DealRepositoryInterface, log *zap.Logger) *UpdateDealStatusUseCase {
	return &UpdateDealStatusUseCase{Deals: deals, Now: time.Now, log: log.Sugar()}
}

func (uc *UpdateDealStatusUseCase) Execute(ctx context.Context, dealID string, input UpdateDealStatusInput) (*UpdateDealStatusOutput, error) {
	status, err := entity.ParseStatus(input.Status)
	if err != nil {
		return nil, &DomainError{Code: CodeInvalidStatus, Message: "status inválido: " + input.Status}
	}

	// Só deals locais (UUID) são gravados. IDs do Clinicorp são apenas confirmados.
	if _, parseErr := uuid.Parse(dealID); parseErr == nil {
		err := uc.Deals.UpdateStatus(ctx, dealID, status, uc.Now())
		if errors.Is(err, entity.ErrDealNotFound) {
			return nil, &DomainError{Code: CodeDealNotFound, Message: "deal não encontrado"}
		}
		if err != nil {
			return nil, databaseError("erro ao atualizar status do deal", err)
		}
		uc.log.Infow("🔄 Status do deal atualizado", "deal_id", dealID, "status", status)
	} else {
		uc.log.Debugw("Deal externo, status apenas confirmado", "deal_id", dealID, "status", status)
	}

	return &UpdateDealStatusOutput{
		Status:    "success",
		NewStatus: status,
		Message:   "Status atualizado com sucesso",
	}, nil
}

// SyncAppointmentsUseCase grava os agendamentos do dia como deals locais.
type SyncAppointmentsUseCase struct {
	Deals     entity.DealRepositoryInterface
	Clinicorp ClinicorpResolver
	Now       func() time.Time
	log       *zap.SugaredLogger
}

func NewSyncAppointmentsUseCase(deals entity.DealRepositoryInterface, resolver ClinicorpResolver, log *zap.Logger) *SyncAppointmentsUseCase {
	return &SyncAppointmentsUseCase{Deals: deals, Clinicorp: resolver, Now: time.Now, log: log.Sugar()}
}

func (uc *SyncAppointmentsUseCase) Execute(ctx context.Context, clinicID string) (int, error) {
	gw, err := uc.Clinicorp.For(ctx, clinicID)
	if errors.Is(err, ErrClinicorpNotConfigured) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	now := uc.Now()
	appts, err := gw.GetAppointments(ctx, now.Format("2006-01-02"))
	if err != nil {
		return 0, &TechnicalError{Code: CodeIntegration, Message: "erro ao buscar agendamentos do clinicorp", Err: err}
	}

	synced := 0
	for _, a := range appts {
		if err := uc.Deals.UpsertScheduled(ctx, clinicID, DealFromAppointment(a, now)); err != nil {
			uc.log.Errorw("❌ Erro ao sincronizar agendamento", "appointment_id", a.ID.String(), "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}
