package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/clinicorp"
)

var ErrClinicorpNotConfigured = errors.New("clinicorp não configurado")

type ClinicorpFactory func(creds clinicorp.Credentials) ClinicorpGateway

// ClinicorpProvider monta o cliente a partir da configuração do módulo,
// caindo para as credenciais do ambiente quando a clínica não configurou nada.
type ClinicorpProvider struct {
	Modules  entity.ModuleRepositoryInterface
	Factory  ClinicorpFactory
	Fallback clinicorp.Credentials
}

func NewClinicorpProvider(modules entity.ModuleRepositoryInterface, factory ClinicorpFactory, fallback clinicorp.Credentials) *ClinicorpProvider {
	return &ClinicorpProvider{Modules: modules, Factory: factory, Fallback: fallback}
}

func (p *ClinicorpProvider) For(ctx context.Context, clinicID string) (ClinicorpGateway, error) {
	cfg, err := p.Modules.Config(ctx, clinicID, entity.ModuleClinicorp)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler configuração do clinicorp: %w", err)
	}

	creds := credentialsFromConfig(cfg)
	if creds.ClientID == "" {
		creds = p.Fallback
	}
	if creds.ClientID == "" {
		return nil, ErrClinicorpNotConfigured
	}
	return p.Factory(creds), nil
}

func credentialsFromConfig(cfg map[string]any) clinicorp.Credentials {
	str := func(k string) string {
		v, _ := cfg[k].(string)
		return v
	}
	creds := clinicorp.Credentials{
		ClientID:     str("client_id"),
		ClientSecret: str("client_secret"),
		AccessToken:  str("access_token"),
		RefreshToken: str("refresh_token"),
	}
	if exp := str("expires_at"); exp != "" {
		if t, err := time.Parse(time.RFC3339, exp); err == nil {
			creds.ExpiresAt = t
		}
	}
	return creds
}

type ConfigureClinicorpInput struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type IntegrationStatusOutput struct {
	Status      string `json:"status"`
	Integration string `json:"integration"`
	Message     string `json:"message"`
	Mock        bool   `json:"mock,omitempty"`
}

type ConfigureClinicorpUseCase struct {
	Modules entity.ModuleRepositoryInterface
	Factory ClinicorpFactory
	log     *zap.SugaredLogger
}

func NewConfigureClinicorpUseCase(modules entity.ModuleRepositoryInterface, factory ClinicorpFactory, log *zap.Logger) *ConfigureClinicorpUseCase {
	return &ConfigureClinicorpUseCase{Modules: modules, Factory: factory, log: log.Sugar()}
}

func (uc *ConfigureClinicorpUseCase) Execute(ctx context.Context, clinicID string, input ConfigureClinicorpInput) (*IntegrationStatusOutput, error) {
	var errs []ValidationError
	errs = append(errs, required("client_id", input.ClientID)...)
	errs = append(errs, required("client_secret", input.ClientSecret)...)
	if err := joinValidation(errs); err != nil {
		return nil, err
	}

	creds := clinicorp.Credentials{
		ClientID:     strings.TrimSpace(input.ClientID),
		ClientSecret: strings.TrimSpace(input.ClientSecret),
	}
	gw := uc.Factory(creds)

	// 1. Testar as credenciais com uma chamada leve
	if _, err := gw.GetProfessionals(ctx); err != nil && !gw.IsMock() {
		uc.log.Warnw("⚠️ Clinicorp recusou as credenciais", "clinic_id", clinicID, "error", err)
		return nil, &DomainError{Code: CodeInvalidCredentials, Message: "Falha na autenticação com Clinicorp: " + err.Error()}
	}

	// 2. Persistir e ativar o módulo
	cfg := map[string]any{
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
	}
	if c, ok := gw.(interface{ Credentials() clinicorp.Credentials }); ok {
		if got := c.Credentials(); got.AccessToken != "" {
			cfg["access_token"] = got.AccessToken
			cfg["refresh_token"] = got.RefreshToken
			cfg["expires_at"] = got.ExpiresAt.Format(time.RFC3339)
		}
	}

	if _, err := uc.Modules.UpdateConfig(ctx, clinicID, entity.ModuleClinicorp, cfg); err != nil {
		return nil, databaseError("erro ao salvar configuração do clinicorp", err)
	}
	if _, err := uc.Modules.Toggle(ctx, clinicID, entity.ModuleClinicorp, true); err != nil {
		return nil, databaseError("erro ao ativar módulo clinicorp", err)
	}

	uc.log.Infow("✅ Clinicorp configurado", "clinic_id", clinicID, "mock", gw.IsMock())
	return &IntegrationStatusOutput{
		Status:      "connected",
		Integration: "clinicorp",
		Message:     "Conexão com Clinicorp estabelecida com sucesso!",
		Mock:        gw.IsMock(),
	}, nil
}

type AvailabilityInput struct {
	Date           string `json:"date"`
	ProfessionalID string `json:"professional_id,omitempty"`
}

type AvailabilityOutput struct {
	Slots []clinicorp.Slot `json:"available_slots"`
}

type ScheduleAppointmentInput struct {
	PatientName    string `json:"patient_name"`
	Phone          string `json:"phone"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	ProfessionalID string `json:"professional_id"`
	Notes          string `json:"notes,omitempty"`
}

type ScheduleAppointmentOutput struct {
	Status        string `json:"status"`
	AppointmentID string `json:"appointment_id"`
	Message       string `json:"message"`
}

// ClinicorpScheduleUseCase expõe agenda e marcação do Clinicorp para o front e para a IA.
type ClinicorpScheduleUseCase struct {
	Clinicorp ClinicorpResolver
	log       *zap.SugaredLogger
}

func NewClinicorpScheduleUseCase(resolver ClinicorpResolver, log *zap.Logger) *ClinicorpScheduleUseCase {
	return &ClinicorpScheduleUseCase{Clinicorp: resolver, log: log.Sugar()}
}

func (uc *ClinicorpScheduleUseCase) gateway(ctx context.Context, clinicID string) (ClinicorpGateway, error) {
	gw, err := uc.Clinicorp.For(ctx, clinicID)
	if errors.Is(err, ErrClinicorpNotConfigured) {
		return nil, &DomainError{Code: CodeNotConfigured, Message: "Clinicorp não configurado para esta clínica"}
	}
	if err != nil {
		return nil, databaseError("erro ao carregar integração clinicorp", err)
	}
	return gw, nil
}

func (uc *ClinicorpScheduleUseCase) Availability(ctx context.Context, clinicID string, input AvailabilityInput) (*AvailabilityOutput, error) {
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return nil, validationError("date: must be YYYY-MM-DD")
	}
	gw, err := uc.gateway(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	slots, err := gw.CheckAvailability(ctx, input.Date, input.ProfessionalID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "erro ao consultar disponibilidade", Err: err}
	}
	if slots == nil {
		slots = []clinicorp.Slot{}
	}
	return &AvailabilityOutput{Slots: slots}, nil
}

func (uc *ClinicorpScheduleUseCase) Schedule(ctx context.Context, clinicID string, input ScheduleAppointmentInput) (*ScheduleAppointmentOutput, error) {
	var errs []ValidationError
	errs = append(errs, required("patient_name", input.PatientName)...)
	errs = append(errs, required("phone", input.Phone)...)
	errs = append(errs, required("date", input.Date)...)
	errs = append(errs, required("time", input.Time)...)
	errs = append(errs, required("professional_id", input.ProfessionalID)...)
	if err := joinValidation(errs); err != nil {
		return nil, err
	}

	gw, err := uc.gateway(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	// 1. Paciente
	patientID, err := gw.CreatePatient(ctx, clinicorp.PatientInput{Name: input.PatientName, Phone: input.Phone})
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "erro ao cadastrar paciente no clinicorp", Err: err}
	}

	// 2. Agendamento
	apptID, err := gw.CreateAppointment(ctx, clinicorp.AppointmentInput{
		PatientID:      patientID,
		Date:           input.Date,
		Time:           input.Time,
		ProfessionalID: input.ProfessionalID,
		Notes:          input.Notes,
	})
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "erro ao criar agendamento no clinicorp", Err: err}
	}

	uc.log.Infow("📅 Agendamento criado no Clinicorp", "clinic_id", clinicID, "appointment_id", apptID)
	return &ScheduleAppointmentOutput{
		Status:        "success",
		AppointmentID: apptID,
		Message:       "Agendamento realizado com sucesso no Clinicorp",
	}, nil
}
