package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/assistant"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/clinicorp"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/supabase"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
	"github.com/xavierca1/bemquerer-hub/internal/infra/queue"
)

// AIProvider é o LLM ativo (Gemini ou ChatGPT).
type AIProvider interface {
	Name() string
	Reply(ctx context.Context, history []assistant.Turn, message, patientName string) (string, error)
	Analyze(ctx context.Context, history []assistant.Turn, message, patientName string) (*assistant.Analysis, error)
}

// Embedder gera um vetor por texto, na ordem recebida.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type WhatsAppGateway interface {
	Configured() bool
	Connect(ctx context.Context) (*uazapi.ConnectResponse, error)
	Status(ctx context.Context) (*uazapi.StatusResponse, error)
	Disconnect(ctx context.Context) error
	SendText(ctx context.Context, input uazapi.SendTextInput) (*uazapi.SendResponse, error)
	ConfigureWebhook(ctx context.Context, url string) error
}

type ClinicorpGateway interface {
	IsMock() bool
	GetAppointments(ctx context.Context, date string) ([]clinicorp.Appointment, error)
	CheckAvailability(ctx context.Context, date, professionalID string) ([]clinicorp.Slot, error)
	GetProfessionals(ctx context.Context) ([]clinicorp.Professional, error)
	CreatePatient(ctx context.Context, in clinicorp.PatientInput) (string, error)
	CreateAppointment(ctx context.Context, in clinicorp.AppointmentInput) (string, error)
}

// ClinicorpResolver devolve o cliente Clinicorp configurado para a clínica.
type ClinicorpResolver interface {
	For(ctx context.Context, clinicID string) (ClinicorpGateway, error)
}

type InviteMailer interface {
	SendInvite(to, role, link string, expiresAt time.Time) error
}

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*supabase.SignInResult, error)
}

type InboundPublisher interface {
	PublishInbound(ctx context.Context, payload queue.InboundMessagePayload) error
}
