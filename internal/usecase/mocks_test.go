package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/assistant"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/clinicorp"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/supabase"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
	"github.com/xavierca1/bemquerer-hub/internal/infra/queue"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

// MockDealRepository
type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) List(ctx context.Context, clinicID string) ([]entity.Deal, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Deal), args.Error(1)
}

func (m *MockDealRepository) UpdateStatus(ctx context.Context, id string, status entity.Status, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

func (m *MockDealRepository) UpsertScheduled(ctx context.Context, clinicID string, deal entity.Deal) error {
	return m.Called(ctx, clinicID, deal).Error(0)
}

// MockChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) ListContacts(ctx context.Context, clinicID string) ([]entity.ChatContact, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ChatContact), args.Error(1)
}

func (m *MockChatRepository) FindByID(ctx context.Context, id string) (*entity.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Chat), args.Error(1)
}

func (m *MockChatRepository) FindByNumber(ctx context.Context, clinicID, number string) (*entity.Chat, error) {
	args := m.Called(ctx, clinicID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Chat), args.Error(1)
}

func (m *MockChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	args := m.Called(ctx, chat)
	if args.Error(0) == nil && chat.ID == "" {
		chat.ID = "chat-new"
	}
	return args.Error(0)
}

func (m *MockChatRepository) Messages(ctx context.Context, chatID string, limit int) ([]entity.ChatMessage, error) {
	args := m.Called(ctx, chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) AppendMessage(ctx context.Context, chatID string, msg *entity.ChatMessage) error {
	return m.Called(ctx, chatID, msg).Error(0)
}

func (m *MockChatRepository) UpdateTriage(ctx context.Context, chatID, intent, urgency, status string) error {
	return m.Called(ctx, chatID, intent, urgency, status).Error(0)
}

// MockInviteRepository
type MockInviteRepository struct {
	mock.Mock
}

func (m *MockInviteRepository) GenerateToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockInviteRepository) GenerateCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockInviteRepository) Create(ctx context.Context, invite *entity.Invite) error {
	args := m.Called(ctx, invite)
	if args.Error(0) == nil && invite.ID == "" {
		invite.ID = "inv-1"
	}
	return args.Error(0)
}

func (m *MockInviteRepository) FindByID(ctx context.Context, id string) (*entity.Invite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invite), args.Error(1)
}

func (m *MockInviteRepository) ListByClinic(ctx context.Context, clinicID string) ([]entity.Invite, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Invite), args.Error(1)
}

func (m *MockInviteRepository) UpdateStatus(ctx context.Context, id string, status entity.InviteStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockInviteRepository) Validate(ctx context.Context, token, code, email string) (*entity.InviteValidation, error) {
	args := m.Called(ctx, token, code, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.InviteValidation), args.Error(1)
}

func (m *MockInviteRepository) MarkUsed(ctx context.Context, inviteID, userID string) (bool, error) {
	args := m.Called(ctx, inviteID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInviteRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockModuleRepository
type MockModuleRepository struct {
	mock.Mock
}

func (m *MockModuleRepository) List(ctx context.Context, clinicID string) ([]entity.ClinicModule, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ClinicModule), args.Error(1)
}

func (m *MockModuleRepository) ActiveNames(ctx context.Context, clinicID string) ([]entity.ModuleName, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ModuleName), args.Error(1)
}

func (m *MockModuleRepository) IsActive(ctx context.Context, clinicID string, module entity.ModuleName) (bool, error) {
	args := m.Called(ctx, clinicID, module)
	return args.Bool(0), args.Error(1)
}

func (m *MockModuleRepository) Toggle(ctx context.Context, clinicID string, module entity.ModuleName, active bool) (bool, error) {
	args := m.Called(ctx, clinicID, module, active)
	return args.Bool(0), args.Error(1)
}

func (m *MockModuleRepository) UpdateConfig(ctx context.Context, clinicID string, module entity.ModuleName, config map[string]any) (bool, error) {
	args := m.Called(ctx, clinicID, module, config)
	return args.Bool(0), args.Error(1)
}

func (m *MockModuleRepository) Config(ctx context.Context, clinicID string, module entity.ModuleName) (map[string]any, error) {
	args := m.Called(ctx, clinicID, module)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockModuleRepository) Initialize(ctx context.Context, clinicID string) error {
	return m.Called(ctx, clinicID).Error(0)
}

// MockProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

// MockMetricsRepository
type MockMetricsRepository struct {
	mock.Mock
}

func (m *MockMetricsRepository) CreatedBetween(ctx context.Context, clinicID string, r entity.DateRange) ([]entity.DealCount, error) {
	args := m.Called(ctx, clinicID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DealCount), args.Error(1)
}

func (m *MockMetricsRepository) UpdatedBetween(ctx context.Context, clinicID string, r entity.DateRange, statuses ...entity.Status) ([]entity.DealCount, error) {
	args := m.Called(ctx, clinicID, r, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DealCount), args.Error(1)
}

// MockAIProvider
type MockAIProvider struct {
	mock.Mock
}

func (m *MockAIProvider) Name() string { return "mock" }

func (m *MockAIProvider) Reply(ctx context.Context, history []assistant.Turn, message, patientName string) (string, error) {
	args := m.Called(ctx, history, message, patientName)
	return args.String(0), args.Error(1)
}

func (m *MockAIProvider) Analyze(ctx context.Context, history []assistant.Turn, message, patientName string) (*assistant.Analysis, error) {
	args := m.Called(ctx, history, message, patientName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistant.Analysis), args.Error(1)
}

// MockWhatsAppGateway
type MockWhatsAppGateway struct {
	mock.Mock
}

func (m *MockWhatsAppGateway) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockWhatsAppGateway) Connect(ctx context.Context) (*uazapi.ConnectResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uazapi.ConnectResponse), args.Error(1)
}

func (m *MockWhatsAppGateway) Status(ctx context.Context) (*uazapi.StatusResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uazapi.StatusResponse), args.Error(1)
}

func (m *MockWhatsAppGateway) Disconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockWhatsAppGateway) SendText(ctx context.Context, input uazapi.SendTextInput) (*uazapi.SendResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uazapi.SendResponse), args.Error(1)
}

func (m *MockWhatsAppGateway) ConfigureWebhook(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

// MockClinicorp
type MockClinicorp struct {
	mock.Mock
	mockMode bool
}

func (m *MockClinicorp) IsMock() bool { return m.mockMode }

func (m *MockClinicorp) GetAppointments(ctx context.Context, date string) ([]clinicorp.Appointment, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clinicorp.Appointment), args.Error(1)
}

func (m *MockClinicorp) CheckAvailability(ctx context.Context, date, professionalID string) ([]clinicorp.Slot, error) {
	args := m.Called(ctx, date, professionalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clinicorp.Slot), args.Error(1)
}

func (m *MockClinicorp) GetProfessionals(ctx context.Context) ([]clinicorp.Professional, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clinicorp.Professional), args.Error(1)
}

func (m *MockClinicorp) CreatePatient(ctx context.Context, in clinicorp.PatientInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockClinicorp) CreateAppointment(ctx context.Context, in clinicorp.AppointmentInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

// staticResolver devolve sempre o mesmo gateway (ou erro).
type staticResolver struct {
	gw  usecase.ClinicorpGateway
	err error
}

func (r staticResolver) For(context.Context, string) (usecase.ClinicorpGateway, error) {
	return r.gw, r.err
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendInvite(to, role, link string, expiresAt time.Time) error {
	return m.Called(to, role, link, expiresAt).Error(0)
}

// MockAuthenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) SignIn(ctx context.Context, email, password string) (*supabase.SignInResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supabase.SignInResult), args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishInbound(ctx context.Context, payload queue.InboundMessagePayload) error {
	return m.Called(ctx, payload).Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// MockKnowledgeRepository
type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) CreateDocument(ctx context.Context, doc *entity.KnowledgeDocument) error {
	args := m.Called(ctx, doc)
	if args.Error(0) == nil && doc.ID == "" {
		doc.ID = "doc-1"
	}
	return args.Error(0)
}

func (m *MockKnowledgeRepository) SaveChunks(ctx context.Context, documentID string, chunks []entity.KnowledgeChunk) error {
	return m.Called(ctx, documentID, chunks).Error(0)
}

func (m *MockKnowledgeRepository) ListActive(ctx context.Context, clinicID string) ([]entity.KnowledgeDocument, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.KnowledgeDocument), args.Error(1)
}

func (m *MockKnowledgeRepository) Deactivate(ctx context.Context, clinicID, documentID string) error {
	return m.Called(ctx, clinicID, documentID).Error(0)
}

func (m *MockKnowledgeRepository) ActiveChunks(ctx context.Context, clinicID string) ([]entity.KnowledgeChunk, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.KnowledgeChunk), args.Error(1)
}

// MockEmbedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockThreadRepository
type MockThreadRepository struct {
	mock.Mock
}

func (m *MockThreadRepository) Create(ctx context.Context, t *entity.Thread) error {
	args := m.Called(ctx, t)
	if args.Error(0) == nil && t.ID == "" {
		t.ID = "thread-new"
	}
	return args.Error(0)
}

func (m *MockThreadRepository) FindByID(ctx context.Context, id string) (*entity.Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Thread), args.Error(1)
}

func (m *MockThreadRepository) ListByClinic(ctx context.Context, clinicID string, limit int) ([]entity.Thread, error) {
	args := m.Called(ctx, clinicID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Thread), args.Error(1)
}

func (m *MockThreadRepository) History(ctx context.Context, threadID string, limit int) ([]entity.ThreadMessage, error) {
	args := m.Called(ctx, threadID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ThreadMessage), args.Error(1)
}

func (m *MockThreadRepository) AppendMessage(ctx context.Context, msg *entity.ThreadMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockThreadRepository) Archive(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// stubKnowledge devolve um contexto fixo e guarda a pergunta recebida.
type stubKnowledge struct {
	text  string
	query string
}

func (s *stubKnowledge) Context(_ context.Context, _, query string) string {
	s.query = query
	return s.text
}
