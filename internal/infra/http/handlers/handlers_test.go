package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/http/handlers"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
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

// stubGateway responde Status com o erro configurado.
type stubGateway struct {
	statusErr error
}

func (g stubGateway) Configured() bool { return true }
func (g stubGateway) Connect(context.Context) (*uazapi.ConnectResponse, error) {
	return &uazapi.ConnectResponse{Connected: true, JID: "5511999999999@s.whatsapp.net"}, nil
}
func (g stubGateway) Status(context.Context) (*uazapi.StatusResponse, error) {
	return nil, g.statusErr
}
func (g stubGateway) Disconnect(context.Context) error { return nil }
func (g stubGateway) SendText(context.Context, uazapi.SendTextInput) (*uazapi.SendResponse, error) {
	return &uazapi.SendResponse{}, nil
}
func (g stubGateway) ConfigureWebhook(context.Context, string) error { return nil }

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ============ CRM ============

// TestUpdateDealStatusHandlerSuccess - PUT /crm/deals/{id}/status
func TestUpdateDealStatusHandlerSuccess(t *testing.T) {
	repo := new(MockDealRepository)
	id := "3f1c2a8e-4b5d-4e6f-9a7b-1c2d3e4f5a6b"
	repo.On("UpdateStatus", mock.Anything, id, entity.StatusScheduled, mock.Anything).Return(nil)

	h := handlers.NewCRMHandler(nil, usecase.NewUpdateDealStatusUseCase(repo, zap.NewNop()), "c1")
	req := httptest.NewRequest(http.MethodPut, "/crm/deals/"+id+"/status", bytes.NewBufferString(`{"status":"scheduled"}`))
	rec := httptest.NewRecorder()

	h.UpdateStatus(rec, withURLParam(req, "id", id))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "scheduled", body["new_status"])
}

func TestUpdateDealStatusHandlerErrors(t *testing.T) {
	repo := new(MockDealRepository)
	id := "3f1c2a8e-4b5d-4e6f-9a7b-1c2d3e4f5a6b"
	repo.On("UpdateStatus", mock.Anything, id, entity.StatusWon, mock.Anything).Return(entity.ErrDealNotFound)
	h := handlers.NewCRMHandler(nil, usecase.NewUpdateDealStatusUseCase(repo, zap.NewNop()), "c1")

	cases := []struct {
		body string
		want int
	}{
		{`{"status":"archived"}`, http.StatusBadRequest},
		{`{"status":"won"}`, http.StatusNotFound},
		{`not json`, http.StatusBadRequest},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(c.body))
		rec := httptest.NewRecorder()
		h.UpdateStatus(rec, withURLParam(req, "id", id))
		assert.Equal(t, c.want, rec.Code, c.body)
	}
}

func TestListDealsHandlerWithoutClinicorp(t *testing.T) {
	repo := new(MockDealRepository)
	repo.On("List", mock.Anything, "c1").Return([]entity.Deal{{ID: "d1", PatientName: "Maria", Status: entity.StatusNew}}, nil)

	h := handlers.NewCRMHandler(usecase.NewListDealsUseCase(repo, nil, zap.NewNop()), nil, "c1")
	rec := httptest.NewRecorder()
	h.ListDeals(rec, httptest.NewRequest(http.MethodGet, "/crm/deals", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var deals []entity.Deal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deals))
	require.Len(t, deals, 1)
	assert.Equal(t, "Maria", deals[0].PatientName)
}

// ============ WHATSAPP ============

// TestWhatsAppStatusUnauthorizedKeepsBody - o 401 ainda carrega o campo error
func TestWhatsAppStatusUnauthorizedKeepsBody(t *testing.T) {
	gw := stubGateway{statusErr: &uazapi.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}}
	h := handlers.NewIntegrationHandler(usecase.NewWhatsAppUseCase(gw, "bemquerer", "", zap.NewNop()), nil, nil, "c1")

	rec := httptest.NewRecorder()
	h.WhatsAppStatus(rec, httptest.NewRequest(http.MethodGet, "/integrations/whatsapp/status", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decodeBody(t, rec)["error"])
}

func TestWhatsAppStatusUnavailable(t *testing.T) {
	gw := stubGateway{statusErr: &uazapi.APIError{StatusCode: http.StatusServiceUnavailable}}
	h := handlers.NewIntegrationHandler(usecase.NewWhatsAppUseCase(gw, "bemquerer", "", zap.NewNop()), nil, nil, "c1")

	rec := httptest.NewRecorder()
	h.WhatsAppStatus(rec, httptest.NewRequest(http.MethodGet, "/integrations/whatsapp/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "gateway_unavailable", decodeBody(t, rec)["code"])
}

func TestConnectWhatsAppAlreadyConnected(t *testing.T) {
	h := handlers.NewIntegrationHandler(usecase.NewWhatsAppUseCase(stubGateway{}, "bemquerer", "", zap.NewNop()), nil, nil, "c1")

	rec := httptest.NewRecorder()
	h.ConnectWhatsApp(rec, httptest.NewRequest(http.MethodPost, "/integrations/whatsapp/connect", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody(t, rec)["status"].(map[string]any)
	assert.Equal(t, true, status["connected"])
}

// ============ WEBHOOK ============

func TestWebhookIgnoresOwnMessages(t *testing.T) {
	uc := usecase.NewReceiveWebhookUseCase(nil, nil, "c1", zap.NewNop())
	h := handlers.NewWebhookHandler(uc, zap.NewNop())

	body := `{"EventType":"messages","message":{"chatid":"5511999999999@s.whatsapp.net","text":"oi","fromMe":true}}`
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ignored", decodeBody(t, rec)["status"])
}

// ============ HEALTH / RATE LIMIT ============

type brokerStub bool

func (b brokerStub) IsHealthy() bool { return bool(b) }

func TestHealthDegradedWhenBrokerDown(t *testing.T) {
	h := handlers.NewHealthHandler(nil, brokerStub(false), "Bem-Querer Hub", map[string]bool{"uazapi": true})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "degraded", body["status"])
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "configured", deps["uazapi"])
	assert.Equal(t, "not configured", deps["database"])
}

func TestHealthOK(t *testing.T) {
	h := handlers.NewHealthHandler(nil, brokerStub(true), "Bem-Querer Hub", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := handlers.NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}
