package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/clinicorp"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

// ============ WHATSAPP ============

func TestConnectWhatsAppReturnsQRCodeDataURI(t *testing.T) {
	gw := new(MockWhatsAppGateway)
	gw.On("Configured").Return(true)
	gw.On("Connect", mock.Anything).Return(&uazapi.ConnectResponse{Instance: uazapi.Instance{Name: "bemquerer", QRCode: "2@abc123,xyz"}}, nil)
	gw.On("ConfigureWebhook", mock.Anything, "https://hub.example.com/webhooks/whatsapp").Return(nil)

	uc := usecase.NewWhatsAppUseCase(gw, "bemquerer", "https://hub.example.com/webhooks/whatsapp", zap.NewNop())
	out, err := uc.Connect(context.Background())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.QRCode, "data:image/png;base64,"))
	assert.Equal(t, "2@abc123,xyz", out.QRText)
	assert.Nil(t, out.Status)
	gw.AssertExpectations(t)
}

func TestConnectWhatsAppAlreadyConnected(t *testing.T) {
	gw := new(MockWhatsAppGateway)
	gw.On("Configured").Return(true)
	gw.On("Connect", mock.Anything).Return(&uazapi.ConnectResponse{Connected: true, JID: "5511999999999:1@s.whatsapp.net"}, nil)

	out, err := usecase.NewWhatsAppUseCase(gw, "", "", zap.NewNop()).Connect(context.Background())

	require.NoError(t, err)
	require.NotNil(t, out.Status)
	assert.True(t, out.Status.Connected)
	assert.Empty(t, out.QRCode)
	gw.AssertNotCalled(t, "ConfigureWebhook", mock.Anything, mock.Anything)
}

// TestConnectWhatsAppGatewayUnavailable - 503 do gateway vira erro próprio
func TestConnectWhatsAppGatewayUnavailable(t *testing.T) {
	gw := new(MockWhatsAppGateway)
	gw.On("Configured").Return(true)
	gw.On("Connect", mock.Anything).Return(nil, &uazapi.APIError{StatusCode: 503, Message: "busy"})

	_, err := usecase.NewWhatsAppUseCase(gw, "", "", zap.NewNop()).Connect(context.Background())

	var te *usecase.TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, usecase.CodeGatewayUnavailable, te.Code)
}

// TestWhatsAppStatusUnauthorizedKeepsBody - 401 devolve o corpo com o erro
func TestWhatsAppStatusUnauthorizedKeepsBody(t *testing.T) {
	gw := new(MockWhatsAppGateway)
	gw.On("Configured").Return(true)
	gw.On("Status", mock.Anything).Return(nil, &uazapi.APIError{StatusCode: 401, Message: "Unauthorized"})

	body, err := usecase.NewWhatsAppUseCase(gw, "", "", zap.NewNop()).Status(context.Background())

	var te *usecase.TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, usecase.CodeGatewayUnauthorized, te.Code)
	require.NotNil(t, body)
	assert.Equal(t, "Unauthorized", body.Error)
	assert.False(t, body.Status.Connected)
}

func TestWhatsAppStatusConnected(t *testing.T) {
	gw := new(MockWhatsAppGateway)
	gw.On("Configured").Return(true)
	gw.On("Status", mock.Anything).Return(&uazapi.StatusResponse{
		Instance: uazapi.Instance{Name: "bemquerer", Token: "abcdef123", Status: "connected", ProfileName: "Bem-Querer", Owner: "5511999999999"},
		Status:   uazapi.ConnectionStatus{Connected: true, JID: "5511999999999:1@s.whatsapp.net"},
	}, nil)

	body, err := usecase.NewWhatsAppUseCase(gw, "", "", zap.NewNop()).Status(context.Background())

	require.NoError(t, err)
	assert.True(t, body.Status.Connected)
	require.NotNil(t, body.Instance)
	assert.Equal(t, "5511999999999", body.Instance.Owner)
	assert.Equal(t, "abcd*****", body.Config.Token)
	assert.Equal(t, "bemquerer", body.Config.Instance)
}

func TestDisconnectWhatsApp(t *testing.T) {
	gw := new(MockWhatsAppGateway)
	gw.On("Disconnect", mock.Anything).Return(nil)

	body, err := usecase.NewWhatsAppUseCase(gw, "", "", zap.NewNop()).Disconnect(context.Background())
	require.NoError(t, err)
	assert.False(t, body.Status.Connected)
}

// ============ CLINICORP ============

func TestConfigureClinicorpPersistsAndActivates(t *testing.T) {
	modules := new(MockModuleRepository)
	cc := new(MockClinicorp)
	cc.On("GetProfessionals", mock.Anything).Return([]clinicorp.Professional{{ID: "1", Name: "Dra. Ana"}}, nil)
	modules.On("UpdateConfig", mock.Anything, "c1", entity.ModuleClinicorp, mock.MatchedBy(func(cfg map[string]any) bool {
		return cfg["client_id"] == "bemquerer" && cfg["client_secret"] == "secret"
	})).Return(true, nil)
	modules.On("Toggle", mock.Anything, "c1", entity.ModuleClinicorp, true).Return(true, nil)

	uc := usecase.NewConfigureClinicorpUseCase(modules, func(clinicorp.Credentials) usecase.ClinicorpGateway { return cc }, zap.NewNop())
	out, err := uc.Execute(context.Background(), "c1", usecase.ConfigureClinicorpInput{ClientID: " bemquerer ", ClientSecret: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "connected", out.Status)
	assert.Equal(t, "clinicorp", out.Integration)
	modules.AssertExpectations(t)
}

func TestConfigureClinicorpRejectsBadCredentials(t *testing.T) {
	modules := new(MockModuleRepository)
	cc := new(MockClinicorp)
	cc.On("GetProfessionals", mock.Anything).Return(nil, errors.New("401"))

	uc := usecase.NewConfigureClinicorpUseCase(modules, func(clinicorp.Credentials) usecase.ClinicorpGateway { return cc }, zap.NewNop())
	_, err := uc.Execute(context.Background(), "c1", usecase.ConfigureClinicorpInput{ClientID: "x", ClientSecret: "y"})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeInvalidCredentials, de.Code)
	modules.AssertNotCalled(t, "UpdateConfig", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfigureClinicorpRequiresFields(t *testing.T) {
	uc := usecase.NewConfigureClinicorpUseCase(new(MockModuleRepository), nil, zap.NewNop())
	_, err := uc.Execute(context.Background(), "c1", usecase.ConfigureClinicorpInput{ClientID: "x"})
	assert.True(t, usecase.IsDomainError(err))
	assert.Contains(t, err.Error(), "client_secret")
}

func TestScheduleAppointmentCreatesPatientThenAppointment(t *testing.T) {
	cc := new(MockClinicorp)
	cc.On("CreatePatient", mock.Anything, clinicorp.PatientInput{Name: "Ana", Phone: "11999999999"}).Return("p-1", nil)
	cc.On("CreateAppointment", mock.Anything, mock.MatchedBy(func(in clinicorp.AppointmentInput) bool {
		return in.PatientID == "p-1" && in.ProfessionalID == "prof_1"
	})).Return("a-1", nil)

	uc := usecase.NewClinicorpScheduleUseCase(staticResolver{gw: cc}, zap.NewNop())
	out, err := uc.Schedule(context.Background(), "c1", usecase.ScheduleAppointmentInput{
		PatientName: "Ana", Phone: "11999999999", Date: "2025-12-22", Time: "09:00", ProfessionalID: "prof_1",
	})

	require.NoError(t, err)
	assert.Equal(t, "a-1", out.AppointmentID)
}

func TestAvailabilityNotConfigured(t *testing.T) {
	uc := usecase.NewClinicorpScheduleUseCase(staticResolver{err: usecase.ErrClinicorpNotConfigured}, zap.NewNop())
	_, err := uc.Availability(context.Background(), "c1", usecase.AvailabilityInput{Date: "2025-12-22"})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeNotConfigured, de.Code)
}
