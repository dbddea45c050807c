package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
)

const (
	msgGatewayUnavailable = "Serviço do WhatsApp temporariamente indisponível. Tente novamente em instantes."
	msgGatewayToken       = "Token do WhatsApp inválido ou expirado"
)

type WhatsAppUseCase struct {
	Gateway    WhatsAppGateway
	Instance   string
	WebhookURL string
	log        *zap.SugaredLogger
}

func NewWhatsAppUseCase(gw WhatsAppGateway, instance, webhookURL string, log *zap.Logger) *WhatsAppUseCase {
	return &WhatsAppUseCase{Gateway: gw, Instance: instance, WebhookURL: webhookURL, log: log.Sugar()}
}

func (uc *WhatsAppUseCase) gatewayError(op string, err error) error {
	var apiErr *uazapi.APIError
	switch {
	case uazapi.IsUnavailable(err):
		return &TechnicalError{Code: CodeGatewayUnavailable, Message: msgGatewayUnavailable, Err: err}
	case uazapi.IsUnauthorized(err):
		msg := msgGatewayToken
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return &TechnicalError{Code: CodeGatewayUnauthorized, Message: msg, Err: err}
	default:
		return &TechnicalError{Code: CodeIntegration, Message: "Erro ao " + op + " WhatsApp", Err: err}
	}
}

func (uc *WhatsAppUseCase) Connect(ctx context.Context) (*entity.WhatsAppConnectResponse, error) {
	if !uc.Gateway.Configured() {
		return nil, &DomainError{Code: CodeNotConfigured, Message: "WhatsApp não configurado (UAZAPI_TOKEN)"}
	}

	resp, err := uc.Gateway.Connect(ctx)
	if err != nil {
		uc.log.Warnw("❌ Falha ao conectar WhatsApp", "error", err)
		return nil, uc.gatewayError("conectar", err)
	}

	uc.registerWebhook(ctx)

	if resp.Connected || resp.Instance.Status == "connected" {
		uc.log.Infow("✅ WhatsApp já conectado", "jid", resp.JID)
		return &entity.WhatsAppConnectResponse{Status: &entity.ConnectedStatus{Connected: true, JID: resp.JID}}, nil
	}

	payload := resp.Instance.QRCode
	if payload == "" {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "Gateway não devolveu QR code"}
	}
	qr, err := uazapi.QRDataURI(payload)
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "QR code inválido", Err: err}
	}

	out := &entity.WhatsAppConnectResponse{QRCode: qr}
	if !uazapi.IsImagePayload(payload) {
		out.QRText = strings.TrimSpace(payload)
	}

	uc.log.Infow("🔑 QR code gerado para pareamento", "instance", resp.Instance.Name)
	return out, nil
}

func (uc *WhatsAppUseCase) registerWebhook(ctx context.Context) {
	if uc.WebhookURL == "" {
		return
	}
	if err := uc.Gateway.ConfigureWebhook(ctx, uc.WebhookURL); err != nil {
		uc.log.Warnw("⚠️ Não foi possível registrar o webhook", "url", uc.WebhookURL, "error", err)
	}
}

// Status devolve o corpo de status mesmo em erro de token, para o cliente
// conseguir exibir o campo error junto do 401.
func (uc *WhatsAppUseCase) Status(ctx context.Context) (*entity.WhatsAppStatus, error) {
	if !uc.Gateway.Configured() {
		return &entity.WhatsAppStatus{Error: "WhatsApp não configurado"}, nil
	}

	resp, err := uc.Gateway.Status(ctx)
	if err != nil {
		gwErr := uc.gatewayError("consultar", err)
		var te *TechnicalError
		if errors.As(gwErr, &te) && te.Code == CodeGatewayUnauthorized {
			return &entity.WhatsAppStatus{Error: te.Message}, gwErr
		}
		return nil, gwErr
	}

	connected := resp.Status.Connected || resp.Instance.Status == "connected"
	out := &entity.WhatsAppStatus{
		Status: entity.ConnectedStatus{Connected: connected, JID: resp.Status.JID},
		Config: &entity.InstanceConfig{Token: maskToken(resp.Instance.Token), Instance: firstNonEmpty(resp.Instance.Name, uc.Instance)},
	}
	if connected {
		out.Instance = &entity.InstanceInfo{ProfileName: resp.Instance.ProfileName, Owner: resp.Instance.Owner}
	}
	return out, nil
}

func (uc *WhatsAppUseCase) Disconnect(ctx context.Context) (*entity.WhatsAppStatus, error) {
	if err := uc.Gateway.Disconnect(ctx); err != nil {
		return nil, uc.gatewayError("desconectar", err)
	}
	uc.log.Infow("🔌 WhatsApp desconectado")
	return &entity.WhatsAppStatus{Status: entity.ConnectedStatus{Connected: false}}, nil
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-4)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
