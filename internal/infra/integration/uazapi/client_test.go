package uazapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnectReturnsQRCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instance/connect", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok-123", r.Header.Get("token"))

		json.NewEncoder(w).Encode(map[string]any{
			"connected": false,
			"instance":  map[string]any{"status": "connecting", "qrcode": "data:image/png;base64,AAA"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok-123", zap.NewNop())
	out, err := c.Connect(context.Background())

	require.NoError(t, err)
	assert.False(t, out.Connected)
	assert.Equal(t, "data:image/png;base64,AAA", out.Instance.QRCode)
}

func TestStatusUnauthorizedIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid token"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "expired", zap.NewNop()).Status(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsUnavailable(err))
	assert.Contains(t, err.Error(), "Invalid token")
}

func TestConnectUnavailableIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "tok", zap.NewNop()).Connect(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestSendTextNormalizesNumber(t *testing.T) {
	var got SendTextInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send/text", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"id":"msg-1","status":"sent"}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, "tok", zap.NewNop()).SendText(context.Background(), SendTextInput{
		Number: "+55 (11) 99999-9999",
		Text:   "Olá",
	})

	require.NoError(t, err)
	assert.Equal(t, "5511999999999", got.Number)
	assert.Equal(t, "msg-1", out.ID)
}

func TestUnconfiguredClientFailsFast(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", "", zap.NewNop()).Status(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "UAZAPI_TOKEN"))
}

func TestPhoneFromJID(t *testing.T) {
	assert.Equal(t, "5511999999999", PhoneFromJID("5511999999999:1"))
	assert.Equal(t, "5511999999999", PhoneFromJID("5511999999999@s.whatsapp.net"))
	assert.Equal(t, "5511999999999", PhoneFromJID("5511999999999:12@s.whatsapp.net"))
	assert.Equal(t, "", PhoneFromJID(""))
}

func TestQRDataURI(t *testing.T) {
	uri, err := QRDataURI("data:image/png;base64,XYZ")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,XYZ", uri)

	uri, err = QRDataURI("iVBORw0KGgoAAAANSUhEUg")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg", uri)

	uri, err = QRDataURI("2@abc123,def456,ghi789")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,iVBOR"))

	_, err = QRDataURI("  ")
	assert.Error(t, err)

	assert.True(t, IsImagePayload("data:image/png;base64,XYZ"))
	assert.True(t, IsImagePayload("iVBORw0KGgoAAAANSUhEUg"))
	assert.False(t, IsImagePayload("2@abc123,def456"))
}

func TestWebhookParseBaileysShape(t *testing.T) {
	var ev WebhookEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"event": "messages.upsert",
		"data": {
			"key": {"remoteJid": "5511988887777@s.whatsapp.net", "fromMe": false, "id": "ABC"},
			"pushName": "Maria",
			"message": {"extendedTextMessage": {"text": "Vi no insta, quero agendar"}}
		}
	}`), &ev))

	in, ok := ev.Parse()
	require.True(t, ok)
	assert.Equal(t, "5511988887777", in.Phone)
	assert.Equal(t, "Maria", in.Name)
	assert.Equal(t, "Vi no insta, quero agendar", in.Text)
	assert.Equal(t, "ABC", in.MessageID)
}

func TestWebhookParseUazShapeAndSkips(t *testing.T) {
	ev := WebhookEvent{Message: WebhookMessage{ChatID: "5511977776666@s.whatsapp.net", Text: "oi", FromMe: true, MessageID: "m1"}}
	in, ok := ev.Parse()
	require.True(t, ok)
	assert.True(t, in.FromMe)

	_, ok = WebhookEvent{Message: WebhookMessage{ChatID: "120363@g.us", Text: "grupo"}}.Parse()
	assert.False(t, ok)

	_, ok = WebhookEvent{Message: WebhookMessage{ChatID: "5511977776666@s.whatsapp.net"}}.Parse()
	assert.False(t, ok)
}
