package connector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/client"
	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type statusReply struct {
	st  *entity.WhatsAppStatus
	err error
}

// fakeGateway devolve as respostas de status em ordem; a última se repete.
type fakeGateway struct {
	mu            sync.Mutex
	connect       *entity.WhatsAppConnectResponse
	connectErr    error
	statuses      []statusReply
	statusCalls   int
	disconnects   int
	disconnectErr error
}

func (f *fakeGateway) ConnectWhatsApp(context.Context) (*entity.WhatsAppConnectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connect, f.connectErr
}

func (f *fakeGateway) WhatsAppStatus(context.Context) (*entity.WhatsAppStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if len(f.statuses) == 0 {
		return &entity.WhatsAppStatus{}, nil
	}
	r := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return r.st, r.err
}

func (f *fakeGateway) DisconnectWhatsApp(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	return f.disconnectErr
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

func (f *fakeGateway) setStatuses(r ...statusReply) {
	f.mu.Lock()
	f.statuses = r
	f.mu.Unlock()
}

func newTestConnector(gw Gateway) *Connector {
	return New(gw, zap.NewNop()).WithInterval(5 * time.Millisecond)
}

var (
	pending   = statusReply{st: &entity.WhatsAppStatus{Status: entity.ConnectedStatus{Connected: false}}}
	connected = statusReply{st: &entity.WhatsAppStatus{
		Status:   entity.ConnectedStatus{Connected: true, JID: "5511999999999:1"},
		Instance: &entity.InstanceInfo{ProfileName: "Clínica Bem-Querer", Owner: "5511999999999"},
	}}
	unauthorized = statusReply{
		st:  &entity.WhatsAppStatus{Error: "Unauthorized"},
		err: &client.HTTPError{StatusCode: 401, Message: "Unauthorized"},
	}
)

// assertNoMoreCalls garante que o timer foi mesmo cancelado.
func assertNoMoreCalls(t *testing.T, gw *fakeGateway) {
	t.Helper()
	before := gw.calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, gw.calls(), "status consultado depois do polling parar")
}

// ============ MOUNT ============

func TestMountAlreadyConnected(t *testing.T) {
	gw := &fakeGateway{statuses: []statusReply{connected}}
	c := newTestConnector(gw)
	defer c.Close()

	c.Mount(context.Background())

	s := c.Snapshot()
	assert.Equal(t, entity.StateConnected, s.State)
	require.NotNil(t, s.SessionInfo)
	assert.Equal(t, "5511999999999", s.SessionInfo.Number)
	assert.Equal(t, "Clínica Bem-Querer", s.SessionInfo.Name)
	assert.False(t, s.Polling)
}

func TestMountCapturesError(t *testing.T) {
	gw := &fakeGateway{statuses: []statusReply{{st: &entity.WhatsAppStatus{Error: "WhatsApp não configurado"}}}}
	c := newTestConnector(gw)
	defer c.Close()

	c.Mount(context.Background())

	s := c.Snapshot()
	assert.Equal(t, entity.StateDisconnected, s.State)
	assert.Equal(t, "WhatsApp não configurado", s.StatusError)
}

// ============ CONNECT + POLLING ============

// TestConnectQRThenPollConnected - qrcode com timer ativo, depois connected e timer parado
func TestConnectQRThenPollConnected(t *testing.T) {
	gw := &fakeGateway{connect: &entity.WhatsAppConnectResponse{QRCode: "abc123"}}
	gw.setStatuses(pending, pending, connected)
	c := newTestConnector(gw)
	defer c.Close()

	var mu sync.Mutex
	var states []entity.ConnectionState
	c.OnChange(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background()))
	s := c.Snapshot()
	assert.Equal(t, entity.StateQRCode, s.State)
	assert.Equal(t, "abc123", s.QRCode)
	assert.True(t, s.Polling)

	require.Eventually(t, func() bool { return c.Snapshot().State == entity.StateConnected }, time.Second, time.Millisecond)

	s = c.Snapshot()
	assert.False(t, s.Polling)
	assert.Empty(t, s.QRCode)
	assert.Equal(t, "5511999999999", s.SessionInfo.Number)
	assertNoMoreCalls(t, gw)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []entity.ConnectionState{entity.StateConnecting, entity.StateQRCode, entity.StateConnected}, states)
}

// TestPoll401StopsPolling - 401 leva a disconnected e mata o timer
func TestPoll401StopsPolling(t *testing.T) {
	gw := &fakeGateway{connect: &entity.WhatsAppConnectResponse{QRCode: "abc123"}}
	gw.setStatuses(pending, unauthorized)
	c := newTestConnector(gw)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))
	require.Eventually(t, func() bool { return c.Snapshot().State == entity.StateDisconnected }, time.Second, time.Millisecond)

	s := c.Snapshot()
	assert.Equal(t, "Unauthorized", s.StatusError)
	assert.False(t, s.Polling)
	assertNoMoreCalls(t, gw)
}

// TestPollSwallowsTransientErrors - erro comum não derruba o polling
func TestPollSwallowsTransientErrors(t *testing.T) {
	gw := &fakeGateway{connect: &entity.WhatsAppConnectResponse{QRCode: "abc123"}}
	gw.setStatuses(statusReply{err: errors.New("connection reset")}, statusReply{err: &client.HTTPError{StatusCode: 502}}, connected)
	c := newTestConnector(gw)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))
	require.Eventually(t, func() bool { return c.Snapshot().State == entity.StateConnected }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, gw.calls(), 3)
}

func TestConnectAlreadyConnected(t *testing.T) {
	gw := &fakeGateway{connect: &entity.WhatsAppConnectResponse{Status: &entity.ConnectedStatus{Connected: true, JID: "5511888888888:2@s.whatsapp.net"}}}
	c := newTestConnector(gw)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))
	s := c.Snapshot()
	assert.Equal(t, entity.StateConnected, s.State)
	assert.Equal(t, "5511888888888", s.SessionInfo.Number)
	assert.False(t, s.Polling)
}

func TestConnectUnavailable(t *testing.T) {
	gw := &fakeGateway{connectErr: &client.HTTPError{StatusCode: 503, Message: "indisponível"}}
	c := newTestConnector(gw)
	defer c.Close()

	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	s := c.Snapshot()
	assert.Equal(t, entity.StateDisconnected, s.State)
	assert.Equal(t, ErrGatewayUnavailable, s.Err)
}

func TestConnectGenericFailure(t *testing.T) {
	gw := &fakeGateway{connectErr: &client.HTTPError{StatusCode: 500, Message: "boom"}}
	c := newTestConnector(gw)
	defer c.Close()

	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrConnect)
	assert.Equal(t, "Erro ao conectar WhatsApp", c.Snapshot().Err.Error())
}

// TestConnectEmptyResponse - gateway sem resposta nem erro volta para desconectado
func TestConnectEmptyResponse(t *testing.T) {
	gw := &fakeGateway{}
	c := newTestConnector(gw)
	defer c.Close()

	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoQRCode)

	s := c.Snapshot()
	assert.Equal(t, entity.StateDisconnected, s.State)
	assert.Equal(t, ErrConnect, s.Err)
	assert.False(t, s.Polling)
}

// TestReconnectFromQRKeepsSinglePoller - novo QR troca o timer, nunca soma
func TestReconnectFromQRKeepsSinglePoller(t *testing.T) {
	gw := &fakeGateway{connect: &entity.WhatsAppConnectResponse{QRCode: "abc123"}}
	gw.setStatuses(pending)
	c := newTestConnector(gw).WithInterval(time.Hour)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))
	first := c.poller
	require.NoError(t, c.Connect(context.Background()))

	assert.NotSame(t, first, c.poller)
	select {
	case <-first.Done():
	default:
		t.Fatal("poller anterior continua vivo")
	}
}

// ============ DISCONNECT / CLOSE ============

func TestDisconnectRequiresConfirmation(t *testing.T) {
	gw := &fakeGateway{statuses: []statusReply{connected}}
	c := newTestConnector(gw)
	defer c.Close()
	c.Mount(context.Background())

	require.NoError(t, c.Disconnect(context.Background(), func() bool { return false }))
	assert.Equal(t, entity.StateConnected, c.Snapshot().State)
	assert.Zero(t, gw.disconnects)

	require.NoError(t, c.Disconnect(context.Background(), func() bool { return true }))
	s := c.Snapshot()
	assert.Equal(t, entity.StateDisconnected, s.State)
	assert.Nil(t, s.SessionInfo)
	assert.Equal(t, 1, gw.disconnects)
}

func TestDisconnectDuringQRCancelsPoller(t *testing.T) {
	gw := &fakeGateway{connect: &entity.WhatsAppConnectResponse{QRCode: "abc123"}}
	gw.setStatuses(pending)
	c := newTestConnector(gw)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Disconnect(context.Background(), func() bool { return true }))

	s := c.Snapshot()
	assert.Equal(t, entity.StateDisconnected, s.State)
	assert.Empty(t, s.QRCode)
	assert.False(t, s.Polling)
	assertNoMoreCalls(t, gw)
}

// TestCloseStopsPolling - fechar a tela cancela o timer em qualquer estado
func TestCloseStopsPolling(t *testing.T) {
	gw := &fakeGateway{connect: &entity.WhatsAppConnectResponse{QRCode: "abc123"}}
	gw.setStatuses(pending)
	c := newTestConnector(gw)

	require.NoError(t, c.Connect(context.Background()))
	c.Close()
	c.Close()

	assert.False(t, c.Snapshot().Polling)
	assertNoMoreCalls(t, gw)

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, entity.StateQRCode, c.Snapshot().State, "estado congelado depois do Close")
}
