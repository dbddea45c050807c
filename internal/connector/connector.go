// Package connector conduz o pareamento do WhatsApp: pede o QR, consulta o
// status em intervalos e reflete disconnected/connecting/qrcode/connected.
package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/async"
	"github.com/xavierca1/bemquerer-hub/internal/client"
	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
)

const DefaultPollInterval = 5 * time.Second

var (
	ErrGatewayUnavailable = errors.New("Serviço do WhatsApp temporariamente indisponível. Tente novamente em instantes.")
	ErrConnect            = errors.New("Erro ao conectar WhatsApp")
	ErrNoQRCode           = errors.New("gateway não devolveu QR code")
)

type Gateway interface {
	ConnectWhatsApp(ctx context.Context) (*entity.WhatsAppConnectResponse, error)
	WhatsAppStatus(ctx context.Context) (*entity.WhatsAppStatus, error)
	DisconnectWhatsApp(ctx context.Context) error
}

// ConfirmFunc pergunta ao usuário antes de uma ação destrutiva.
type ConfirmFunc func() bool

type Snapshot struct {
	State       entity.ConnectionState
	QRCode      string
	QRText      string
	SessionInfo *entity.SessionInfo
	StatusError string
	Err         error
	Polling     bool
}

type Connector struct {
	mu       sync.Mutex
	gw       Gateway
	interval time.Duration
	snap     Snapshot
	poller   *async.Poller
	gen      int
	closed   bool
	onChange func(Snapshot)

	// base dos pollers; cancelado no Close
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.SugaredLogger
}

func New(gw Gateway, log *zap.Logger) *Connector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connector{
		gw:       gw,
		interval: DefaultPollInterval,
		snap:     Snapshot{State: entity.StateDisconnected},
		ctx:      ctx,
		cancel:   cancel,
		log:      log.Sugar(),
	}
}

func (c *Connector) WithInterval(d time.Duration) *Connector {
	c.interval = d
	return c
}

// OnChange registra quem redesenha a tela. É chamado fora do lock.
func (c *Connector) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Connector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Connector) snapshotLocked() Snapshot {
	s := c.snap
	s.Polling = c.poller != nil
	if s.SessionInfo != nil {
		info := *s.SessionInfo
		s.SessionInfo = &info
	}
	return s
}

// Mount consulta o status uma vez ao abrir a tela.
func (c *Connector) Mount(ctx context.Context) {
	st, err := c.gw.WhatsAppStatus(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	stale := c.detachPollerLocked()
	defer stale.Stop()

	if err == nil && st != nil && st.Status.Connected {
		c.snap = Snapshot{State: entity.StateConnected, SessionInfo: sessionInfo(st)}
		c.log.Infow("✅ WhatsApp já conectado", "number", c.snap.SessionInfo.Number)
	} else {
		c.snap = Snapshot{State: entity.StateDisconnected, StatusError: statusError(st, err)}
		if err != nil {
			c.log.Warnw("⚠️ Status do WhatsApp indisponível", "error", err)
		}
	}
	c.emitLocked()
}

// Connect pede um QR novo. Vale a partir de disconnected ou qrcode.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || (c.snap.State != entity.StateDisconnected && c.snap.State != entity.StateQRCode) {
		c.mu.Unlock()
		return nil
	}
	stale := c.detachPollerLocked()
	c.snap = Snapshot{State: entity.StateConnecting}
	c.emitLocked()
	stale.Stop()

	resp, err := c.gw.ConnectWhatsApp(ctx)

	c.mu.Lock()
	if c.closed || c.snap.State != entity.StateConnecting {
		c.mu.Unlock()
		return err
	}

	switch {
	case err != nil:
		userErr := ErrConnect
		if errors.Is(err, client.ErrUnavailable) {
			userErr = ErrGatewayUnavailable
		}
		c.snap = Snapshot{State: entity.StateDisconnected, Err: userErr}
		c.log.Warnw("❌ Falha ao conectar WhatsApp", "error", err)
		c.emitLocked()
		return fmt.Errorf("%w: %w", userErr, err)

	case resp != nil && resp.Status != nil && resp.Status.Connected:
		c.snap = Snapshot{State: entity.StateConnected, SessionInfo: &entity.SessionInfo{Number: uazapi.PhoneFromJID(resp.Status.JID)}}
		c.log.Infow("✅ WhatsApp conectado sem QR")
		c.emitLocked()
		return nil

	case resp != nil && resp.QRCode != "":
		c.snap = Snapshot{State: entity.StateQRCode, QRCode: resp.QRCode, QRText: resp.QRText}
		c.startPollerLocked()
		c.log.Infow("🔑 QR code recebido, aguardando leitura")
		c.emitLocked()
		return nil

	default:
		c.snap = Snapshot{State: entity.StateDisconnected, Err: ErrConnect}
		c.emitLocked()
		return ErrNoQRCode
	}
}

// Disconnect só age com confirmação. Recusa é no-op.
func (c *Connector) Disconnect(ctx context.Context, confirm ConfirmFunc) error {
	if confirm == nil || !confirm() {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	stale := c.detachPollerLocked()
	c.mu.Unlock()
	stale.Stop()

	err := c.gw.DisconnectWhatsApp(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return err
	}
	c.snap = Snapshot{State: entity.StateDisconnected}
	if err != nil {
		c.log.Warnw("⚠️ Falha ao desconectar no gateway", "error", err)
		c.snap.Err = err
	} else {
		c.log.Infow("🔌 WhatsApp desconectado")
	}
	c.emitLocked()
	return err
}

// Close encerra qualquer polling. Depois dele nenhuma resposta altera o estado.
func (c *Connector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	stale := c.detachPollerLocked()
	c.mu.Unlock()

	c.cancel()
	stale.Stop()
}

func (c *Connector) startPollerLocked() {
	c.gen++
	gen := c.gen
	c.poller = async.Start(c.ctx, c.interval, func(ctx context.Context) bool {
		return c.poll(ctx, gen)
	})
}

// detachPollerLocked desliga o poller do estado. Stop deve ser chamado fora do lock.
func (c *Connector) detachPollerLocked() *async.Poller {
	p := c.poller
	c.poller = nil
	c.gen++
	return p
}

func (c *Connector) poll(ctx context.Context, gen int) bool {
	st, err := c.gw.WhatsAppStatus(ctx)
	if ctx.Err() != nil {
		return false
	}

	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		return false
	}

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		c.poller = nil
		c.snap = Snapshot{State: entity.StateDisconnected, StatusError: statusError(st, err)}
		c.log.Warnw("❌ Token do WhatsApp inválido, parando verificação", "error", err)
		c.emitLocked()
		return false

	case err != nil:
		c.mu.Unlock()
		c.log.Debugw("⚠️ Falha ao verificar status, tentando de novo", "error", err)
		return true

	case st != nil && st.Status.Connected:
		c.poller = nil
		c.snap = Snapshot{State: entity.StateConnected, SessionInfo: sessionInfo(st)}
		c.log.Infow("✅ WhatsApp conectado", "number", c.snap.SessionInfo.Number)
		c.emitLocked()
		return false
	}

	c.mu.Unlock()
	return true
}

// emitLocked solta o lock e avisa o OnChange.
func (c *Connector) emitLocked() {
	snap := c.snapshotLocked()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func sessionInfo(st *entity.WhatsAppStatus) *entity.SessionInfo {
	info := &entity.SessionInfo{Number: uazapi.PhoneFromJID(st.Status.JID)}
	if st.Instance != nil {
		info.Name = st.Instance.ProfileName
		if st.Instance.Owner != "" {
			info.Number = st.Instance.Owner
		}
	}
	return info
}

func statusError(st *entity.WhatsAppStatus, err error) string {
	if st != nil && st.Error != "" {
		return st.Error
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
