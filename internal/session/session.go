// Package session guarda o usuário logado: um registro imutável trocado por
// inteiro no login e no logout e persistido no estado local.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/client"
	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// StorageKey é a chave do usuário no estado local.
const StorageKey = "nexus_user"

var ErrMissingCredentials = errors.New("e-mail e senha são obrigatórios")

type Session struct {
	User        entity.User `json:"user"`
	AccessToken string      `json:"access_token"`
	IssuedAt    time.Time   `json:"issued_at"`
}

// KV é o subconjunto do Store usado pelo Provider.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
}

type Provider struct {
	current atomic.Pointer[Session]
	store   KV
	auth    Authenticator
	now     func() time.Time
	log     *zap.SugaredLogger
}

func NewProvider(store KV, log *zap.Logger) *Provider {
	return &Provider{store: store, now: time.Now, log: log.Sugar()}
}

// WithAuthenticator liga o login ao backend. O client precisa do Provider como
// TokenSource, então a ligação acontece depois da construção.
func (p *Provider) WithAuthenticator(auth Authenticator) *Provider {
	p.auth = auth
	return p
}

// Current devolve a sessão atual ou nil.
func (p *Provider) Current() *Session {
	return p.current.Load()
}

// Token implementa client.TokenSource.
func (p *Provider) Token() string {
	if s := p.current.Load(); s != nil {
		return s.AccessToken
	}
	return ""
}

func (p *Provider) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if p.auth == nil {
		return nil, errors.New("login indisponível: backend não configurado")
	}

	// 1. Autentica no backend
	out, err := p.auth.Login(ctx, email, password)
	if err != nil {
		p.log.Warnw("❌ Login falhou", "email", email, "error", err)
		return nil, err
	}

	// 2. Troca a sessão inteira
	s := &Session{User: out.User, AccessToken: out.AccessToken, IssuedAt: p.now()}

	// 3. Persiste
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar sessão: %w", err)
	}
	if err := p.store.Set(ctx, StorageKey, string(data)); err != nil {
		return nil, err
	}

	p.current.Store(s)
	p.log.Infow("✅ Login realizado", "user_id", s.User.ID, "clinic_id", s.User.ClinicID)
	return s, nil
}

func (p *Provider) Logout(ctx context.Context) error {
	p.current.Store(nil)
	if err := p.store.Delete(ctx, StorageKey); err != nil {
		return err
	}
	p.log.Infow("👋 Logout realizado")
	return nil
}

// Restore recarrega a sessão salva. Um valor corrompido é descartado.
func (p *Provider) Restore(ctx context.Context) (*Session, error) {
	raw, ok, err := p.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		p.log.Warnw("⚠️ Sessão salva inválida, descartando", "error", err)
		return nil, p.store.Delete(ctx, StorageKey)
	}

	p.current.Store(&s)
	return &s, nil
}
