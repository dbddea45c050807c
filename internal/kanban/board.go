// Package kanban mantém os deals do funil em memória, deriva as colunas e
// aplica as transições de status iniciadas por arrastar e soltar.
package kanban

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
)

const DefaultLoadBound = 3 * time.Second

var (
	ErrDealNotFound = errors.New("deal não está no quadro")
	ErrDragActive   = errors.New("já existe um card sendo arrastado")
)

type Backend interface {
	GetDeals(ctx context.Context) ([]entity.Deal, error)
	UpdateDealStatus(ctx context.Context, dealID string, status entity.Status) (*client.StatusUpdate, error)
}

// Move é uma transição aplicada localmente e ainda não confirmada.
type Move struct {
	DealID      string
	From        entity.Status
	FromContact time.Time
	To          entity.Status
	At          time.Time
}

// Notice avisa que um movimento foi desfeito porque o backend recusou.
type Notice struct {
	DealID      string
	PatientName string
	From        entity.Status
	To          entity.Status
	Err         error
}

func (n Notice) Message() string {
	return fmt.Sprintf("Não foi possível mover %s. O card voltou para a etapa anterior.", n.PatientName)
}

type Notifier func(Notice)

type ColumnView struct {
	Stage  entity.FunnelStage
	Deals  []entity.Deal
	Active bool
}

type Board struct {
	mu       sync.Mutex
	funnel   *entity.Funnel
	backend  Backend
	deals    []entity.Deal
	drag     DragState
	fallback []entity.Deal
	bound    time.Duration
	now      func() time.Time
	notify   Notifier
	closed   bool
	log      *zap.SugaredLogger
}

func NewBoard(funnel *entity.Funnel, backend Backend, log *zap.Logger) *Board {
	return &Board{
		funnel:  funnel,
		backend: backend,
		bound:   DefaultLoadBound,
		now:     time.Now,
		log:     log.Sugar(),
	}
}

func (b *Board) WithClock(now func() time.Time) *Board {
	b.now = now
	return b
}

func (b *Board) WithLoadBound(d time.Duration) *Board {
	b.bound = d
	return b
}

// WithFallback define o que o quadro mostra quando o carregamento falha.
func (b *Board) WithFallback(deals []entity.Deal) *Board {
	b.fallback = append([]entity.Deal(nil), deals...)
	return b
}

func (b *Board) WithNotifier(n Notifier) *Board {
	b.notify = n
	return b
}

// Load busca os deals com prazo. Falha ou prazo vencido caem no fallback e o
// erro é devolvido só para log.
func (b *Board) Load(ctx context.Context) error {
	deals, err := async.FirstSettled(ctx, b.bound, b.backend.GetDeals)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	if err != nil {
		b.log.Warnw("⚠️ Deals indisponíveis, usando fallback", "error", err, "fallback", len(b.fallback))
		b.deals = b.known(b.fallback)
		return err
	}

	b.deals = b.known(deals)
	b.log.Debugw("📥 Deals carregados", "total", len(b.deals))
	return nil
}

// known descarta deals cujo status não pertence a nenhuma etapa do funil.
func (b *Board) known(deals []entity.Deal) []entity.Deal {
	out := make([]entity.Deal, 0, len(deals))
	for _, d := range deals {
		if _, ok := b.funnel.StageOf(d.Status); !ok {
			b.log.Warnw("⚠️ Deal com status desconhecido ignorado", "deal_id", d.ID, "status", d.Status)
			continue
		}
		out = append(out, d)
	}
	return out
}

func (b *Board) Funnel() *entity.Funnel {
	return b.funnel
}

func (b *Board) Deals() []entity.Deal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entity.Deal(nil), b.deals...)
}

func (b *Board) Drag() DragState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drag
}

func (b *Board) Columns() []ColumnView {
	b.mu.Lock()
	defer b.mu.Unlock()

	active := b.drag.ActiveStage()
	stages := b.funnel.Stages()
	cols := make([]ColumnView, len(stages))
	for i, st := range stages {
		cols[i] = ColumnView{
			Stage:  st,
			Deals:  b.funnel.DealsInStage(b.deals, st.ID),
			Active: st.ID == active,
		}
	}
	return cols
}

func (b *Board) MovedRecently(d entity.Deal) bool {
	return d.MovedRecently(b.now())
}

func (b *Board) DragStart(dealID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drag.Phase != PhaseIdle {
		return ErrDragActive
	}
	i := b.indexOf(dealID)
	if i < 0 {
		return ErrDealNotFound
	}
	stage, ok := b.funnel.StageOf(b.deals[i].Status)
	if !ok {
		return ErrDealNotFound
	}
	b.drag = b.drag.Start(dealID, stage.ID)
	return nil
}

// DragOver atualiza a coluna destacada e devolve a etapa ativa.
func (b *Board) DragOver(t Target) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if stageID, ok := b.resolve(t); ok {
		b.drag = b.drag.Over(stageID)
	} else {
		b.drag = b.drag.Leave()
	}
	return b.drag.ActiveStage()
}

// DragCancel encerra o gesto sem mover nada.
func (b *Board) DragCancel() {
	b.mu.Lock()
	b.drag = b.drag.End()
	b.mu.Unlock()
}

// DragEnd resolve o alvo final. Só há Move quando o deal troca de etapa.
func (b *Board) DragEnd(t Target) (Move, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	drag := b.drag
	b.drag = b.drag.End()
	if drag.Phase == PhaseIdle {
		return Move{}, false
	}

	stageID, ok := b.resolve(t)
	if !ok {
		return Move{}, false
	}
	stage, _ := b.funnel.Stage(stageID)

	i := b.indexOf(drag.DealID)
	if i < 0 {
		return Move{}, false
	}
	d := &b.deals[i]
	if stage.Accepts(d.Status) {
		return Move{}, false
	}

	now := b.now()
	m := Move{DealID: d.ID, From: d.Status, FromContact: d.LastContact, To: stage.Canonical(), At: now}
	d.Status = m.To
	d.LastContact = now
	return m, true
}

// Persist sincroniza o movimento. Se o backend recusar e o deal ainda estiver
// no estado movido, o movimento é desfeito e o Notifier é chamado.
func (b *Board) Persist(ctx context.Context, m Move) error {
	_, err := b.backend.UpdateDealStatus(ctx, m.DealID, m.To)
	if err == nil {
		b.log.Debugw("✅ Status sincronizado", "deal_id", m.DealID, "status", m.To)
		return nil
	}

	b.log.Warnw("❌ Falha ao sincronizar status", "deal_id", m.DealID, "status", m.To, "error", err)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return err
	}
	i := b.indexOf(m.DealID)
	if i < 0 || b.deals[i].Status != m.To || !b.deals[i].LastContact.Equal(m.At) {
		b.mu.Unlock()
		return err
	}
	b.deals[i].Status = m.From
	b.deals[i].LastContact = m.FromContact
	notice := Notice{DealID: m.DealID, PatientName: b.deals[i].PatientName, From: m.From, To: m.To, Err: err}
	notify := b.notify
	b.mu.Unlock()

	if notify != nil {
		notify(notice)
	}
	return err
}

// Drop é DragEnd seguido de Persist.
func (b *Board) Drop(ctx context.Context, t Target) (Move, bool, error) {
	m, ok := b.DragEnd(t)
	if !ok {
		return Move{}, false, nil
	}
	return m, true, b.Persist(ctx, m)
}

// Close faz o quadro ignorar carregamentos e rollbacks que cheguem depois.
func (b *Board) Close() {
	b.mu.Lock()
	b.closed = true
	b.drag = b.drag.End()
	b.mu.Unlock()
}

func (b *Board) resolve(t Target) (string, bool) {
	switch t.Kind {
	case TargetColumn:
		if _, ok := b.funnel.Stage(t.ID); ok {
			return t.ID, true
		}
	case TargetCard:
		if i := b.indexOf(t.ID); i >= 0 {
			if st, ok := b.funnel.StageOf(b.deals[i].Status); ok {
				return st.ID, true
			}
		}
	}
	return "", false
}

func (b *Board) indexOf(dealID string) int {
	for i := range b.deals {
		if b.deals[i].ID == dealID {
			return i
		}
	}
	return -1
}
