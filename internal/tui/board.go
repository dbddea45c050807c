package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/kanban"
)

type boardLoadedMsg struct{ err error }

type boardPersistedMsg struct {
	move kanban.Move
	err  error
}

type boardNoticeMsg kanban.Notice

type boardTickMsg time.Time

// BoardModel é a tela do funil. O cursor escolhe um card; espaço começa o
// arraste, esquerda/direita passam pelas colunas e enter solta.
type BoardModel struct {
	ctx     context.Context
	board   *kanban.Board
	notices chan kanban.Notice
	spinner spinner.Model

	loading  bool
	col, row int
	dragging bool
	hover    int // -1 ou len(colunas) = fora do quadro
	toast    string
}

func NewBoardModel(ctx context.Context, board *kanban.Board) *BoardModel {
	notices := make(chan kanban.Notice, 8)
	board.WithNotifier(func(n kanban.Notice) {
		select {
		case notices <- n:
		default:
		}
	})

	s := spinner.New()
	s.Spinner = spinner.Dot
	return &BoardModel{ctx: ctx, board: board, notices: notices, spinner: s, loading: true}
}

func (m *BoardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(), m.waitForNotice(), boardTick())
}

func (m *BoardModel) load() tea.Cmd {
	return func() tea.Msg {
		return boardLoadedMsg{err: m.board.Load(m.ctx)}
	}
}

func (m *BoardModel) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-m.notices:
			return boardNoticeMsg(n)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *BoardModel) persist(mv kanban.Move) tea.Cmd {
	return func() tea.Msg {
		return boardPersistedMsg{move: mv, err: m.board.Persist(m.ctx, mv)}
	}
}

// O selo "movido agora" depende do relógio; redesenha a cada segundo.
func boardTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return boardTickMsg(t) })
}

func (m *BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = "Não foi possível carregar os deals agora."
		}
		return m, nil

	case boardPersistedMsg:
		return m, nil

	case boardNoticeMsg:
		m.toast = kanban.Notice(msg).Message()
		return m, m.waitForNotice()

	case boardTickMsg:
		return m, boardTick()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *BoardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		m.board.Close()
		return m, tea.Quit
	}

	cols := m.board.Columns()
	if m.dragging {
		return m.handleDragKey(key, cols)
	}

	switch key {
	case "left", "h":
		if m.col > 0 {
			m.col--
			m.row = 0
		}
	case "right", "l":
		if m.col < len(cols)-1 {
			m.col++
			m.row = 0
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.col < len(cols) && m.row < len(cols[m.col].Deals)-1 {
			m.row++
		}
	case " ":
		deal, ok := m.selected(cols)
		if !ok {
			return m, nil
		}
		if err := m.board.DragStart(deal.ID); err != nil {
			m.toast = err.Error()
			return m, nil
		}
		m.toast = ""
		m.dragging = true
		m.hover = m.col
	}
	return m, nil
}

func (m *BoardModel) handleDragKey(key string, cols []kanban.ColumnView) (tea.Model, tea.Cmd) {
	switch key {
	case "left", "h":
		if m.hover >= 0 {
			m.hover--
		}
		m.board.DragOver(m.target(cols))
	case "right", "l":
		if m.hover < len(cols) {
			m.hover++
		}
		m.board.DragOver(m.target(cols))
	case "esc":
		m.board.DragCancel()
		m.dragging = false
	case "enter":
		target := m.target(cols)
		m.dragging = false
		mv, ok := m.board.DragEnd(target)
		if !ok {
			return m, nil
		}
		m.col, m.row = m.hover, 0
		return m, m.persist(mv)
	}
	return m, nil
}

func (m *BoardModel) target(cols []kanban.ColumnView) kanban.Target {
	if m.hover < 0 || m.hover >= len(cols) {
		return kanban.NoTarget
	}
	return kanban.Column(cols[m.hover].Stage.ID)
}

func (m *BoardModel) selected(cols []kanban.ColumnView) (entity.Deal, bool) {
	if m.col >= len(cols) || m.row >= len(cols[m.col].Deals) {
		return entity.Deal{}, false
	}
	return cols[m.col].Deals[m.row], true
}

func (m *BoardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Funil de pacientes"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Carregando deals...\n")
		return b.String()
	}

	cols := m.board.Columns()
	rendered := make([]string, len(cols))
	for i, c := range cols {
		rendered[i] = m.renderColumn(i, c)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	if m.dragging && (m.hover < 0 || m.hover >= len(cols)) {
		b.WriteString(warnStyle.Render("Fora do quadro: soltar aqui não move o card.") + "\n")
	}
	if m.toast != "" {
		b.WriteString(toastStyle.Render(m.toast) + "\n")
	}
	if m.dragging {
		b.WriteString(helpStyle.Render("←/→ escolher coluna • enter soltar • esc cancelar"))
	} else {
		b.WriteString(helpStyle.Render("←/→/↑/↓ navegar • espaço arrastar • q sair"))
	}
	return b.String()
}

func (m *BoardModel) renderColumn(i int, c kanban.ColumnView) string {
	var b strings.Builder
	b.WriteString(stageTitle(fmt.Sprintf("%s (%d)", c.Stage.Title, len(c.Deals)), c.Stage.Color))
	b.WriteString("\n")

	for j, d := range c.Deals {
		line := d.PatientName
		if m.board.MovedRecently(d) {
			line += " " + movedStyle.Render("● agora")
		}
		style := cardStyle
		if i == m.col && j == m.row {
			style = selectedStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("  " + string(d.Source) + " • " + string(d.Probability)))
		b.WriteString("\n")
	}
	if len(c.Deals) == 0 {
		b.WriteString(helpStyle.Render("  vazio"))
	}

	if c.Active {
		return activeColumnStyle.Render(b.String())
	}
	return columnStyle.Render(b.String())
}
