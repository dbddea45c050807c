package tui

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xavierca1/bemquerer-hub/internal/connector"
	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type waMountedMsg struct{}

type waChangedMsg connector.Snapshot

type waActionMsg struct{ err error }

// WhatsAppModel é o widget de conexão: c conecta, d desconecta (com y/n), q sai.
type WhatsAppModel struct {
	ctx     context.Context
	conn    *connector.Connector
	changes chan connector.Snapshot
	spinner spinner.Model

	mounted    bool
	confirming bool
	qrDir      string
	qrSource   string
	qrView     string
}

func NewWhatsAppModel(ctx context.Context, conn *connector.Connector) *WhatsAppModel {
	changes := make(chan connector.Snapshot, 16)
	conn.OnChange(func(s connector.Snapshot) {
		select {
		case changes <- s:
		default:
		}
	})

	s := spinner.New()
	s.Spinner = spinner.Dot
	return &WhatsAppModel{ctx: ctx, conn: conn, changes: changes, spinner: s, qrDir: os.TempDir()}
}

func (m *WhatsAppModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.mount(), m.waitForChange())
}

func (m *WhatsAppModel) mount() tea.Cmd {
	return func() tea.Msg {
		m.conn.Mount(m.ctx)
		return waMountedMsg{}
	}
}

func (m *WhatsAppModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.changes:
			return waChangedMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *WhatsAppModel) connect() tea.Cmd {
	return func() tea.Msg {
		return waActionMsg{err: m.conn.Connect(m.ctx)}
	}
}

// A confirmação já aconteceu na tela (y), então o ConfirmFunc só repassa.
func (m *WhatsAppModel) disconnect() tea.Cmd {
	return func() tea.Msg {
		return waActionMsg{err: m.conn.Disconnect(m.ctx, func() bool { return true })}
	}
}

func (m *WhatsAppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case waMountedMsg:
		m.mounted = true
		return m, nil

	case waChangedMsg:
		m.prepareQR(connector.Snapshot(msg))
		return m, m.waitForChange()

	case waActionMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *WhatsAppModel) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" || key == "q" {
		m.conn.Close()
		return m, tea.Quit
	}

	if m.confirming {
		m.confirming = false
		if key == "y" || key == "s" {
			return m, m.disconnect()
		}
		return m, nil
	}

	state := m.conn.Snapshot().State
	switch key {
	case "c":
		if state == entity.StateDisconnected || state == entity.StateQRCode {
			return m, m.connect()
		}
	case "d":
		if state == entity.StateConnected || state == entity.StateQRCode {
			m.confirming = true
		}
	}
	return m, nil
}

func (m *WhatsAppModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("WhatsApp"))
	b.WriteString("\n\n")

	if !m.mounted {
		b.WriteString(m.spinner.View() + " Verificando conexão...\n")
		return b.String()
	}

	s := m.conn.Snapshot()
	switch s.State {
	case entity.StateConnected:
		b.WriteString(okStyle.Render("● Conectado") + "\n")
		if s.SessionInfo != nil {
			if s.SessionInfo.Name != "" {
				b.WriteString("Perfil: " + s.SessionInfo.Name + "\n")
			}
			b.WriteString("Número: " + s.SessionInfo.Number + "\n")
		}
	case entity.StateConnecting:
		b.WriteString(m.spinner.View() + " Gerando QR code...\n")
	case entity.StateQRCode:
		b.WriteString("Escaneie o QR code no WhatsApp do celular:\n\n")
		b.WriteString(m.renderQR(s))
		b.WriteString("\n" + m.spinner.View() + " Aguardando leitura...\n")
	default:
		b.WriteString(warnStyle.Render("○ Desconectado") + "\n")
		if s.StatusError != "" {
			b.WriteString(toastStyle.Render(s.StatusError) + "\n")
		}
	}
	if s.Err != nil {
		b.WriteString(toastStyle.Render(s.Err.Error()) + "\n")
	}

	b.WriteString("\n")
	if m.confirming {
		b.WriteString(warnStyle.Render("Desconectar o WhatsApp? (y/n)"))
	} else {
		b.WriteString(helpStyle.Render("c conectar • d desconectar • q sair"))
	}
	return b.String()
}

// prepareQR gera o desenho ou o PNG do QR uma vez por payload, fora do View.
func (m *WhatsAppModel) prepareQR(s connector.Snapshot) {
	if s.State != entity.StateQRCode || s.QRCode == m.qrSource {
		return
	}
	m.qrSource = s.QRCode

	if s.QRText != "" {
		if art, err := RenderQR(s.QRText); err == nil {
			m.qrView = art
			return
		}
	}
	path, err := SaveQRImage(s.QRCode, m.qrDir)
	if err != nil {
		m.qrView = toastStyle.Render(err.Error()) + "\n"
		return
	}
	m.qrView = "QR code salvo em " + path + "\n"
}

func (m *WhatsAppModel) renderQR(s connector.Snapshot) string {
	if s.QRCode != m.qrSource {
		return m.spinner.View() + " Preparando QR code...\n"
	}
	return m.qrView
}
