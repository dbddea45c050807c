package uazapi

import "strings"

// Inbound é a mensagem recebida já normalizada.
type Inbound struct {
	Phone     string
	Name      string
	Text      string
	MessageID string
	FromMe    bool
}

// Parse extrai a mensagem de texto do evento. ok=false para eventos sem texto,
// mensagens de grupo ou eventos que não são de mensagem.
func (e WebhookEvent) Parse() (Inbound, bool) {
	if e.Data != nil && e.Data.Key.RemoteJID != "" {
		d := e.Data
		text := d.Message.Conversation
		if text == "" {
			text = d.Message.ExtendedTextMessage.Text
		}
		if IsGroupJID(d.Key.RemoteJID) || strings.TrimSpace(text) == "" {
			return Inbound{}, false
		}
		return Inbound{
			Phone:     PhoneFromJID(d.Key.RemoteJID),
			Name:      d.PushName,
			Text:      text,
			MessageID: d.Key.ID,
			FromMe:    d.Key.FromMe,
		}, true
	}

	m := e.Message
	jid := m.ChatID
	if jid == "" {
		jid = m.Sender
	}
	if jid == "" || IsGroupJID(jid) || strings.TrimSpace(m.Text) == "" {
		return Inbound{}, false
	}

	id := m.MessageID
	if id == "" {
		id = m.ID
	}
	return Inbound{
		Phone:     PhoneFromJID(jid),
		Name:      m.SenderName,
		Text:      m.Text,
		MessageID: id,
		FromMe:    m.FromMe,
	}, true
}
