package uazapi

import (
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// PhoneFromJID extrai o número de um JID ("5511999999999:1@s.whatsapp.net",
// "5511999999999@s.whatsapp.net" ou só "5511999999999:1").
func PhoneFromJID(jid string) string {
	jid = strings.TrimSpace(jid)
	if jid == "" {
		return ""
	}
	if !strings.Contains(jid, "@") {
		jid += "@" + types.DefaultUserServer
	}

	parsed, err := types.ParseJID(jid)
	if err != nil {
		user := strings.SplitN(jid, "@", 2)[0]
		return strings.SplitN(user, ":", 2)[0]
	}
	return strings.SplitN(parsed.User, ":", 2)[0]
}

// IsGroupJID indica se a mensagem veio de um grupo.
func IsGroupJID(jid string) bool {
	parsed, err := types.ParseJID(jid)
	if err != nil {
		return strings.HasSuffix(jid, "@g.us")
	}
	return parsed.Server == types.GroupServer
}

// NormalizeNumber deixa só os dígitos do telefone.
func NormalizeNumber(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}
