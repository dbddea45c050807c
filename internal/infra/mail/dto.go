package mail

import "time"

type InviteEmailData struct {
	AppName   string
	Role      string
	Link      string
	ExpiresAt time.Time
}

// RoleLabel é o cargo como aparece no e-mail.
func (d InviteEmailData) RoleLabel() string {
	if d.Role == "admin" {
		return "Administrador"
	}
	return "Usuário"
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AppName  string
	dialer   Dialer
}
