package entity

import (
	"context"
	"database/sql/driver"
	"time"
)

type InviteStatus string

const (
	InvitePending   InviteStatus = "pendente"
	InviteUsed      InviteStatus = "usado"
	InviteExpired   InviteStatus = "expirado"
	InviteCancelled InviteStatus = "cancelado"
)

func (s InviteStatus) IsValid() bool {
	switch s {
	case InvitePending, InviteUsed, InviteExpired, InviteCancelled:
		return true
	}
	return false
}

func (s *InviteStatus) Scan(src interface{}) error {
	str, err := scanString(src, "InviteStatus")
	if err != nil {
		return err
	}
	if str == "" {
		*s = InvitePending
		return nil
	}
	*s = InviteStatus(str)
	return nil
}

func (s InviteStatus) Value() (driver.Value, error) {
	return string(s), nil
}

type InviteType string

const (
	InviteByEmail InviteType = "email"
	InviteByCode  InviteType = "codigo"
)

const (
	EmailInviteTTL = 7 * 24 * time.Hour
	CodeInviteTTL  = 30 * 24 * time.Hour
)

// Invite espelha uma linha de `convites`.
type Invite struct {
	ID        string       `json:"id"`
	ClinicID  string       `json:"clinica_id"`
	Type      InviteType   `json:"tipo"`
	Email     string       `json:"email,omitempty"`
	Token     string       `json:"token,omitempty"`
	Code      string       `json:"codigo,omitempty"`
	Role      string       `json:"cargo"`
	SingleUse bool         `json:"uso_unico"`
	TimesUsed int          `json:"vezes_usado"`
	MaxUses   int          `json:"max_usos"`
	Status    InviteStatus `json:"status"`
	ExpiresAt time.Time    `json:"expira_em"`
	UsedAt    *time.Time   `json:"usado_em,omitempty"`
	CreatedAt time.Time    `json:"criado_em"`
	CreatedBy string       `json:"criado_por,omitempty"`
}

// CanAct indica se o convite ainda aceita ações (cancelar, reenviar, usar).
func (i Invite) CanAct() bool {
	return i.Status == InvitePending
}

type InviteValidation struct {
	Valid    bool   `json:"valido"`
	InviteID string `json:"convite_id,omitempty"`
	ClinicID string `json:"clinica_id,omitempty"`
	Role     string `json:"cargo,omitempty"`
	Message  string `json:"mensagem"`
}

type InviteRepositoryInterface interface {
	GenerateToken(ctx context.Context) (string, error)
	GenerateCode(ctx context.Context) (string, error)
	Create(ctx context.Context, invite *Invite) error
	FindByID(ctx context.Context, id string) (*Invite, error)
	ListByClinic(ctx context.Context, clinicID string) ([]Invite, error)
	UpdateStatus(ctx context.Context, id string, status InviteStatus) error
	Validate(ctx context.Context, token, code, email string) (*InviteValidation, error)
	MarkUsed(ctx context.Context, inviteID, userID string) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}
