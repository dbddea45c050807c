package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type CreateEmailInviteInput struct {
	Email     string `json:"email"`
	Role      string `json:"cargo"`
	ClinicID  string `json:"-"`
	CreatedBy string `json:"-"`
}

type CreateCodeInviteInput struct {
	Role      string `json:"cargo"`
	MaxUses   int    `json:"max_usos"`
	ClinicID  string `json:"-"`
	CreatedBy string `json:"-"`
}

type ValidateInviteInput struct {
	Token string `json:"token,omitempty"`
	Code  string `json:"codigo,omitempty"`
	Email string `json:"email,omitempty"`
}

type InviteUseCase struct {
	Invites entity.InviteRepositoryInterface
	Mailer  InviteMailer
	AppURL  string
	Now     func() time.Time
	log     *zap.SugaredLogger
}

func NewInviteUseCase(invites entity.InviteRepositoryInterface, mailer InviteMailer, appURL string, log *zap.Logger) *InviteUseCase {
	return &InviteUseCase{
		Invites: invites,
		Mailer:  mailer,
		AppURL:  strings.TrimRight(appURL, "/"),
		Now:     time.Now,
		log:     log.Sugar(),
	}
}

func (uc *InviteUseCase) inviteLink(token string) string {
	return uc.AppURL + "/cadastro?convite=" + token
}

// CreateEmail grava o convite e envia o e-mail. Se o e-mail falhar, o convite é cancelado.
func (uc *InviteUseCase) CreateEmail(ctx context.Context, input CreateEmailInviteInput) (*entity.Invite, error) {
	var errs []ValidationError
	errs = append(errs, validEmail("email", input.Email)...)
	errs = append(errs, validRole("cargo", input.Role)...)
	errs = append(errs, required("clinica_id", input.ClinicID)...)
	if err := joinValidation(errs); err != nil {
		return nil, err
	}

	token, err := uc.Invites.GenerateToken(ctx)
	if err != nil || token == "" {
		return nil, databaseError("Erro ao gerar token", err)
	}

	now := uc.Now()
	invite := &entity.Invite{
		ClinicID:  input.ClinicID,
		Type:      entity.InviteByEmail,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Token:     token,
		Role:      input.Role,
		SingleUse: true,
		MaxUses:   1,
		Status:    entity.InvitePending,
		ExpiresAt: now.Add(entity.EmailInviteTTL),
		CreatedAt: now,
		CreatedBy: input.CreatedBy,
	}

	tx := NewTransaction(uc.log)
	tx.AddOperation("insert_invite", func(ctx context.Context) error {
		return uc.Invites.Create(ctx, invite)
	})
	tx.AddCompensation("cancel_invite", func(ctx context.Context) error {
		return uc.Invites.UpdateStatus(ctx, invite.ID, entity.InviteCancelled)
	})
	tx.AddOperation("send_email", func(ctx context.Context) error {
		return uc.Mailer.SendInvite(invite.Email, invite.Role, uc.inviteLink(invite.Token), invite.ExpiresAt)
	})

	if err := tx.Execute(ctx); err != nil {
		uc.log.Errorw("❌ Falha ao criar convite por e-mail", "email", invite.Email, "error", err)
		return nil, &TechnicalError{Code: CodeIntegration, Message: "Erro ao criar convite", Err: err}
	}

	uc.log.Infow("✉️ Convite enviado", "invite_id", invite.ID, "clinic_id", invite.ClinicID)
	return invite, nil
}

func (uc *InviteUseCase) CreateCode(ctx context.Context, input CreateCodeInviteInput) (*entity.Invite, error) {
	var errs []ValidationError
	errs = append(errs, validRole("cargo", input.Role)...)
	errs = append(errs, required("clinica_id", input.ClinicID)...)
	if input.MaxUses < 1 {
		errs = append(errs, ValidationError{"max_usos", "must be at least 1"})
	}
	if err := joinValidation(errs); err != nil {
		return nil, err
	}

	code, err := uc.Invites.GenerateCode(ctx)
	if err != nil || code == "" {
		return nil, databaseError("Erro ao gerar código", err)
	}

	now := uc.Now()
	invite := &entity.Invite{
		ClinicID:  input.ClinicID,
		Type:      entity.InviteByCode,
		Code:      code,
		Role:      input.Role,
		SingleUse: input.MaxUses == 1,
		MaxUses:   input.MaxUses,
		Status:    entity.InvitePending,
		ExpiresAt: now.Add(entity.CodeInviteTTL),
		CreatedAt: now,
		CreatedBy: input.CreatedBy,
	}
	if err := uc.Invites.Create(ctx, invite); err != nil {
		return nil, databaseError("Erro ao criar convite", err)
	}
	return invite, nil
}

func (uc *InviteUseCase) Validate(ctx context.Context, input ValidateInviteInput) (*entity.InviteValidation, error) {
	if input.Token == "" && input.Code == "" {
		return nil, validationError("token ou codigo é obrigatório")
	}
	v, err := uc.Invites.Validate(ctx, input.Token, strings.ToUpper(input.Code), input.Email)
	if err != nil {
		uc.log.Errorw("❌ Erro ao validar convite", "error", err)
		return &entity.InviteValidation{Valid: false, Message: "Erro ao validar convite"}, nil
	}
	return v, nil
}

func (uc *InviteUseCase) MarkUsed(ctx context.Context, inviteID, userID string) (bool, error) {
	var errs []ValidationError
	errs = append(errs, required("convite_id", inviteID)...)
	errs = append(errs, required("usuario_id", userID)...)
	if err := joinValidation(errs); err != nil {
		return false, err
	}
	ok, err := uc.Invites.MarkUsed(ctx, inviteID, userID)
	if err != nil {
		return false, databaseError("erro ao marcar convite como usado", err)
	}
	return ok, nil
}

func (uc *InviteUseCase) List(ctx context.Context, clinicID string) ([]entity.Invite, error) {
	invites, err := uc.Invites.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, databaseError("erro ao listar convites", err)
	}
	if invites == nil {
		invites = []entity.Invite{}
	}
	return invites, nil
}

func (uc *InviteUseCase) Cancel(ctx context.Context, clinicID, inviteID string) error {
	invite, err := uc.Invites.FindByID(ctx, inviteID)
	if errors.Is(err, entity.ErrInviteNotFound) || (err == nil && invite.ClinicID != clinicID) {
		return &DomainError{Code: CodeInviteNotFound, Message: "convite não encontrado"}
	}
	if err != nil {
		return databaseError("erro ao buscar convite", err)
	}
	if !invite.CanAct() {
		return &DomainError{Code: CodeInviteNotPending, Message: "convite não está pendente"}
	}
	if err := uc.Invites.UpdateStatus(ctx, inviteID, entity.InviteCancelled); err != nil {
		return databaseError("erro ao cancelar convite", err)
	}
	uc.log.Infow("🚫 Convite cancelado", "invite_id", inviteID)
	return nil
}

// ExpireOverdue marca como expirados os convites pendentes vencidos.
func (uc *InviteUseCase) ExpireOverdue(ctx context.Context) (int64, error) {
	return uc.Invites.ExpireOverdue(ctx, uc.Now())
}
