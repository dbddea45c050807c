package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/supabase"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginOutput struct {
	AccessToken string      `json:"access_token"`
	User        entity.User `json:"user"`
}

type LoginUseCase struct {
	Auth     Authenticator
	Profiles entity.ProfileRepositoryInterface
	log      *zap.SugaredLogger
}

func NewLoginUseCase(auth Authenticator, profiles entity.ProfileRepositoryInterface, log *zap.Logger) *LoginUseCase {
	return &LoginUseCase{Auth: auth, Profiles: profiles, log: log.Sugar()}
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	var errs []ValidationError
	errs = append(errs, validEmail("email", input.Email)...)
	errs = append(errs, required("password", input.Password)...)
	if err := joinValidation(errs); err != nil {
		return nil, err
	}

	// 1. Supabase Auth
	session, err := uc.Auth.SignIn(ctx, input.Email, input.Password)
	if errors.Is(err, supabase.ErrInvalidCredentials) {
		return nil, &DomainError{Code: CodeInvalidCredentials, Message: "E-mail ou senha inválidos"}
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "Erro ao autenticar", Err: err}
	}

	// 2. Perfil com a clínica
	profile, err := uc.Profiles.FindByID(ctx, session.User.ID)
	if errors.Is(err, entity.ErrProfileNotFound) {
		return nil, &DomainError{Code: CodeProfileNotFound, Message: "Perfil não encontrado para este usuário"}
	}
	if err != nil {
		return nil, databaseError("erro ao carregar perfil", err)
	}

	uc.log.Infow("🔑 Login realizado", "user_id", profile.ID, "clinic_id", profile.ClinicID)
	return &LoginOutput{AccessToken: session.AccessToken, User: profile.ToUser(session.User.Email)}, nil
}
