package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// InviteRepository usa a tabela `convites` e as RPCs de convite.
type InviteRepository struct {
	DB *sql.DB
}

func NewInviteRepository(db *sql.DB) *InviteRepository {
	return &InviteRepository{DB: db}
}

func (r *InviteRepository) GenerateToken(ctx context.Context) (string, error) {
	var token string
	err := r.DB.QueryRowContext(ctx, `SELECT gerar_token_convite()`).Scan(&token)
	return token, err
}

func (r *InviteRepository) GenerateCode(ctx context.Context) (string, error) {
	var code string
	err := r.DB.QueryRowContext(ctx, `SELECT gerar_codigo_convite()`).Scan(&code)
	return code, err
}

func (r *InviteRepository) Create(ctx context.Context, inv *entity.Invite) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}

	query := `
		INSERT INTO convites (id, clinica_id, tipo, email, token, codigo, cargo, uso_unico, max_usos, status, expira_em, criado_em, criado_por)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		inv.ID,
		inv.ClinicID,
		string(inv.Type),
		nullString(inv.Email),
		nullString(inv.Token),
		nullString(inv.Code),
		inv.Role,
		inv.SingleUse,
		inv.MaxUses,
		inv.Status,
		inv.ExpiresAt,
		inv.CreatedAt,
		nullString(inv.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("convite duplicado: %w", err)
		}
		return fmt.Errorf("erro ao criar convite: %w", err)
	}
	return nil
}

const inviteColumns = `
	id, clinica_id, tipo, COALESCE(email, ''), COALESCE(token, ''), COALESCE(codigo, ''), cargo,
	uso_unico, vezes_usado, max_usos, status, expira_em, usado_em, criado_em, COALESCE(criado_por::text, '')
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvite(s rowScanner) (*entity.Invite, error) {
	var (
		inv    entity.Invite
		kind   string
		usedAt sql.NullTime
	)
	err := s.Scan(&inv.ID, &inv.ClinicID, &kind, &inv.Email, &inv.Token, &inv.Code, &inv.Role,
		&inv.SingleUse, &inv.TimesUsed, &inv.MaxUses, &inv.Status, &inv.ExpiresAt, &usedAt, &inv.CreatedAt, &inv.CreatedBy)
	if err != nil {
		return nil, err
	}
	inv.Type = entity.InviteType(kind)
	if usedAt.Valid {
		inv.UsedAt = &usedAt.Time
	}
	return &inv, nil
}

func (r *InviteRepository) FindByID(ctx context.Context, id string) (*entity.Invite, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrInviteNotFound
	}
	inv, err := scanInvite(r.DB.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM convites WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrInviteNotFound
	}
	return inv, err
}

func (r *InviteRepository) ListByClinic(ctx context.Context, clinicID string) ([]entity.Invite, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM convites WHERE clinica_id = $1 ORDER BY criado_em DESC`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar convites: %w", err)
	}
	defer rows.Close()

	invites := make([]entity.Invite, 0)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler convite: %w", err)
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

func (r *InviteRepository) UpdateStatus(ctx context.Context, id string, status entity.InviteStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE convites SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("erro ao atualizar convite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrInviteNotFound
	}
	return nil
}

func (r *InviteRepository) Validate(ctx context.Context, token, code, email string) (*entity.InviteValidation, error) {
	var (
		v                        entity.InviteValidation
		inviteID, clinicID, role sql.NullString
		message                  sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT valido, convite_id, clinica_id, cargo, mensagem FROM validar_convite($1, $2, $3)`,
		nullString(token), nullString(code), nullString(email),
	).Scan(&v.Valid, &inviteID, &clinicID, &role, &message)
	if err != nil {
		return nil, fmt.Errorf("erro ao validar convite: %w", err)
	}
	v.InviteID = inviteID.String
	v.ClinicID = clinicID.String
	v.Role = role.String
	v.Message = message.String
	return &v, nil
}

func (r *InviteRepository) MarkUsed(ctx context.Context, inviteID, userID string) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx, `SELECT marcar_convite_usado($1, $2)`, inviteID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("erro ao marcar convite: %w", err)
	}
	return ok, nil
}

// ExpireOverdue marca como expirado todo convite pendente vencido.
func (r *InviteRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE convites SET status = $1 WHERE status = $2 AND expira_em < $3`,
		entity.InviteExpired, entity.InvitePending, now,
	)
	if err != nil {
		return 0, fmt.Errorf("erro ao expirar convites: %w", err)
	}
	return res.RowsAffected()
}
