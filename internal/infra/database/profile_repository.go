package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type ProfileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	query := `
		SELECT p.id, COALESCE(p.nome_completo, ''), COALESCE(p.cargo, ''), COALESCE(p.avatar_url, ''),
		       COALESCE(p.clinica_id::text, ''), COALESCE(c.nome_fantasia, '')
		FROM perfis p
		LEFT JOIN clinicas c ON c.id = p.clinica_id
		WHERE p.id = $1
	`
	var p entity.Profile
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.FullName, &p.Role, &p.AvatarURL, &p.ClinicID, &p.ClinicName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
