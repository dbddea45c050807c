package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// ModuleRepository usa `clinicas_modulos` e as RPCs de módulo.
type ModuleRepository struct {
	DB *sql.DB
}

func NewModuleRepository(db *sql.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) List(ctx context.Context, clinicID string) ([]entity.ClinicModule, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, clinica_id, modulo, ativo, configurado, COALESCE(configuracao, '{}'::jsonb), ativado_em, criado_em, atualizado_em
		FROM clinicas_modulos WHERE clinica_id = $1 ORDER BY modulo
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar módulos: %w", err)
	}
	defer rows.Close()

	mods := make([]entity.ClinicModule, 0)
	for rows.Next() {
		var (
			m           entity.ClinicModule
			cfg         []byte
			activatedAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.ClinicID, &m.Module, &m.Active, &m.Configured, &cfg, &activatedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler módulo: %w", err)
		}
		m.Config = json.RawMessage(cfg)
		if activatedAt.Valid {
			m.ActivatedAt = &activatedAt.Time
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

func (r *ModuleRepository) ActiveNames(ctx context.Context, clinicID string) ([]entity.ModuleName, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT modulo FROM clinicas_modulos WHERE clinica_id = $1 AND ativo = true`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar módulos ativos: %w", err)
	}
	defer rows.Close()

	names := make([]entity.ModuleName, 0)
	for rows.Next() {
		var m entity.ModuleName
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		names = append(names, m)
	}
	return names, rows.Err()
}

func (r *ModuleRepository) IsActive(ctx context.Context, clinicID string, module entity.ModuleName) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx, `SELECT modulo_ativo($1, $2)`, clinicID, module).Scan(&ok)
	return ok, err
}

func (r *ModuleRepository) Toggle(ctx context.Context, clinicID string, module entity.ModuleName, active bool) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx, `SELECT toggle_modulo($1, $2, $3)`, clinicID, module, active).Scan(&ok)
	return ok, err
}

func (r *ModuleRepository) UpdateConfig(ctx context.Context, clinicID string, module entity.ModuleName, config map[string]any) (bool, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return false, err
	}
	var ok bool
	err = r.DB.QueryRowContext(ctx, `SELECT atualizar_config_modulo($1, $2, $3::jsonb)`, clinicID, module, string(raw)).Scan(&ok)
	return ok, err
}

// Config devolve a configuração gravada. Módulo sem linha devolve mapa vazio.
func (r *ModuleRepository) Config(ctx context.Context, clinicID string, module entity.ModuleName) (map[string]any, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(configuracao, '{}'::jsonb) FROM clinicas_modulos WHERE clinica_id = $1 AND modulo = $2`,
		clinicID, module,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler configuração: %w", err)
	}

	cfg := map[string]any{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("configuração inválida: %w", err)
	}
	return cfg, nil
}

func (r *ModuleRepository) Initialize(ctx context.Context, clinicID string) error {
	_, err := r.DB.ExecContext(ctx, `SELECT inicializar_modulos_clinica($1)`, clinicID)
	return err
}
