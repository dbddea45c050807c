package entity

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"time"
)

type ModuleName string

const (
	ModuleClinicorp  ModuleName = "clinicorp"
	ModuleChatGPT    ModuleName = "chatgpt"
	ModuleWhatsApp   ModuleName = "whatsapp"
	ModuleAgenda     ModuleName = "agenda"
	ModuleFinanceiro ModuleName = "financeiro"
)

func AllModules() []ModuleName {
	return []ModuleName{ModuleClinicorp, ModuleChatGPT, ModuleWhatsApp, ModuleAgenda, ModuleFinanceiro}
}

func (m ModuleName) IsValid() bool {
	switch m {
	case ModuleClinicorp, ModuleChatGPT, ModuleWhatsApp, ModuleAgenda, ModuleFinanceiro:
		return true
	}
	return false
}

func (m *ModuleName) Scan(src interface{}) error {
	str, err := scanString(src, "ModuleName")
	if err != nil {
		return err
	}
	*m = ModuleName(str)
	return nil
}

func (m ModuleName) Value() (driver.Value, error) {
	return string(m), nil
}

// ClinicModule espelha `clinicas_modulos`.
type ClinicModule struct {
	ID          string          `json:"id"`
	ClinicID    string          `json:"clinica_id"`
	Module      ModuleName      `json:"modulo"`
	Active      bool            `json:"ativo"`
	Configured  bool            `json:"configurado"`
	Config      json.RawMessage `json:"configuracao"`
	ActivatedAt *time.Time      `json:"ativado_em,omitempty"`
	CreatedAt   time.Time       `json:"criado_em"`
	UpdatedAt   time.Time       `json:"atualizado_em"`
}

type ModuleRepositoryInterface interface {
	List(ctx context.Context, clinicID string) ([]ClinicModule, error)
	ActiveNames(ctx context.Context, clinicID string) ([]ModuleName, error)
	IsActive(ctx context.Context, clinicID string, module ModuleName) (bool, error)
	Toggle(ctx context.Context, clinicID string, module ModuleName, active bool) (bool, error)
	UpdateConfig(ctx context.Context, clinicID string, module ModuleName, config map[string]any) (bool, error)
	Config(ctx context.Context, clinicID string, module ModuleName) (map[string]any, error)
	Initialize(ctx context.Context, clinicID string) error
}
