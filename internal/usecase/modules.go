package usecase

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type ModuleUseCase struct {
	Modules entity.ModuleRepositoryInterface
	log     *zap.SugaredLogger
}

func NewModuleUseCase(modules entity.ModuleRepositoryInterface, log *zap.Logger) *ModuleUseCase {
	return &ModuleUseCase{Modules: modules, log: log.Sugar()}
}

func parseModule(raw string) (entity.ModuleName, error) {
	m := entity.ModuleName(raw)
	if !m.IsValid() {
		return "", &DomainError{Code: CodeInvalidModule, Message: "módulo desconhecido: " + raw}
	}
	return m, nil
}

func (uc *ModuleUseCase) List(ctx context.Context, clinicID string) ([]entity.ClinicModule, error) {
	mods, err := uc.Modules.List(ctx, clinicID)
	if err != nil {
		return nil, databaseError("erro ao listar módulos", err)
	}
	if mods == nil {
		mods = []entity.ClinicModule{}
	}
	return mods, nil
}

func (uc *ModuleUseCase) ActiveNames(ctx context.Context, clinicID string) ([]entity.ModuleName, error) {
	names, err := uc.Modules.ActiveNames(ctx, clinicID)
	if err != nil {
		return nil, databaseError("erro ao listar módulos ativos", err)
	}
	return names, nil
}

func (uc *ModuleUseCase) IsActive(ctx context.Context, clinicID, module string) (bool, error) {
	m, err := parseModule(module)
	if err != nil {
		return false, err
	}
	ok, err := uc.Modules.IsActive(ctx, clinicID, m)
	if err != nil {
		return false, databaseError("erro ao verificar módulo", err)
	}
	return ok, nil
}

func (uc *ModuleUseCase) Toggle(ctx context.Context, clinicID, module string, active bool) (bool, error) {
	m, err := parseModule(module)
	if err != nil {
		return false, err
	}
	ok, err := uc.Modules.Toggle(ctx, clinicID, m, active)
	if err != nil {
		return false, databaseError("erro ao alterar módulo", err)
	}
	uc.log.Infow("🔄 Módulo alterado", "clinic_id", clinicID, "module", m, "active", active)
	return ok, nil
}

func (uc *ModuleUseCase) UpdateConfig(ctx context.Context, clinicID, module string, config map[string]any) (bool, error) {
	m, err := parseModule(module)
	if err != nil {
		return false, err
	}
	if config == nil {
		return false, validationError("configuracao: is required")
	}
	ok, err := uc.Modules.UpdateConfig(ctx, clinicID, m, config)
	if err != nil {
		return false, databaseError("erro ao salvar configuração", err)
	}
	return ok, nil
}

func (uc *ModuleUseCase) Initialize(ctx context.Context, clinicID string) error {
	if err := uc.Modules.Initialize(ctx, clinicID); err != nil {
		return databaseError("erro ao inicializar módulos", err)
	}
	return nil
}

// ActivateModules liga todos os módulos em paralelo. Só é true se todos ligarem.
func (uc *ModuleUseCase) ActivateModules(ctx context.Context, clinicID string, modules []string) (bool, error) {
	names := make([]entity.ModuleName, 0, len(modules))
	for _, raw := range modules {
		m, err := parseModule(raw)
		if err != nil {
			return false, err
		}
		names = append(names, m)
	}
	if len(names) == 0 {
		return false, validationError("modulos: is required")
	}

	results := make([]bool, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range names {
		g.Go(func() error {
			ok, err := uc.Modules.Toggle(gctx, clinicID, m, true)
			results[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		uc.log.Errorw("❌ Falha ao ativar módulos", "clinic_id", clinicID, "error", err)
		return false, databaseError("erro ao ativar módulos", err)
	}

	for _, ok := range results {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
