package entity

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed funnel.yaml
var defaultFunnelYAML []byte

// FunnelStage é uma coluna do kanban. O primeiro status é o destino canônico de um drop.
type FunnelStage struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Color    string   `yaml:"color" json:"color"`
	Statuses []Status `yaml:"statuses" json:"statuses"`
}

func (s FunnelStage) Canonical() Status {
	return s.Statuses[0]
}

func (s FunnelStage) Accepts(status Status) bool {
	for _, st := range s.Statuses {
		if st == status {
			return true
		}
	}
	return false
}

// Funnel é a configuração imutável das colunas. Cada status pertence a exatamente uma etapa.
type Funnel struct {
	stages   []FunnelStage
	byStatus map[Status]int
	byID     map[string]int
}

var (
	defaultFunnelOnce sync.Once
	defaultFunnel     *Funnel
)

// DefaultFunnel devolve o funil embutido. Um funil embutido inválido é erro de build.
func DefaultFunnel() *Funnel {
	defaultFunnelOnce.Do(func() {
		f, err := ParseFunnel(defaultFunnelYAML)
		if err != nil {
			panic(err)
		}
		defaultFunnel = f
	})
	return defaultFunnel
}

// ParseFunnel lê o YAML de etapas e valida a partição dos status.
func ParseFunnel(data []byte) (*Funnel, error) {
	var doc struct {
		Stages []FunnelStage `yaml:"stages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("erro ao ler funil: %w", err)
	}
	return NewFunnel(doc.Stages)
}

// LoadFunnel lê o funil de um arquivo YAML. Caminho vazio devolve o funil embutido.
func LoadFunnel(path string) (*Funnel, error) {
	if path == "" {
		return DefaultFunnel(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir funil: %w", err)
	}
	return ParseFunnel(data)
}

func NewFunnel(stages []FunnelStage) (*Funnel, error) {
	f := &Funnel{
		stages:   make([]FunnelStage, 0, len(stages)),
		byStatus: make(map[Status]int),
		byID:     make(map[string]int),
	}

	for i, st := range stages {
		if st.ID == "" {
			return nil, fmt.Errorf("%w: etapa %d sem id", ErrInvalidFunnel, i)
		}
		if _, dup := f.byID[st.ID]; dup {
			return nil, fmt.Errorf("%w: etapa %q duplicada", ErrInvalidFunnel, st.ID)
		}
		if len(st.Statuses) == 0 {
			return nil, fmt.Errorf("%w: etapa %q sem status", ErrInvalidFunnel, st.ID)
		}
		for _, s := range st.Statuses {
			if !s.IsValid() {
				return nil, fmt.Errorf("%w: etapa %q tem status %q", ErrInvalidFunnel, st.ID, s)
			}
			if owner, taken := f.byStatus[s]; taken {
				return nil, fmt.Errorf("%w: status %q em %q e %q", ErrInvalidFunnel, s, f.stages[owner].ID, st.ID)
			}
			f.byStatus[s] = i
		}

		copied := st
		copied.Statuses = append([]Status(nil), st.Statuses...)
		f.byID[st.ID] = i
		f.stages = append(f.stages, copied)
	}

	for _, s := range AllStatuses() {
		if _, ok := f.byStatus[s]; !ok {
			return nil, fmt.Errorf("%w: status %q sem etapa", ErrInvalidFunnel, s)
		}
	}

	return f, nil
}

func (f *Funnel) Stages() []FunnelStage {
	out := make([]FunnelStage, len(f.stages))
	for i, st := range f.stages {
		out[i] = st
		out[i].Statuses = append([]Status(nil), st.Statuses...)
	}
	return out
}

func (f *Funnel) Stage(id string) (FunnelStage, bool) {
	i, ok := f.byID[id]
	if !ok {
		return FunnelStage{}, false
	}
	return f.stages[i], true
}

func (f *Funnel) StageOf(status Status) (FunnelStage, bool) {
	i, ok := f.byStatus[status]
	if !ok {
		return FunnelStage{}, false
	}
	return f.stages[i], true
}

// DealsInStage filtra, preservando a ordem, os deals cujo status pertence à etapa.
func (f *Funnel) DealsInStage(deals []Deal, stageID string) []Deal {
	stage, ok := f.Stage(stageID)
	if !ok {
		return nil
	}
	out := make([]Deal, 0)
	for _, d := range deals {
		if stage.Accepts(d.Status) {
			out = append(out, d)
		}
	}
	return out
}
