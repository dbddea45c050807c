package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Transaction é uma saga simples: operações em ordem, compensações em ordem reversa.
// A compensação i desfaz a operação i.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
	log           *zap.SugaredLogger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction(log *zap.SugaredLogger) *Transaction {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Transaction{log: log}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	t.compensations = append(t.compensations, Compensation{name, fn})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) {
	for i := failedAtIndex - 1; i >= 0; i-- {
		if i >= len(t.compensations) {
			continue
		}
		comp := t.compensations[i]
		if err := comp.Fn(ctx); err != nil {
			t.log.Errorw("⚠️ Compensação falhou (risco de inconsistência)", "compensation", comp.Name, "error", err)
		}
	}
}
