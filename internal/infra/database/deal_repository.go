package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// DealRepository lê os cards do kanban a partir de chats ⨝ patients.
type DealRepository struct {
	DB *sql.DB
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{DB: db}
}

func (r *DealRepository) List(ctx context.Context, clinicID string) ([]entity.Deal, error) {
	query := `
		SELECT c.id, COALESCE(p.name, c.whatsapp_number, 'Desconhecido'), COALESCE(p.phone, c.whatsapp_number, ''),
		       COALESCE(c.status, ''), COALESCE(c.intent, ''), COALESCE(p.source, ''),
		       COALESCE(c.last_message_at, c.created_at), COALESCE(c.value, 0),
		       COALESCE(c.treatment_type, ''), COALESCE(c.external_id, '')
		FROM chats c
		LEFT JOIN patients p ON p.id = c.patient_id
		WHERE c.clinic_id = $1
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar deals: %w", err)
	}
	defer rows.Close()

	deals := make([]entity.Deal, 0)
	for rows.Next() {
		var (
			d              entity.Deal
			status, intent string
			source         string
		)
		if err := rows.Scan(&d.ID, &d.PatientName, &d.Phone, &status, &intent, &source,
			&d.LastContact, &d.Value, &d.TreatmentType, &d.ExternalID); err != nil {
			return nil, fmt.Errorf("erro ao ler deal: %w", err)
		}

		d.Status = entity.DealStatusFromChat(status, intent)
		d.Source = entity.Source(source)
		if !d.Source.IsValid() {
			d.Source = entity.SourceIndication
		}
		d.Probability = entity.ProbabilityMedium
		if intent == "booking" {
			d.Probability = entity.ProbabilityHigh
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// UpdateStatus grava o novo status do funil no chat.
func (r *DealRepository) UpdateStatus(ctx context.Context, id string, status entity.Status, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE chats SET status = $1, last_message_at = $2 WHERE id = $3`,
		status, at, id,
	)
	if err != nil {
		return fmt.Errorf("erro ao atualizar status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrDealNotFound
	}
	return nil
}

// Status e last_message_at só são gravados na criação; depois disso quem move
// o card é o usuário.
const upsertScheduledDealSQL = `
		INSERT INTO chats (clinic_id, patient_id, whatsapp_number, status, intent, urgency, treatment_type, external_id, last_message_at)
		VALUES ($1, $2, $3, $4, 'booking', 'normal', $5, $6, $7)
		ON CONFLICT (external_id) DO UPDATE SET
			treatment_type = EXCLUDED.treatment_type
	`

// UpsertScheduled grava um agendamento externo como deal, uma linha por external_id.
func (r *DealRepository) UpsertScheduled(ctx context.Context, clinicID string, deal entity.Deal) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var patientID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO patients (clinic_id, name, phone, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (clinic_id, phone) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, clinicID, deal.PatientName, nullString(deal.Phone), deal.Source).Scan(&patientID)
	if err != nil {
		return fmt.Errorf("erro ao gravar paciente: %w", err)
	}

	_, err = tx.ExecContext(ctx, upsertScheduledDealSQL, clinicID, patientID, nullString(deal.Phone), deal.Status, deal.TreatmentType, deal.ExternalID, deal.LastContact)
	if err != nil {
		return fmt.Errorf("erro ao gravar deal: %w", err)
	}

	return tx.Commit()
}
