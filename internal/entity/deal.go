package entity

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"
)

// Status é a etapa fina do lead dentro do funil.
type Status string

const (
	StatusNew        Status = "new"
	StatusQualifying Status = "qualifying"
	StatusScheduled  Status = "scheduled"
	StatusAttended   Status = "attended"
	StatusNoShow     Status = "noshow"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// AllStatuses devolve todos os status na ordem do funil.
func AllStatuses() []Status {
	return []Status{
		StatusNew,
		StatusQualifying,
		StatusScheduled,
		StatusAttended,
		StatusNoShow,
		StatusWon,
		StatusLost,
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusQualifying, StatusScheduled, StatusAttended, StatusNoShow, StatusWon, StatusLost:
		return true
	}
	return false
}

func (s *Status) Scan(src interface{}) error {
	str, err := scanString(src, "Status")
	if err != nil {
		return err
	}
	if str == "" {
		*s = StatusNew
		return nil
	}
	*s = Status(str)
	return nil
}

func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}

// ParseStatus valida uma string vinda de fora (API, banco, CLI).
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

type Source string

const (
	SourceInstagram  Source = "instagram"
	SourceGoogle     Source = "google"
	SourceFacebook   Source = "facebook"
	SourceIndication Source = "indication"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceInstagram, SourceGoogle, SourceFacebook, SourceIndication:
		return true
	}
	return false
}

func (s *Source) Scan(src interface{}) error {
	str, err := scanString(src, "Source")
	if err != nil {
		return err
	}
	*s = Source(str)
	return nil
}

func (s Source) Value() (driver.Value, error) {
	return string(s), nil
}

type Probability string

const (
	ProbabilityLow    Probability = "low"
	ProbabilityMedium Probability = "medium"
	ProbabilityHigh   Probability = "high"
)

func (p Probability) IsValid() bool {
	switch p {
	case ProbabilityLow, ProbabilityMedium, ProbabilityHigh:
		return true
	}
	return false
}

// MovedWindow é a janela em que um card aparece como "movido agora".
const MovedWindow = 30 * time.Second

// Deal é o card do kanban: um paciente em alguma etapa do funil.
type Deal struct {
	ID            string      `json:"id"`
	PatientName   string      `json:"patientName"`
	Phone         string      `json:"phone,omitempty"`
	Status        Status      `json:"status"`
	Source        Source      `json:"source"`
	CampaignID    string      `json:"campaignId,omitempty"`
	LastContact   time.Time   `json:"lastContact"`
	Probability   Probability `json:"probability"`
	Value         float64     `json:"value,omitempty"`
	TreatmentType string      `json:"treatmentType,omitempty"`
	ExternalID    string      `json:"externalId,omitempty"`
}

// MovedRecently é verdadeiro enquanto o último contato estiver dentro da janela.
func (d Deal) MovedRecently(now time.Time) bool {
	return now.Sub(d.LastContact) < MovedWindow
}

// DealStatusFromChat deriva o status do funil a partir da conversa.
// Um status de funil gravado vence; senão a intenção de agendar vira qualificação.
func DealStatusFromChat(chatStatus, intent string) Status {
	if s := Status(chatStatus); s.IsValid() {
		return s
	}
	if intent == "booking" {
		return StatusQualifying
	}
	if chatStatus == "closed" {
		return StatusWon
	}
	return StatusNew
}

type DealRepositoryInterface interface {
	List(ctx context.Context, clinicID string) ([]Deal, error)
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	UpsertScheduled(ctx context.Context, clinicID string, deal Deal) error
}

func scanString(src interface{}, name string) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T into %s", src, name)
	}
}
