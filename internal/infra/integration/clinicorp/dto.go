package clinicorp

import (
	"encoding/json"
	"strings"
)

// FlexibleID aceita ids numéricos ou em string.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string {
	return string(f)
}

type Appointment struct {
	ID          FlexibleID `json:"id"`
	PatientName string     `json:"patientName"`
	Patient     struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"patient"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Professional string `json:"professionalName"`
}

// Name devolve o nome do paciente com os fallbacks da API.
func (a Appointment) Name() string {
	if a.PatientName != "" {
		return a.PatientName
	}
	if a.Patient.Name != "" {
		return a.Patient.Name
	}
	return "Paciente Clinicorp"
}

type Slot struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	ProfessionalID string `json:"professionalId,omitempty"`
}

type Professional struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

type PatientInput struct {
	Name      string `json:"name"`
	CPF       string `json:"cpf,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	BirthDate string `json:"birthdate,omitempty"`
}

type AppointmentInput struct {
	PatientID      string `json:"patient_id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	ProfessionalID string `json:"professional_id"`
	Notes          string `json:"notes,omitempty"`
}

type createdResponse struct {
	ID FlexibleID `json:"id"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
