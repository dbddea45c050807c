package clinicorp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.clinicorp.com/v1"
	DefaultAuthURL = "https://auth.clinicorp.com/oauth/token"

	// Segredos curtos são tokens de API diretos, não client secrets OAuth.
	directTokenMaxLen = 100
	expiryBuffer      = 60 * time.Second
	mockClientID      = "mock"
)

var errUnauthorized = errors.New("clinicorp: não autorizado")

type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type Client struct {
	baseURL      string
	authURL      string
	subscriberID string
	codeLink     string
	http         *http.Client
	log          *zap.SugaredLogger
	now          func() time.Time

	mu    sync.Mutex
	creds Credentials
}

type Option func(*Client)

func WithBaseURL(base, auth string) Option {
	return func(c *Client) {
		c.baseURL = base
		c.authURL = auth
	}
}

func WithSubscriber(subscriberID, codeLink string) Option {
	return func(c *Client) {
		c.subscriberID = subscriberID
		c.codeLink = codeLink
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(creds Credentials, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		authURL:      DefaultAuthURL,
		subscriberID: "bemquerer",
		codeLink:     "90984",
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          log.Sugar(),
		now:          time.Now,
		creds:        creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) IsMock() bool {
	return c.creds.ClientID == mockClientID
}

func (c *Client) directToken() string {
	if s := c.creds.ClientSecret; s != "" && len(s) < directTokenMaxLen {
		return s
	}
	return ""
}

// Credentials devolve o estado atual dos tokens (para persistir depois de um refresh).
func (c *Client) Credentials() Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds
}

func (c *Client) token(ctx context.Context) (string, error) {
	if t := c.directToken(); t != "" {
		return t, nil
	}

	c.mu.Lock()
	valid := c.creds.AccessToken != "" && c.now().Before(c.creds.ExpiresAt.Add(-expiryBuffer))
	access := c.creds.AccessToken
	c.mu.Unlock()
	if valid {
		return access, nil
	}
	return c.refresh(ctx)
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	if t := c.directToken(); t != "" {
		return t, nil
	}

	c.mu.Lock()
	payload := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": c.creds.RefreshToken,
		"client_id":     c.creds.ClientID,
		"client_secret": c.creds.ClientSecret,
	}
	c.mu.Unlock()

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("clinicorp: erro ao renovar token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("⚠️ Clinicorp: refresh recusado", "status", resp.StatusCode)
		return "", fmt.Errorf("clinicorp: refresh falhou com status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("clinicorp: resposta de token inválida: %w", err)
	}

	c.mu.Lock()
	c.creds.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		c.creds.RefreshToken = tok.RefreshToken
	}
	c.creds.ExpiresAt = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.mu.Unlock()

	c.log.Infow("🔑 Clinicorp: token renovado", "expires_in", tok.ExpiresIn)
	return tok.AccessToken, nil
}

// request faz a chamada autenticada. 401 força um refresh e uma nova tentativa;
// 404 vira resultado vazio (found=false).
func (c *Client) request(ctx context.Context, method, endpoint string, in, out any) (bool, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return false, err
	}

	status, body, err := c.send(ctx, method, endpoint, tok, in)
	if err != nil {
		return false, err
	}

	if status == http.StatusUnauthorized {
		c.log.Infow("🔄 Clinicorp: 401, renovando token", "endpoint", endpoint)
		if tok, err = c.refresh(ctx); err != nil {
			return false, fmt.Errorf("%w: %v", errUnauthorized, err)
		}
		if status, body, err = c.send(ctx, method, endpoint, tok, in); err != nil {
			return false, err
		}
	}

	switch {
	case status == http.StatusNotFound:
		c.log.Warnw("⚠️ Clinicorp: endpoint não encontrado", "endpoint", endpoint)
		return false, nil
	case status == http.StatusUnauthorized:
		return false, errUnauthorized
	case status < 200 || status >= 300:
		return false, fmt.Errorf("clinicorp: %s %s: status %d: %s", method, endpoint, status, string(body))
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return false, fmt.Errorf("clinicorp: resposta inválida em %s: %w", endpoint, err)
		}
	}
	return true, nil
}

func (c *Client) send(ctx context.Context, method, endpoint, token string, in any) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("clinicorp: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, nil
}

func (c *Client) subscriberQuery(date string) url.Values {
	q := url.Values{}
	q.Set("date", date)
	q.Set("subscriber_id", c.subscriberID)
	q.Set("code_link", c.codeLink)
	return q
}

// GetAppointments lista os agendamentos do dia (YYYY-MM-DD).
func (c *Client) GetAppointments(ctx context.Context, date string) ([]Appointment, error) {
	if c.IsMock() {
		return mockAppointments(date), nil
	}

	var out []Appointment
	if _, err := c.request(ctx, http.MethodGet, "/appointment/get_appointment?"+c.subscriberQuery(date).Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CheckAvailability(ctx context.Context, date, professionalID string) ([]Slot, error) {
	if c.IsMock() {
		return mockSlots(date, professionalID), nil
	}

	q := c.subscriberQuery(date)
	if professionalID != "" {
		q.Set("professionalId", professionalID)
	}

	var out []Slot
	if _, err := c.request(ctx, http.MethodGet, "/appointment/get_avaliable_times_calendar?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProfessionals(ctx context.Context) ([]Professional, error) {
	if c.IsMock() {
		return []Professional{{ID: "prof_1", Name: "Dra. Ana Lima"}, {ID: "prof_2", Name: "Dr. Carlos Mendes"}}, nil
	}

	var out []Professional
	if _, err := c.request(ctx, http.MethodGet, "/professionals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePatient(ctx context.Context, in PatientInput) (string, error) {
	if c.IsMock() {
		return "mock_patient_" + uuid.NewString()[:8], nil
	}
	return c.create(ctx, "/patients", in)
}

func (c *Client) CreateAppointment(ctx context.Context, in AppointmentInput) (string, error) {
	if c.IsMock() {
		return "mock_appt_" + uuid.NewString()[:8], nil
	}
	return c.create(ctx, "/appointments", in)
}

func (c *Client) create(ctx context.Context, endpoint string, in any) (string, error) {
	var out createdResponse
	found, err := c.request(ctx, http.MethodPost, endpoint, in, &out)
	if err != nil {
		return "", err
	}
	if !found || out.ID == "" {
		return "", fmt.Errorf("clinicorp: %s não devolveu id", endpoint)
	}
	return out.ID.String(), nil
}

func mockAppointments(date string) []Appointment {
	a := Appointment{ID: "mock_appt_1", PatientName: "Juliana Costa", Date: date, Time: "09:30"}
	b := Appointment{ID: "mock_appt_2", Date: date, Time: "14:00"}
	b.Patient.Name = "Rafael Almeida"
	return []Appointment{a, b}
}

func mockSlots(date, professionalID string) []Slot {
	if professionalID == "" {
		professionalID = "prof_1"
	}
	out := make([]Slot, 0, 4)
	for _, h := range []int{9, 10, 14, 16} {
		out = append(out, Slot{Date: date, Time: fmt.Sprintf("%02d:00", h), ProfessionalID: professionalID})
	}
	return out
}
