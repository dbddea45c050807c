package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

type profileStub map[string]*entity.Profile

func (p profileStub) FindByID(_ context.Context, id string) (*entity.Profile, error) {
	if prof, ok := p[id]; ok {
		return prof, nil
	}
	return nil, entity.ErrProfileNotFound
}

func sign(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, supabaseClaims{
		Email: "ana@clinica.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newProtected(a *Auth) (http.Handler, *Identity) {
	var seen Identity
	h := a.Identify(a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))
	return h, &seen
}

func TestAuthAcceptsValidToken(t *testing.T) {
	a := NewAuth(testSecret, profileStub{"u1": {ID: "u1", ClinicID: "c1", Role: "admin"}}, zap.NewNop())
	h, seen := newProtected(a)

	req := httptest.NewRequest(http.MethodGet, "/invites", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, testSecret, "u1", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, "c1", seen.ClinicID)
	assert.Equal(t, "admin", seen.Role)
}

func TestAuthRejects(t *testing.T) {
	a := NewAuth(testSecret, profileStub{"u1": {ID: "u1", ClinicID: "c1"}}, zap.NewNop())
	h, _ := newProtected(a)

	cases := map[string]string{
		"sem token":      "",
		"assinatura":     "Bearer " + sign(t, "outro-segredo-qualquer-com-32-caracteres!", "u1", time.Now().Add(time.Hour)),
		"expirado":       "Bearer " + sign(t, testSecret, "u1", time.Now().Add(-time.Minute)),
		"sem perfil":     "Bearer " + sign(t, testSecret, "u2", time.Now().Add(time.Hour)),
		"esquema errado": "Basic abc",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/invites", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestClinicIDFallback(t *testing.T) {
	assert.Equal(t, "default", ClinicID(context.Background(), "default"))
	ctx := WithIdentity(context.Background(), Identity{UserID: "u1", ClinicID: "c9"})
	assert.Equal(t, "c9", ClinicID(ctx, "default"))
}
