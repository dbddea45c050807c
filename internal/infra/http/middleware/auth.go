package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity é o usuário autenticado e a clínica do seu perfil.
type Identity struct {
	UserID   string
	Email    string
	ClinicID string
	Role     string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// ClinicID devolve a clínica do usuário autenticado ou o fallback.
func ClinicID(ctx context.Context, fallback string) string {
	if id, ok := IdentityFrom(ctx); ok && id.ClinicID != "" {
		return id.ClinicID
	}
	return fallback
}

type supabaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth verifica os JWTs HS256 emitidos pelo Supabase Auth.
type Auth struct {
	secret   []byte
	profiles entity.ProfileRepositoryInterface
	log      *zap.SugaredLogger
}

func NewAuth(secret string, profiles entity.ProfileRepositoryInterface, log *zap.Logger) *Auth {
	return &Auth{secret: []byte(secret), profiles: profiles, log: log.Sugar()}
}

var errMissingToken = errors.New("token ausente")

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errMissingToken
	}
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", errMissingToken
	}
	return token, nil
}

func (a *Auth) verify(ctx context.Context, raw string) (Identity, error) {
	claims := &supabaseClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, err
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("token sem sub")
	}

	id := Identity{UserID: claims.Subject, Email: claims.Email}
	if a.profiles != nil {
		profile, err := a.profiles.FindByID(ctx, claims.Subject)
		if err != nil {
			return Identity{}, err
		}
		id.ClinicID = profile.ClinicID
		id.Role = profile.Role
	}
	return id, nil
}

// Identify coloca a identidade no contexto quando há um token válido. Nunca bloqueia.
func (a *Auth) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		id, err := a.verify(r.Context(), raw)
		if err != nil {
			a.log.Warnw("⚠️ Token rejeitado", "path", r.URL.Path, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Require responde 401 quando Identify não encontrou usuário.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Não autenticado"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
