package handlers

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type AuthHandler struct {
	LoginUC *usecase.LoginUseCase
	Limiter *RateLimiter
}

func NewAuthHandler(uc *usecase.LoginUseCase, limiter *RateLimiter) *AuthHandler {
	return &AuthHandler{LoginUC: uc, Limiter: limiter}
}

// Login (POST /auth/login)
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Muitas tentativas. Aguarde um minuto."})
		return
	}

	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out, err := h.LoginUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimiter é uma janela fixa por IP. Entradas velhas são limpas a cada janela.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}
