package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// TestDealsMoveAgainstFakeAPI - o comando passa pela sessão, client e API
func TestDealsMoveAgainstFakeAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/crm/deals/d1/status", r.URL.Path)

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"status":"success","new_status":"`+body["status"]+`","message":"ok"}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--api", srv.URL, "--state", filepath.Join(t.TempDir(), "hub.db"), "deals", "move", "d1", "scheduled"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "d1 → scheduled")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Olá", truncate("Olá", 5))
	assert.Equal(t, "Quero…", truncate("Quero agendar", 6))
}

func TestFindInvite(t *testing.T) {
	invites := []entity.Invite{{ID: "i1", Status: entity.InviteUsed}, {ID: "i2", Status: entity.InvitePending}}

	inv, ok := findInvite(invites, "i2")
	require.True(t, ok)
	assert.True(t, inv.CanAct())

	_, ok = findInvite(invites, "i3")
	assert.False(t, ok)
}
