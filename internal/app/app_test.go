package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusurvey/edusurvey/internal/config"
	"github.com/edusurvey/edusurvey/internal/credentials"
	"github.com/edusurvey/edusurvey/internal/session"
)

func TestNew_SQLiteBackendRestoresSession(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"_id":"u1","name":"Ann","email":"a@b.com"}`))
	}))
	t.Cleanup(api.Close)

	cfg := config.Default()
	cfg.API.BaseURL = api.URL
	cfg.Credentials.Backend = config.BackendSQLite
	cfg.Credentials.DBPath = filepath.Join(t.TempDir(), "creds.sqlite")

	// A previous run left a token behind
	seed, err := credentials.OpenSQLiteStore(cfg.Credentials.DBPath, cfg.Credentials.Slot)
	require.NoError(t, err)
	require.NoError(t, seed.Save("T1"))
	require.NoError(t, seed.Close())

	a, err := New(cfg, zerolog.Nop(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	a.Session.Initialize(context.Background())

	snap := a.Session.Snapshot()
	assert.Equal(t, session.StateAuthenticated, snap.State)
	assert.Equal(t, "u1", snap.User.ID)
}

func TestNew_Ephemeral(t *testing.T) {
	cfg := config.Default()
	cfg.Credentials.Backend = "unused"

	a, err := New(cfg, zerolog.Nop(), Options{Ephemeral: true})
	require.NoError(t, err)

	_, ok := a.Creds.(*credentials.MemoryStore)
	assert.True(t, ok)
	assert.NoError(t, a.Close())
}
