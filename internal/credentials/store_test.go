package credentials

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/edusurvey/edusurvey/internal/config"
)

// exerciseStore runs the contract every Store must satisfy
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, err := s.Load()
	require.ErrorIs(t, err, ErrNotFound, "empty slot")

	require.NoError(t, s.Save("T1"))
	token, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "T1", token)

	require.NoError(t, s.Save("T2"), "overwrite")
	token, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "T2", token)

	require.NoError(t, s.Delete())
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(), "deleting an empty slot is idempotent")
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	exerciseStore(t, NewKeyringStore("edusurvey-test", "token"))
}

func TestKeyringStore_SlotsAreIndependent(t *testing.T) {
	keyring.MockInit()
	a := NewKeyringStore("edusurvey-test", "a")
	b := NewKeyringStore("edusurvey-test", "b")

	require.NoError(t, a.Save("token-a"))
	_, err := b.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.sqlite")
	s, err := OpenSQLiteStore(path, "token")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.sqlite")

	s, err := OpenSQLiteStore(path, "token")
	require.NoError(t, err)
	require.NoError(t, s.Save("persisted"))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLiteStore(path, "token")
	require.NoError(t, err)
	defer reopened.Close()

	token, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(""))
}

func TestOpen(t *testing.T) {
	keyring.MockInit()

	s, err := Open(config.CredentialsConfig{Backend: config.BackendKeyring, Service: "svc", Slot: "token"})
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, s)
	assert.NoError(t, Close(s))

	s, err = Open(config.CredentialsConfig{
		Backend: config.BackendSQLite,
		Slot:    "token",
		DBPath:  filepath.Join(t.TempDir(), "c.sqlite"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	assert.NoError(t, Close(s))

	_, err = Open(config.CredentialsConfig{Backend: "paper"})
	assert.Error(t, err)
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "opaque token", token: "T1", want: false},
		{name: "jwt without exp", token: signed(t, jwt.MapClaims{"sub": "u1"}), want: false},
		{name: "jwt expired", token: signed(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), want: true},
		{name: "jwt valid", token: signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(tt.token, now))
		})
	}
}
