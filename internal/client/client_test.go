package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusurvey/edusurvey/internal/models"
)

// newTestClient starts a fake API and returns a client pointed at it
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"), "no provider installed")

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Email)
		assert.Equal(t, "pw", req.Password)

		w.Write([]byte(`{"token":"T1","user":{"_id":"u1","name":"Ann","email":"a@b.com","isAdmin":false}}`))
	})

	resp, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "T1", resp.Token)
	assert.Equal(t, "u1", resp.User.ID, "mongo _id is accepted")
	assert.False(t, resp.User.IsAdmin)
}

func TestLogin_ErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message key", status: http.StatusUnauthorized, body: `{"message":"Invalid credentials"}`, message: "Invalid credentials"},
		{name: "error key", status: http.StatusBadRequest, body: `{"error":"Email taken"}`, message: "Email taken"},
		{name: "no json", status: http.StatusInternalServerError, body: `oops`, message: "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Login(context.Background(), "a@b.com", "bad")
			require.Error(t, err)
			assert.Equal(t, tt.message, MessageFrom(err, "Login failed"))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestMessageFrom_TransportFailure(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	assert.Equal(t, "Login failed", MessageFrom(err, "Login failed"))
}

func TestCredentialProvider(t *testing.T) {
	var seen string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"u1","name":"Ann","email":"a@b.com","isAdmin":true}`))
	})

	token := "T1"
	c.SetCredentialProvider(func() string { return token })

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer T1", seen)
	assert.True(t, user.IsAdmin)

	token = ""
	_, err = c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Empty(t, seen, "detached credential sends no header")
}

func TestUnauthorizedHandler(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token expired"}`))
	})

	calls := 0
	var rejected string
	c.SetUnauthorizedHandler(func(token string) {
		calls++
		rejected = token
	})

	// No credential attached: the handler must not fire
	_, err := c.CurrentUser(context.Background())
	require.True(t, IsUnauthorized(err))
	assert.Equal(t, 0, calls)

	c.SetCredentialProvider(func() string { return "T1" })

	// Public endpoint rejecting credentials is a login failure, not an expiry
	_, err = c.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	assert.Equal(t, 0, calls)

	_, err = c.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "T1", rejected)
}

func TestMySurvey(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   *models.Survey
	}{
		{name: "none yet as null", status: http.StatusOK, body: `null`},
		{name: "none yet as 404", status: http.StatusNotFound, body: `{"message":"No survey found"}`},
		{
			name:   "existing",
			status: http.StatusOK,
			body:   `{"_id":"s1","currentInstitution":"MIT","educationLevel":"masters","isMigrated":"yes","migrationReason":"Quality"}`,
			want: &models.Survey{
				ID: "s1",
				SurveyInput: models.SurveyInput{
					CurrentInstitution: "MIT",
					EducationLevel:     "masters",
					IsMigrated:         "yes",
					MigrationReason:    "Quality",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/surveys/my-survey", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			survey, err := c.MySurvey(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, survey)
		})
	}
}

func TestAdminCalls(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/users":
			w.Write([]byte(`[{"_id":"u1","name":"Ann"},{"_id":"u2","name":"Bob"}]`))
		case "/api/users/u2/toggle-admin":
			w.Write([]byte(`{"isAdmin":true}`))
		case "/api/surveys":
			w.Write([]byte(`[{"_id":"s1","userName":"Ann"}]`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	ctx := context.Background()

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[1].ID)

	isAdmin, err := c.ToggleAdmin(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, isAdmin)

	surveys, err := c.ListSurveys(ctx)
	require.NoError(t, err)
	require.Len(t, surveys, 1)
	assert.Equal(t, "Ann", surveys[0].UserName)

	require.NoError(t, c.DeleteUser(ctx, "u1"))
	require.NoError(t, c.DeleteSurvey(ctx, "s1"))

	assert.Equal(t, []string{
		"GET /api/users",
		"PUT /api/users/u2/toggle-admin",
		"GET /api/surveys",
		"DELETE /api/users/u1",
		"DELETE /api/surveys/s1",
	}, calls)
}

func TestUpdatePassword_EmptyAck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var change models.PasswordChange
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&change))
		assert.Equal(t, "old", change.CurrentPassword)
		assert.Equal(t, "newpassword", change.NewPassword)
		w.WriteHeader(http.StatusOK)
	})

	err := c.UpdatePassword(context.Background(), models.PasswordChange{CurrentPassword: "old", NewPassword: "newpassword"})
	assert.NoError(t, err)
}
