package server

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/session"
)

func newAdminEnv(t *testing.T) (*testEnv, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	api.addAccount("root@b.com", "pw", models.UserProfile{ID: "1", Name: "Root", IsAdmin: true})
	api.addAccount("bob@b.com", "pw", models.UserProfile{ID: "2", Name: "Bob"})
	env := newTestEnv(t, api, "")
	env.ready(t)
	env.login(t, "root@b.com", "pw")
	env.notices.Drain()
	return env, api
}

func TestSameOrigin_StateChangingRequests(t *testing.T) {
	tests := []struct {
		name    string
		header  http.Header
		allowed bool
	}{
		{
			name:   "foreign origin",
			header: http.Header{"Origin": {"https://evil.example"}},
		},
		{
			name:   "foreign referer without origin",
			header: http.Header{"Referer": {"https://evil.example/page"}},
		},
		{
			name:   "opaque origin",
			header: http.Header{"Origin": {"null"}},
		},
		{
			name:   "cross-site fetch metadata",
			header: http.Header{"Sec-Fetch-Site": {"cross-site"}},
		},
		{
			name:   "same host on another port",
			header: http.Header{"Origin": {"http://example.com:8081"}},
		},
		{
			name:    "same origin",
			header:  http.Header{"Origin": {"http://example.com"}},
			allowed: true,
		},
		{
			name:    "same origin referer",
			header:  http.Header{"Referer": {"http://example.com/admin?tab=users"}},
			allowed: true,
		},
		{
			name:    "no browser headers",
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, api := newAdminEnv(t)

			rec := env.doWithHeaders(http.MethodPost, "/admin/users/2/delete", nil, tt.header)

			if tt.allowed {
				assert.Equal(t, http.StatusSeeOther, rec.Code)
				assert.True(t, api.called("delete-user 2"))
				return
			}
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
			assert.False(t, api.called("delete-user 2"), "rejected before reaching the API")
			assert.Empty(t, env.notices.Drain())
		})
	}
}

func TestSameOrigin_ForeignLoginIsRejected(t *testing.T) {
	api := newFakeAPI()
	api.addAccount("a@b.com", "pw", models.UserProfile{ID: "1"})
	env := newTestEnv(t, api, "")
	env.ready(t)

	rec := env.doWithHeaders(http.MethodPost, "/login",
		url.Values{"email": {"a@b.com"}, "password": {"pw"}},
		http.Header{"Origin": {"https://evil.example"}})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, session.StateAnonymous, env.store.Snapshot().State)
}

func TestSameOrigin_ReadsAreUnaffected(t *testing.T) {
	env, _ := newAdminEnv(t)

	rec := env.doWithHeaders(http.MethodGet, "/admin?tab=users", nil, http.Header{"Origin": {"https://evil.example"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob@b.com")
}
