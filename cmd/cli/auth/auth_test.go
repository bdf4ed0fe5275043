package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crucial707/landscape-lab/cmd/cli/config"
	"github.com/crucial707/landscape-lab/cmd/cli/root"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("LANDLAB_CONFIG", filepath.Join(t.TempDir(), "landlab.yaml"))
	t.Setenv("LANDLAB_API_URL", srv.URL)
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := root.New()
	InitAuth(cmd)
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLogin_StoresToken(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "s3cretpass", r.PostForm.Get("password"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123", "token_type": "bearer", "expires_in": 3600,
		})
	})

	out, err := run(t, "s3cretpass\n", "login", "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")

	f, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", f.Token)
	assert.Equal(t, "alice", f.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"incorrect username or password"}`))
	})

	_, err := run(t, "nope\n", "login", "-u", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incorrect username or password")

	f, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, f.Token)
}

func TestLogin_RequiresPassword(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL.Path)
	})

	_, err := run(t, "", "login", "-u", "alice")
	assert.ErrorContains(t, err, "password is required")
}

func TestRegister_ShowsFieldErrors(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"validation failed","fields":{"email":"must be a valid email"}}`))
	})

	_, err := run(t, "longenough\n", "register", "-u", "alice", "-e", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email: must be a valid email")
}

func TestLogoutClearsToken(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, config.Save(config.File{Token: "tok", Username: "alice", APIURL: "http://keep.test"}))

	_, err := run(t, "", "logout")
	require.NoError(t, err)

	f, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.File{APIURL: "http://keep.test"}, f)
}

func TestWhoami(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(models.User{ID: 9, Username: "root", Email: "root@example.com", IsActive: true, IsAdmin: true})
	})
	require.NoError(t, config.Save(config.File{Token: "tok"}))

	out, err := run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "root@example.com")
	assert.Contains(t, out, "admin")
}
