package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a minimal stand-in for the letter service.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []string
	emails []map[string]string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.URL.Path)
	b.mu.Unlock()

	if r.URL.Path != "/login" && r.Header.Get("Authorization") != "Bearer tok-1" {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	switch r.URL.Path {
	case "/login":
		if body["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"user":"Philip","token":"tok-1"}`))
	case "/fetch_parcel_ui":
		if body["county_name"] != "Shelby County, TN" {
			jsonError(w, http.StatusBadRequest, "County not supported.")
			return
		}
		_, _ = w.Write([]byte(`{"parcel_id":"044 012 00021"}`))
	case "/generate_report":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="Engagement_Letter_Jane_Doe.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.4 " + body["parcel_id"]))
	case "/send_email":
		b.mu.Lock()
		b.emails = append(b.emails, body)
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true}`))
	default:
		http.NotFound(w, r)
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type testEnv struct {
	backend  *fakeBackend
	server   *httptest.Server
	stateDir string
	download string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		backend:  &fakeBackend{},
		stateDir: t.TempDir(),
		download: t.TempDir(),
	}
	env.server = httptest.NewServer(env.backend)
	t.Cleanup(env.server.Close)

	t.Setenv("THG_STATE_DIR", env.stateDir)
	t.Setenv("THG_DOWNLOAD_DIR", env.download)
	t.Setenv("THG_API_BASE", "")
	t.Setenv("REACT_APP_API_BASE", "")
	t.Setenv("THG_DEBUG", "")
	return env
}

func (env *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	base := []string{
		"--config", filepath.Join(env.stateDir, "config.yaml"),
		"--api-base", env.server.URL + "/",
	}
	var out, errOut bytes.Buffer
	err := execute(append(base, args...), strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func TestCounties(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "counties")
	require.NoError(t, err)
	assert.Contains(t, out, "TN  Tennessee")
	assert.Contains(t, out, "GA  Georgia")
	assert.Contains(t, out, "VA  Virginia")

	out, err = env.run(t, "", "counties", "--state", "ga")
	require.NoError(t, err)
	assert.Contains(t, out, "Catoosa County, GA")
	assert.NotContains(t, out, "Shelby County, TN")

	_, err = env.run(t, "", "counties", "--state", "XX")
	assert.ErrorContains(t, err, `unknown state "XX"`)
}

func TestResolveCounty(t *testing.T) {
	tests := []struct {
		state, county string
		want          string
		wantErr       bool
	}{
		{"TN", "Shelby County, TN", "Shelby County, TN", false},
		{"TN", "Shelby County", "Shelby County, TN", false},
		{"tn", "Shelby", "Shelby County, TN", false},
		{"GA", "Catoosa", "Catoosa County, GA", false},
		{"TN", "Catoosa", "", true},
		{"TN", "", "", true},
		{"ZZ", "Shelby", "", true},
	}
	for _, tt := range tests {
		got, err := resolveCounty(tt.state, tt.county)
		if tt.wantErr {
			assert.Error(t, err, "%s/%s", tt.state, tt.county)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = env.run(t, "", "login", "-u", "philip", "-p", "nope")
	assert.EqualError(t, err, "Invalid username or password.")

	out, err := env.run(t, "", "login", "-u", "philip", "-p", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as: Philip\n", out)

	info, err := os.Stat(filepath.Join(env.stateDir, "thg_session_v1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Philip\n", out)

	out, err = env.run(t, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)

	_, err = env.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginPromptsForPassword(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "pw\n", "login", "-u", "philip")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as: Philip")
}

func TestLetterCommandsRequireLogin(t *testing.T) {
	env := newTestEnv(t)

	for _, args := range [][]string{
		{"parcel", "--address", "100 Main St", "--county", "Shelby"},
		{"generate", "--name", "Jane Doe"},
		{"send", "--file", "x.pdf", "--email", "jane@example.com"},
	} {
		_, err := env.run(t, "", args...)
		assert.ErrorIs(t, err, errNotLoggedIn, args[0])
	}
	assert.Empty(t, env.backend.calls)
}

func TestParcel(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "login", "-u", "philip", "-p", "pw")
	require.NoError(t, err)

	out, err := env.run(t, "", "parcel", "--address", "100 Main St, Memphis, TN", "--county", "Shelby")
	require.NoError(t, err)
	assert.Equal(t, "044 012 00021\n", out)

	_, err = env.run(t, "", "parcel", "--address", "", "--county", "Shelby")
	assert.EqualError(t, err, "Enter address and county.")

	_, err = env.run(t, "", "parcel", "--address", "1 Peach St", "--state", "GA", "--county", "Catoosa")
	assert.EqualError(t, err, "County not supported.")
}

func TestGenerateFetchSendAndHistory(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "login", "-u", "philip", "-p", "pw")
	require.NoError(t, err)

	out, err := env.run(t, "", "generate",
		"--name", "Jane Doe",
		"--email", "jane@example.com",
		"--address", "100 Main St, Memphis, TN",
		"--county", "Shelby",
		"--property", "Single family residence",
		"--fee", "450",
		"--date", "2025-03-14",
		"--send",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Engagement letter generated and downloaded.")
	assert.Contains(t, out, "File:     Engagement_Letter_Jane_Doe.pdf")
	assert.Contains(t, out, "Email sent.")

	saved := filepath.Join(env.download, "Engagement_Letter_Jane_Doe.pdf")
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 044 012 00021", string(data))

	assert.Equal(t, []string{"/login", "/fetch_parcel_ui", "/generate_report", "/send_email"}, env.backend.calls)
	require.Len(t, env.backend.emails, 1)
	assert.Equal(t, "Engagement_Letter_Jane_Doe.pdf", env.backend.emails[0]["pdf_path"])
	assert.Equal(t, "jane@example.com", env.backend.emails[0]["customer_email"])

	out, err = env.run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "044 012 00021")
	assert.Contains(t, out, "$450")
	assert.Contains(t, out, "jane@example.com")
}

func TestGenerateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "login", "-u", "philip", "-p", "pw")
	require.NoError(t, err)

	_, err = env.run(t, "", "generate",
		"--name", "Jane Doe",
		"--address", "100 Main St",
		"--county", "Shelby",
		"--property", "Lot 4",
		"--parcel", "044",
		"--fee", "450",
		"--signing", "60",
	)
	assert.EqualError(t, err, "Check Step 3: Fee must be a positive number and Signing + Completion must equal 100%.")

	_, err = env.run(t, "", "generate", "--name", "Jane Doe", "--county", "Shelby", "--parcel", "044")
	assert.EqualError(t, err, "Complete steps 1 and 2 before generating the letter.")

	assert.Equal(t, []string{"/login"}, env.backend.calls)
}

func TestSendValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "login", "-u", "philip", "-p", "pw")
	require.NoError(t, err)

	_, err = env.run(t, "", "send", "--file", "x.pdf")
	assert.EqualError(t, err, "Enter customer email.")

	_, err = env.run(t, "", "send", "--email", "jane@example.com")
	assert.EqualError(t, err, "Generate the engagement letter first.")

	out, err := env.run(t, "", "send", "--file", "x.pdf", "--email", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Email sent.\n", out)
}

func TestHistoryEmpty(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "", "history")
	require.NoError(t, err)
	assert.Equal(t, "No letters yet.\n", out)
}
