package cmd

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swell-cli/swell/packages/backend"
)

// resetState returns the package-level flag variables and terminal
// stubs to their defaults; flag values persist across Execute calls
// otherwise.
func resetState(t *testing.T) *bytes.Buffer {
	t.Helper()

	bodyFlag = ""
	fileFlag = ""
	clientFlag = "std"
	headerFlags = nil
	jarFlag = ""
	outputFlag = "text"
	timeoutFlag = backend.DefaultTimeout
	insecureFlag = false
	noColorFlag = true
	verboseFlag = false

	oldPiped, oldTTY := stdinPiped, stdoutTTY
	stdinPiped = func() bool { return false }
	stdoutTTY = func() bool { return false }
	t.Cleanup(func() {
		stdinPiped, stdoutTTY = oldPiped, oldTTY
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	out := &bytes.Buffer{}
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	return out
}

func execute(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := resetState(t)
	rootCmd.SetArgs(args)
	return out, rootCmd.Execute()
}

func TestRoot_HeaderAndLiteralBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "custom-value", r.Header.Get("X-Custom"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "text", string(body))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	out, err := execute(t, "post", server.URL, "-h", "X-Custom=custom-value", "-b", "text")
	require.NoError(t, err)
	assert.Equal(t, "ok", out.String())
}

func TestRoot_FileBodyWinsOverLiteral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "from file", string(body))
	}))
	defer server.Close()

	_, err := execute(t, "put", server.URL, "-f", path, "-b", "from flag")
	require.NoError(t, err)
}

func TestRoot_CookieJarRoundTrip(t *testing.T) {
	jarPath := filepath.Join(t.TempDir(), "cookies.jar")

	var sawCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			sawCookie = c.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", MaxAge: 100})
		http.SetCookie(w, &http.Cookie{Name: "transient", Value: "x"})
	}))
	defer server.Close()

	_, err := execute(t, "get", server.URL, "-j", jarPath)
	require.NoError(t, err)
	assert.Empty(t, sawCookie, "no cookie on the first request")

	data, err := os.ReadFile(jarPath)
	require.NoError(t, err, "jar file must exist after save")
	assert.Contains(t, string(data), `"name":"session"`)
	assert.NotContains(t, string(data), `"name":"transient"`, "session cookies are not persisted")

	_, err = execute(t, "get", server.URL, "-j", jarPath)
	require.NoError(t, err)
	assert.Equal(t, "abc123", sawCookie, "persisted cookie replayed on the second request")
}

func TestRoot_JSONOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hi"))
	}))
	defer server.Close()

	out, err := execute(t, "get", server.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"statusCode": 200`)
	assert.Contains(t, out.String(), `"body": "hi"`)
}

func TestRoot_ErrorStatusStillExitsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := execute(t, "get", server.URL)
	assert.NoError(t, err, "HTTP status must not affect the exit code")
}

func TestRoot_UsageErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	_, err := execute(t, "fetch", server.URL)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	_, err = execute(t, "get", "example.com")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	_, err = execute(t, "get", server.URL, "-c", "hyper")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	_, err = execute(t, "get", server.URL, "-h", "NoEquals")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	_, err = execute(t, "get", server.URL, "-o", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestRoot_MissingBodyFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	_, err := execute(t, "post", server.URL, "-f", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitIOError, exitCode(err))
}

func TestRoot_TransportError(t *testing.T) {
	// port 1 is never listening
	_, err := execute(t, "get", "http://127.0.0.1:1/")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, exitCode(err))
}

func TestExitCode_Default(t *testing.T) {
	assert.Equal(t, ExitUsageError, exitCode(errors.New("unknown flag")))
}

func TestLoadConfig_WarnsAndFallsBack(t *testing.T) {
	t.Setenv("SWELL_TIMEOUT", "soon")

	var stderr bytes.Buffer
	cfg := loadConfig(&stderr)

	assert.Contains(t, stderr.String(), "warning:")
	assert.Equal(t, "std", cfg.Client)
	assert.Equal(t, backend.DefaultTimeout, cfg.Timeout)
}
