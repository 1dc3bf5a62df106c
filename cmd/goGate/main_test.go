package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AUTH_SECRET", testSecret)
	t.Setenv("NODE_ENV", "test")
	t.Setenv("REDIS_ADDR", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gogate.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckCommand(t *testing.T) {
	out, err := runCLI(t, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "signing_hs256") || !strings.Contains(out, "config ok") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := runCLI(t, "check", "--fail-on", "info"); err == nil {
		t.Fatal("expected info warnings to fail with --fail-on info")
	}
	if _, err := runCLI(t, "check", "--fail-on", "loud"); err == nil {
		t.Fatal("expected unknown severity to fail")
	}
}

func TestCheckCommandHighWarning(t *testing.T) {
	path := writeConfig(t, "auth:\n  bypass_prefixes: [\"/login\"]\n")
	out, err := runCLI(t, "check", "--config", path)
	if err == nil || !strings.Contains(out, "bypass_covers_auth_page") {
		t.Fatalf("expected HIGH lint failure, got %v\n%s", err, out)
	}
}

func TestCheckCommandInvalidConfig(t *testing.T) {
	path := writeConfig(t, "session:\n  cookie_name: NEXT_LOCALE\n")
	if _, err := runCLI(t, "check", "--config", path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestTokenCommand(t *testing.T) {
	out, err := runCLI(t, "token", "--uid", "42", "--sid", "s-1", "--name", "alice")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	token := strings.TrimSpace(out)

	cfg := goGate.DefaultConfig()
	cfg.Environment = goGate.EnvTest
	cfg.JWT.Secret = testSecret
	g, err := goGate.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	claims, err := g.Tokens().ParseSession(token)
	if err != nil {
		t.Fatalf("printed token does not verify: %v", err)
	}
	if claims.UID != "42" || claims.SID != "s-1" || claims.UserName != "alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := runCLI(t, "token"); err == nil {
		t.Fatal("expected --uid to be required")
	}
	if _, err := runCLI(t, "token", "--uid", "1", "--register"); err == nil {
		t.Fatal("expected --register without redis to fail")
	}
}

func TestLoadtestCommand(t *testing.T) {
	out, err := runCLI(t, "loadtest", "--sessions", "5", "--concurrency", "2", "--ops", "20")
	if err != nil {
		t.Fatalf("loadtest: %v\n%s", err, out)
	}
	for _, want := range []string{"using miniredis", "signed-in: ops=20 failures=0", "anonymous: ops=20 failures=0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestServeMux(t *testing.T) {
	cfg := goGate.DefaultConfig()
	cfg.Environment = goGate.EnvTest
	cfg.JWT.Secret = testSecret
	g, err := goGate.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	h := newServeMux(g, cfg)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rr.Code != http.StatusTemporaryRedirect || rr.Header().Get("Location") != "/en/login" {
		t.Fatalf("expected login redirect, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/en/login", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "page /en/login") {
		t.Fatalf("expected login page, got %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "gogate_requests_total 2") {
		t.Fatalf("expected metrics, got %d\n%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", rr.Code)
	}
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(goGate.LogConfig{Level: "debug", Development: true})
	if err != nil {
		t.Fatal(err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug level")
	}
	if _, err := newLogger(goGate.LogConfig{Level: "shouting"}); err == nil {
		t.Fatal("expected bad level error")
	}
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if percentile(samples, 50) != 5 || percentile(samples, 0) != 1 || percentile(samples, 100) != 10 {
		t.Fatal("unexpected percentiles")
	}
	if percentile(nil, 50) != 0 {
		t.Fatal("empty samples should be zero")
	}
}
