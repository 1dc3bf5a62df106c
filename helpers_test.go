package goGate

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newReq(path string, cookies map[string]string, device DeviceClass) RequestContext {
	return NewRequest(context.Background(), path, "", cookies, nil, device)
}

func newReqQuery(path, query string, cookies map[string]string) RequestContext {
	return NewRequest(context.Background(), path, query, cookies, nil, DeviceDesktop)
}

func localeCookie(code string) map[string]string {
	return map[string]string{DefaultLocaleCookie: code}
}

// countingChecker returns a fixed answer and records how often it was asked.
type countingChecker struct {
	signedIn bool
	err      error
	calls    atomic.Int64
}

func (c *countingChecker) IsAuthenticated(context.Context, RequestContext) (bool, error) {
	c.calls.Add(1)
	return c.signedIn, c.err
}

func testGateConfig() Config {
	cfg := DefaultConfig()
	cfg.Environment = EnvTest
	cfg.JWT.Secret = testSecret
	return cfg
}

func buildTestGate(t *testing.T, cfg Config, checker SessionChecker) *Gate {
	t.Helper()
	b := New().WithConfig(cfg)
	if checker != nil {
		b = b.WithSessionChecker(checker)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build gate: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func mustRedirect(t *testing.T, resp *Response, err error, location string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsRedirect() {
		t.Fatalf("expected redirect to %q, got continue", location)
	}
	if resp.Location != location {
		t.Fatalf("expected redirect to %q, got %q", location, resp.Location)
	}
	if resp.Status != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", resp.Status)
	}
}

func mustContinue(t *testing.T, resp *Response, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil || resp.IsRedirect() {
		t.Fatalf("expected continue, got %+v", resp)
	}
}
