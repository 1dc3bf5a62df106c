package signin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTokens(t *testing.T) *jwt.Manager {
	t.Helper()
	m, err := jwt.NewManager(jwt.Config{
		SessionTTL:    time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	return m
}

func newTestStore(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return session.NewStore(rdb, "gg"), mr
}

func newTestMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestStubVerifier(t *testing.T) {
	v := StubVerifier{}
	u, err := v.Verify(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if u.ID != "12345678990" || u.UserName != "test" {
		t.Fatalf("unexpected stub user %+v", u)
	}
	if _, err := v.Verify(context.Background(), "", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "alice", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInIssuesCookieAndRegistersSession(t *testing.T) {
	tokens := newTestTokens(t)
	store, mr := newTestStore(t)
	mux := newTestMux(NewHandler(StubVerifier{}, tokens, store, Options{}, nil))

	body := `{"userName":"alice","password":"pw","locale":"ms"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp redirectResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Redirect != "/ms/home" {
		t.Fatalf("expected /ms/home, got %q", resp.Redirect)
	}

	c := findCookie(rr.Result().Cookies(), "session_token")
	if c == nil || c.Value == "" {
		t.Fatal("expected session_token cookie")
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.MaxAge != 3600 {
		t.Fatalf("unexpected cookie attributes %+v", c)
	}

	claims, err := tokens.ParseSession(c.Value)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UID != "12345678990" || claims.UserName != "test" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !mr.Exists("gg:s:" + claims.SID) {
		t.Fatal("session not registered in redis")
	}
	sess, err := store.Get(context.Background(), claims.SID)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if sess.Locale != "ms" {
		t.Fatalf("expected stored locale ms, got %q", sess.Locale)
	}
}

func TestSignInFormBodyUsesLocaleCookie(t *testing.T) {
	mux := newTestMux(NewHandler(StubVerifier{}, newTestTokens(t), nil, Options{}, nil))

	form := url.Values{"userName": {"alice"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "NEXT_LOCALE", Value: "ms"})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"/ms/home"`) {
		t.Fatalf("expected /ms/home redirect, got %s", rr.Body.String())
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	mux := newTestMux(NewHandler(StubVerifier{}, newTestTokens(t), nil, Options{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"userName":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if findCookie(rr.Result().Cookies(), "session_token") != nil {
		t.Fatal("no cookie expected on failed sign-in")
	}
}

func TestSignInMalformedJSON(t *testing.T) {
	mux := newTestMux(NewHandler(StubVerifier{}, newTestTokens(t), nil, Options{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSignInRedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()
	mux := newTestMux(NewHandler(StubVerifier{}, newTestTokens(t), store, Options{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"userName":"a","password":"b"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestSignOutRevokesSessionAndClearsCookie(t *testing.T) {
	tokens := newTestTokens(t)
	store, mr := newTestStore(t)
	mux := newTestMux(NewHandler(StubVerifier{}, tokens, store, Options{}, nil))

	signIn := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"userName":"a","password":"b"}`))
	signIn.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, signIn)
	c := findCookie(rr.Result().Cookies(), "session_token")
	if c == nil {
		t.Fatal("sign-in did not set cookie")
	}
	claims, _ := tokens.ParseSession(c.Value)

	out := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	out.AddCookie(c)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, out)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"/en/login"`) {
		t.Fatalf("expected /en/login redirect, got %s", rr.Body.String())
	}
	cleared := findCookie(rr.Result().Cookies(), "session_token")
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", cleared)
	}
	if mr.Exists("gg:s:" + claims.SID) {
		t.Fatal("session still registered after sign-out")
	}
}

func TestSessionEndpoint(t *testing.T) {
	tokens := newTestTokens(t)
	store, mr := newTestStore(t)
	mux := newTestMux(NewHandler(StubVerifier{}, tokens, store, Options{}, nil))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", rr.Code)
	}

	signIn := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"userName":"a","password":"b"}`))
	signIn.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, signIn)
	c := findCookie(rr.Result().Cookies(), "session_token")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(c)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.ID != "12345678990" || resp.Expires.IsZero() {
		t.Fatalf("unexpected session response %+v", resp)
	}

	claims, _ := tokens.ParseSession(c.Value)
	mr.Del("gg:s:" + claims.SID)
	req = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(c)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session, got %d", rr.Code)
	}
}

type fakeLimiter struct {
	checkErr error
	failures int
	resets   int
}

func (f *fakeLimiter) Check(context.Context, string, string) error { return f.checkErr }

func (f *fakeLimiter) RecordFailure(context.Context, string, string) error {
	f.failures++
	return nil
}

func (f *fakeLimiter) Reset(context.Context, string) error {
	f.resets++
	return nil
}

func postSignIn(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestSignInThrottle(t *testing.T) {
	lim := &fakeLimiter{}
	mux := newTestMux(NewHandler(StubVerifier{}, newTestTokens(t), nil, Options{}, nil).WithLimiter(lim))

	if rr := postSignIn(mux, `{"userName":"a"}`); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := postSignIn(mux, `{"userName":"a","password":"b"}`); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if lim.failures != 1 || lim.resets != 1 {
		t.Fatalf("expected one failure and one reset, got %+v", lim)
	}

	lim.checkErr = goGate.ErrRateLimited
	if rr := postSignIn(mux, `{"userName":"a","password":"b"}`); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}

	lim.checkErr = errors.New("redis down")
	if rr := postSignIn(mux, `{"userName":"a","password":"b"}`); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestNewHandlerForGateWiresThrottle(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := goGate.DefaultConfig()
	cfg.Environment = goGate.EnvTest
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.SignIn.MaxAttempts = 2
	cfg.SignIn.PerIP = false
	g, err := goGate.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer g.Close()

	mux := newTestMux(NewHandlerForGate(g, nil))
	postSignIn(mux, `{"userName":"eve"}`)
	postSignIn(mux, `{"userName":"eve"}`)
	if rr := postSignIn(mux, `{"userName":"eve","password":"right"}`); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exhausting attempts, got %d", rr.Code)
	}
	if rr := postSignIn(mux, `{"userName":"bob","password":"pw"}`); rr.Code != http.StatusOK {
		t.Fatalf("other users should still sign in, got %d", rr.Code)
	}
}
