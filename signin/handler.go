package signin

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 16

// Store is the session registry used for revocation. session.Store satisfies it.
type Store interface {
	Save(ctx context.Context, sess *session.Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// Limiter throttles failed sign-ins. goGate.SignInLimiter satisfies it.
type Limiter interface {
	Check(ctx context.Context, userName, ip string) error
	RecordFailure(ctx context.Context, userName, ip string) error
	Reset(ctx context.Context, userName string) error
}

// Options configures cookies and redirect targets.
type Options struct {
	SessionCookie string
	LocaleCookie  string
	HomePath      string
	LoginPath     string
	Secure        bool
}

func (o Options) withDefaults() Options {
	if o.SessionCookie == "" {
		o.SessionCookie = goGate.DefaultSessionCookie
	}
	if o.LocaleCookie == "" {
		o.LocaleCookie = goGate.DefaultLocaleCookie
	}
	if o.HomePath == "" {
		o.HomePath = "/home"
	}
	if o.LoginPath == "" {
		o.LoginPath = "/login"
	}
	return o
}

// Handler serves the /api/auth endpoints.
type Handler struct {
	verifier Verifier
	tokens   *jwt.Manager
	store    Store
	limiter  Limiter
	opts     Options
	logger   *zap.Logger
}

// NewHandler builds a Handler. store and logger may be nil.
func NewHandler(verifier Verifier, tokens *jwt.Manager, store Store, opts Options, logger *zap.Logger) *Handler {
	if verifier == nil {
		verifier = StubVerifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		verifier: verifier,
		tokens:   tokens,
		store:    store,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// WithLimiter enables sign-in throttling.
func (h *Handler) WithLimiter(l Limiter) *Handler {
	h.limiter = l
	return h
}

// NewHandlerForGate wires a Handler to g's token manager, session registry,
// sign-in throttle and cookie configuration.
func NewHandlerForGate(g *goGate.Gate, verifier Verifier) *Handler {
	cfg := g.Config()
	var store Store
	if s := g.Sessions(); s != nil {
		store = s
	}
	h := NewHandler(verifier, g.Tokens(), store, Options{
		SessionCookie: cfg.Session.CookieName,
		LocaleCookie:  cfg.Locale.CookieName,
		HomePath:      cfg.Auth.HomePath,
		LoginPath:     cfg.Auth.LoginPath,
		Secure:        cfg.SecureCookies(),
	}, g.Logger())
	if l := g.SignInLimiter(); l != nil {
		h.limiter = l
	}
	return h
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signin", h.SignIn)
	mux.HandleFunc("POST /api/auth/signout", h.SignOut)
	mux.HandleFunc("GET /api/auth/session", h.Session)
}

type signInRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
	Locale   string `json:"locale"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	User    User      `json:"user"`
	Expires time.Time `json:"expires"`
}

// SignIn verifies credentials, sets the session cookie and answers with the
// localized home path.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSignIn(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request"})
		return
	}
	locale := h.locale(r, req.Locale)
	ip := clientIP(r)

	if h.limiter != nil {
		if err := h.limiter.Check(r.Context(), req.UserName, ip); err != nil {
			h.writeLimiterError(w, err)
			return
		}
	}

	user, err := h.verifier.Verify(r.Context(), req.UserName, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			h.logger.Warn("signin: verifier failed", zap.Error(err))
		}
		if h.limiter != nil {
			if lerr := h.limiter.RecordFailure(r.Context(), req.UserName, ip); lerr != nil && !errors.Is(lerr, goGate.ErrRateLimited) {
				h.logger.Warn("signin: recording failure", zap.Error(lerr))
			}
		}
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrInvalidCredentials.Error()})
		return
	}
	if h.limiter != nil {
		if err := h.limiter.Reset(r.Context(), req.UserName); err != nil {
			h.logger.Warn("signin: resetting attempts", zap.Error(err))
		}
	}

	if h.tokens == nil {
		h.logger.Error("signin: no token manager configured")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	sid := uuid.NewString()
	token, err := h.tokens.CreateSession(user.ID, sid, user.UserName)
	if err != nil {
		h.logger.Error("signin: token issue failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	ttl := h.tokens.TTL()
	if h.store != nil {
		now := time.Now()
		err := h.store.Save(r.Context(), &session.Session{
			SessionID: sid,
			UserID:    user.ID,
			UserName:  user.UserName,
			Locale:    locale.String(),
			CreatedAt: now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		}, ttl)
		if err != nil {
			h.logger.Error("signin: session save failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "session backend unavailable"})
			return
		}
	}

	http.SetCookie(w, h.sessionCookie(token, ttl))
	h.logger.Info("signin: session issued", zap.String("user_id", user.ID), zap.String("sid", sid))
	writeJSON(w, http.StatusOK, redirectResponse{Redirect: "/" + locale.String() + h.opts.HomePath})
}

// SignOut revokes the current session if any, clears the cookie and answers
// with the localized sign-in path. It succeeds without a session.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	locale := h.locale(r, "")

	if c, err := r.Cookie(h.opts.SessionCookie); err == nil && c.Value != "" && h.tokens != nil && h.store != nil {
		if claims, err := h.tokens.ParseSession(c.Value); err == nil {
			if err := h.store.Delete(r.Context(), claims.SID); err != nil {
				h.logger.Error("signout: session delete failed", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "session backend unavailable"})
				return
			}
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, redirectResponse{Redirect: "/" + locale.String() + h.opts.LoginPath})
}

// Session reports the signed-in user or 401.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(h.opts.SessionCookie)
	if err != nil || c.Value == "" || h.tokens == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	claims, err := h.tokens.ParseSession(c.Value)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	resp := sessionResponse{User: User{ID: claims.UID, UserName: claims.UserName}}
	if claims.ExpiresAt != nil {
		resp.Expires = claims.ExpiresAt.Time.UTC()
	}
	if h.store != nil {
		if _, err := h.store.Get(r.Context(), claims.SID); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
				return
			}
			h.logger.Error("session: lookup failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "session backend unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeLimiterError(w http.ResponseWriter, err error) {
	if errors.Is(err, goGate.ErrRateLimited) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many sign-in attempts"})
		return
	}
	h.logger.Error("signin: throttle check failed", zap.Error(err))
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "session backend unavailable"})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) locale(r *http.Request, requested string) goGate.Locale {
	if l, ok := goGate.ParseLocale(requested); ok {
		return l
	}
	if c, err := r.Cookie(h.opts.LocaleCookie); err == nil {
		return goGate.ResolveLocale(c.Value, true, "")
	}
	return goGate.DefaultLocale
}

func (h *Handler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     h.opts.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(ttl / time.Second)
	}
	return c
}

func decodeSignIn(w http.ResponseWriter, r *http.Request) (signInRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req signInRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.UserName = r.PostForm.Get("userName")
	req.Password = r.PostForm.Get("password")
	req.Locale = r.PostForm.Get("locale")
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
