package middleware

import (
	"context"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// httpRequest is the read-only pipeline view of an *http.Request.
type httpRequest struct {
	r      *http.Request
	path   string
	device goGate.DeviceClass
}

// NewRequestContext wraps r for the guard pipeline. The device class is
// derived from the User-Agent header once. Path is the escaped form so
// redirect targets built from it keep encoded reserved characters.
func NewRequestContext(r *http.Request) goGate.RequestContext {
	return &httpRequest{
		r:      r,
		path:   r.URL.EscapedPath(),
		device: goGate.ClassifyUserAgent(r.UserAgent()),
	}
}

func (h *httpRequest) Context() context.Context { return h.r.Context() }

func (h *httpRequest) Path() string { return h.path }

func (h *httpRequest) RawQuery() string { return h.r.URL.RawQuery }

func (h *httpRequest) Cookie(name string) (string, bool) {
	c, err := h.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (h *httpRequest) Header(name string) string { return h.r.Header.Get(name) }

func (h *httpRequest) Device() goGate.DeviceClass { return h.device }

func (h *httpRequest) WithPath(path string) goGate.RequestContext {
	clone := *h
	clone.path = path
	return &clone
}
