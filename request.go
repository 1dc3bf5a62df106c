package goGate

import (
	"context"
	"net/http"
)

// RequestContext is the framework-neutral view of an incoming request that
// guards operate on. Implementations must be immutable: WithPath returns a
// clone and leaves the receiver untouched. Path returns the escaped URL
// path; guards copy it into Location headers unchanged.
type RequestContext interface {
	Context() context.Context
	Path() string
	RawQuery() string
	Cookie(name string) (string, bool)
	Header(name string) string
	Device() DeviceClass
	WithPath(path string) RequestContext
}

// ResponseKind distinguishes pass-through from short-circuit responses.
type ResponseKind uint8

const (
	KindContinue ResponseKind = iota
	KindRedirect
)

func (k ResponseKind) String() string {
	if k == KindRedirect {
		return "redirect"
	}
	return "continue"
}

// Response is the outcome of a pipeline stage. A redirect is terminal; a
// continue response may carry cookies and headers for the downstream
// handler's response.
type Response struct {
	Kind     ResponseKind
	Location string
	Status   int
	Cookies  []*http.Cookie
	Header   http.Header
}

// Continue returns a fresh pass-through response.
func Continue() *Response {
	return &Response{Kind: KindContinue, Header: http.Header{}}
}

// Redirect returns a fresh 307 redirect to location.
func Redirect(location string) *Response {
	return &Response{
		Kind:     KindRedirect,
		Location: location,
		Status:   http.StatusTemporaryRedirect,
		Header:   http.Header{},
	}
}

// IsRedirect reports whether r short-circuits the pipeline.
func (r *Response) IsRedirect() bool {
	return r != nil && r.Kind == KindRedirect
}

// SetCookie records c, replacing any earlier cookie with the same name.
func (r *Response) SetCookie(c *http.Cookie) {
	for i, existing := range r.Cookies {
		if existing.Name == c.Name {
			r.Cookies[i] = c
			return
		}
	}
	r.Cookies = append(r.Cookies, c)
}

// CookieValue returns the value of a cookie set on r.
func (r *Response) CookieValue(name string) (string, bool) {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// RedirectTo converts r into a redirect to location. Cookies and headers
// already accumulated on r are carried forward.
func (r *Response) RedirectTo(location string) *Response {
	out := Redirect(location)
	out.Cookies = append(out.Cookies, r.Cookies...)
	for k, v := range r.Header {
		out.Header[k] = append([]string(nil), v...)
	}
	return out
}

type memRequest struct {
	ctx      context.Context
	path     string
	rawQuery string
	cookies  map[string]string
	header   http.Header
	device   DeviceClass
}

// NewRequest builds an in-memory RequestContext. The maps are copied.
func NewRequest(ctx context.Context, path, rawQuery string, cookies map[string]string, header http.Header, device DeviceClass) RequestContext {
	if ctx == nil {
		ctx = context.Background()
	}
	cp := make(map[string]string, len(cookies))
	for k, v := range cookies {
		cp[k] = v
	}
	return &memRequest{
		ctx:      ctx,
		path:     ensureLeadingSlash(path),
		rawQuery: rawQuery,
		cookies:  cp,
		header:   header.Clone(),
		device:   device,
	}
}

func (m *memRequest) Context() context.Context { return m.ctx }
func (m *memRequest) Path() string             { return m.path }
func (m *memRequest) RawQuery() string         { return m.rawQuery }
func (m *memRequest) Device() DeviceClass      { return m.device }

func (m *memRequest) Cookie(name string) (string, bool) {
	v, ok := m.cookies[name]
	return v, ok
}

func (m *memRequest) Header(name string) string {
	return m.header.Get(name)
}

func (m *memRequest) WithPath(path string) RequestContext {
	clone := *m
	clone.path = ensureLeadingSlash(path)
	return &clone
}

func withQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
