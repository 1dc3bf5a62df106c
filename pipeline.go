package goGate

// Handler evaluates one request and returns either a continue or a redirect
// response. An error means the request could not be resolved and should be
// surfaced by the hosting runtime's default error handling.
type Handler func(rc RequestContext) (*Response, error)

// Middleware wraps the remainder of the chain.
type Middleware func(next Handler) Handler

// Terminal is the innermost handler: a plain pass-through.
func Terminal(RequestContext) (*Response, error) {
	return Continue(), nil
}

// Chain composes mws into a single Handler. Composition is a right fold:
// the last middleware wraps Terminal first, so at request time the
// middlewares run in declaration order. Nil entries are skipped.
//
//	Chain(auth, device, locale) == auth(device(locale(Terminal)))
func Chain(mws ...Middleware) Handler {
	var h Handler = Terminal
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		h = mws[i](h)
	}
	return h
}
