// Package httpkit is what modules register routes with; it re-exports the
// platform router so a module never imports platform/net/http itself
package httpkit

import (
	"net/http"

	phttp "expiryai/internal/platform/net/http"
)

type (
	Router   = phttp.Router
	Handler  = phttp.Handler
	Envelope = phttp.Envelope
)

// Get registers a read endpoint whose result is enveloped
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// Call adapts (value, error) handlers; an error maps to its status, a Response passes through
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) phttp.Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(phttp.Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// List is phttp.List for handlers returning a page of rows
func List[T any](items []T, limit int) phttp.Response { return phttp.List(items, limit) }

func URLParam(r *http.Request, name string) string { return phttp.URLParam(r, name) }
