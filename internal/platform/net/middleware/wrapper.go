// Package middleware wraps the chi and cors middlewares the API stack is built from,
// so modules never import chi directly
package middleware

import (
	"net/http"
	"time"

	pstrings "expiryai/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Func is one link of a middleware chain
type Func = func(http.Handler) http.Handler

// RequestID reuses an inbound X-Request-ID or mints one
func RequestID() Func { return chimw.RequestID }

func RealIP() Func { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) Func { return chimw.Timeout(d) }

// NoCache keeps read results out of client and proxy caches; every recompute changes them
func NoCache() Func { return chimw.NoCache }

// Compress gzips JSON bodies at level, e.g. flate.BestSpeed
func Compress(level int) Func {
	c := chimw.NewCompressor(level, "application/json")
	return c.Handler
}

func StripSlashes() Func { return chimw.StripSlashes }

// CORSOptions is the subset of go-chi/cors the API configures
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS allows any origin to read by default
func CORS(o CORSOptions) Func {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "HEAD", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         o.MaxAge,
	})
}
