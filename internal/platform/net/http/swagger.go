package http

import (
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"
)

// MountSwagger mounts the swagger UI at base and serves doc as base/doc.json, if enabled by caller
func MountSwagger(r Router, base string, enabled bool, doc http.HandlerFunc) {
	if !enabled {
		return
	}
	base = "/" + strings.Trim(base, "/")
	r.Get(base, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, base+"/", http.StatusPermanentRedirect)
	})
	r.Get(base+"/doc.json", doc)
	r.Handle(base+"/*", httpSwagger.Handler(httpSwagger.URL(base+"/doc.json")))
}
