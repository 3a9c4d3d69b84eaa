package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/customers/pkg/errx"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Token responses must carry these.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteText writes a plain-text response.
func WriteText(w http.ResponseWriter, code int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(s))
}

// WriteError renders err as the uniform error body for r and returns it.
func WriteError(w http.ResponseWriter, r *http.Request, err error) errx.Response {
	resp := errx.Translate(err, r.URL.Path, time.Now())
	WriteJSON(w, resp.Status, resp)
	return resp
}
