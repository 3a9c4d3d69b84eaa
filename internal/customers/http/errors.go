package http

import (
	"net/http"

	"github.com/aussiebroadwan/customers/pkg/errx"
	"github.com/aussiebroadwan/customers/pkg/httpx"
	"github.com/aussiebroadwan/customers/pkg/slogx"
)

// writeError is the single exit point for failed requests.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())
	resp := httpx.WriteError(w, r, err)

	switch kind := errx.KindOf(err); kind {
	case errx.KindUnclassified:
		log.Error("request failed", "err", err)
	case errx.KindAuthenticationFailed, errx.KindRefreshFailed:
		log.Warn("request failed", "kind", kind.String(), "err", err)
	default:
		log.Info("request rejected", "kind", kind.String(), "msg", resp.Message)
	}
}
