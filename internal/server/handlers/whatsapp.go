package handlers

import (
	"net/http"

	"github.com/lightspeedtech/lightspeed/internal/whatsapp"
)

// WhatsAppHandler serves GET /api/whatsapp?path=...&whatsapp_msg=...
type WhatsAppHandler struct {
	Resolver whatsapp.Resolver
}

func (h *WhatsAppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		path = "/"
	}
	writeJSON(w, http.StatusOK, h.Resolver.Resolve(path, q.Get("whatsapp_msg")))
}
