package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/matheus3301/wppbridge/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps the error taxonomy onto the control surface contract:
// validation errors are the caller's fault (400), everything else is a
// backend failure (500). Every body carries ok:false plus the message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if apperr.IsValidation(err) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{"ok": false, "error": err.Error()})
}
