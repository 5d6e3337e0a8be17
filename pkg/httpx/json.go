package httpx

import (
	"encoding/json"
	"net/http"
)

// Ack is the response body shared by every bridge endpoint. The browser
// extension only inspects ok/skipped/error, so failures are carried in the
// body rather than the HTTP status.
type Ack struct {
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func WriteAck(w http.ResponseWriter, ack Ack) {
	WriteJSON(w, http.StatusOK, ack)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Ack{OK: false, Error: message})
}
