package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as the response body. Bodies carry session ids and
// balances, so intermediaries are told not to store them.
func JSON(w http.ResponseWriter, status int, data any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
