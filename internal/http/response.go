package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/self-checkout/internal/apperr"
)

// writeJSON encodes v before touching w, so a failed encode leaves the response unwritten.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is sent; a failed write can no longer be turned into an error response.
	_, _ = buf.WriteTo(w)
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return requestErr(err)
	}
	return nil
}

// requestErr reports a malformed request as a validation failure.
func requestErr(err error) error {
	return apperr.ValidationErr.WithMsg(fmt.Sprintf("invalid request: %s", err)).WrapParent(err)
}
