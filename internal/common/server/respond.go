package server

import (
	"encoding/json"
	"net/http"
)

// WriteJSON serializes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the {success:false, message} failure shape.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// WriteSuccess writes {success:true, message} plus any extra fields.
func WriteSuccess(w http.ResponseWriter, message string, extra map[string]any) {
	body := map[string]any{
		"success": true,
	}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	WriteJSON(w, http.StatusOK, body)
}
