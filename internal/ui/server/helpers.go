package server

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// failure is the success:false envelope shared by the backend endpoints.
type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failure{Success: false, Message: message})
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return isJSONRequest(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("render", "execute template", err, map[string]any{"template": name})
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
