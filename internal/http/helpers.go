package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// apiError is the JSON body of failed API calls. Line is set for
// malformed expense lines.
type apiError struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
}

// sanitizeInput removes control characters other than tab and line breaks.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// render executes a named template into a buffer so a failure never leaves
// a half-written page behind.
func (s *Server) render(name string, data any) (string, error) {
	if s.templates == nil {
		return "", errTemplatesUnavailable
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writePartial renders a partial and sends it with the builder's triggers.
func (s *Server) writePartial(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	html, err := s.render(name, data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Template render failed", "template", name, "error", err)
		InternalServerError("Erro ao montar a página").Write(w)
		return
	}
	b.BodyHTML(html).Write(w)
}
