package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		key         string
		want        string
		wantJSON    bool
	}{
		{
			name:        "form value",
			contentType: "application/x-www-form-urlencoded",
			body:        "salary=3000&expenses=rent%3A+1200%0Afood%3A+300",
			key:         "expenses",
			want:        "rent: 1200\nfood: 300",
		},
		{
			name:        "json string",
			contentType: "application/json",
			body:        `{"salary": "2500.50", "expenses": "a: 1"}`,
			key:         "salary",
			want:        "2500.50",
			wantJSON:    true,
		},
		{
			name:        "json number keeps its digits",
			contentType: "application/json",
			body:        `{"salary": 1234.10}`,
			key:         "salary",
			want:        "1234.10",
			wantJSON:    true,
		},
		{
			name:        "json without content type",
			contentType: "",
			body:        `  {"salary": 10}`,
			key:         "salary",
			want:        "10",
			wantJSON:    true,
		},
		{
			name:        "control characters are removed",
			contentType: "application/x-www-form-urlencoded",
			body:        "name=Ana%00Lu%07",
			key:         "name",
			want:        "AnaLu",
		},
		{
			name:        "missing key",
			contentType: "application/json",
			body:        `{"other": 1}`,
			key:         "salary",
			want:        "",
			wantJSON:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"salary": `))
	req.Header.Set("Content-Type", "application/json")
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected an error for truncated JSON")
	}
	// Parse is memoized.
	if err := p.Parse(); err == nil {
		t.Fatal("second Parse should return the same error")
	}

	big := strings.Repeat("a", maxBodyBytes+10)
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("expenses="+big))
	p = NewRequestBodyParser(req)
	if err := p.Parse(); err != ErrBodyTooLarge {
		t.Fatalf("Parse() = %v, want ErrBodyTooLarge", err)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Get("salary") != "" {
		t.Fatal("expected empty value")
	}
}
