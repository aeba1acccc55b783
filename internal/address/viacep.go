package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"financas/internal/core"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 64 << 10

// viaCEPResponse is the JSON payload of GET /ws/{cep}/json/.
// Unknown codes come back as {"erro": true} (or "true" on newer versions).
type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro"`
}

// Client talks to a ViaCEP-compatible service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL (e.g. "https://viacep.com.br").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup implements Lookuper. The postal code is sent as typed (trimmed);
// the service decides what is valid. A 400 answer is how ViaCEP rejects a
// malformed code, so it is reported as not found like the error marker.
func (c *Client) Lookup(ctx context.Context, postalCode string) (core.Address, error) {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return core.Address{}, core.ErrAddressNotFound
	}

	endpoint := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, url.PathEscape(postalCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return core.Address{}, &LookupError{PostalCode: postalCode, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Address{}, &LookupError{PostalCode: postalCode, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return core.Address{}, core.ErrAddressNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return core.Address{}, &LookupError{
			PostalCode: postalCode,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	var body viaCEPResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return core.Address{}, &LookupError{
			PostalCode: postalCode,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	if body.Erro != nil {
		return core.Address{}, core.ErrAddressNotFound
	}

	return core.Address{
		PostalCode: core.NormalizePostalCode(firstNonEmpty(body.CEP, postalCode)),
		Street:     body.Logradouro,
		District:   body.Bairro,
		City:       body.Localidade,
		Region:     body.UF,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
