package address

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/core"
)

const seBody = `{
  "cep": "01001-000",
  "logradouro": "Praça da Sé",
  "complemento": "lado ímpar",
  "bairro": "Sé",
  "localidade": "São Paulo",
  "uf": "SP",
  "ibge": "3550308"
}`

// fakeViaCEP serves a handful of fixed answers keyed by the path segment.
func fakeViaCEP(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		code := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/ws/"), "/json/")
		w.Header().Set("Content-Type", "application/json")
		switch code {
		case "01001000", "01001-000":
			_, _ = w.Write([]byte(seBody))
		case "99999999":
			_, _ = w.Write([]byte(`{"erro": true}`))
		case "99999998":
			_, _ = w.Write([]byte(`{"erro": "true"}`))
		case "12":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`<html>Bad Request</html>`))
		case "50000000":
			w.WriteHeader(http.StatusBadGateway)
		case "garbage00":
			_, _ = w.Write([]byte(`not json`))
		case "slow0000":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(seBody))
		default:
			_, _ = w.Write([]byte(`{"erro": true}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientLookupFound(t *testing.T) {
	srv := fakeViaCEP(t, nil)
	c := NewClient(srv.URL+"/", time.Second)

	addr, err := c.Lookup(context.Background(), " 01001000 ")
	require.NoError(t, err)
	assert.Equal(t, core.Address{
		PostalCode: "01001000",
		Street:     "Praça da Sé",
		District:   "Sé",
		City:       "São Paulo",
		Region:     "SP",
	}, addr)
}

func TestClientLookupNotFound(t *testing.T) {
	srv := fakeViaCEP(t, nil)
	c := NewClient(srv.URL, time.Second)

	for _, code := range []string{"99999999", "99999998", "12", ""} {
		_, err := c.Lookup(context.Background(), code)
		assert.ErrorIs(t, err, core.ErrAddressNotFound, "code %q", code)
	}
}

func TestClientLookupFailureIsDistinct(t *testing.T) {
	srv := fakeViaCEP(t, nil)
	c := NewClient(srv.URL, time.Second)

	_, err := c.Lookup(context.Background(), "50000000")
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrAddressNotFound))
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusBadGateway, le.StatusCode)

	_, err = c.Lookup(context.Background(), "garbage00")
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "decode response")
}

func TestClientLookupTimeout(t *testing.T) {
	srv := fakeViaCEP(t, nil)
	c := NewClient(srv.URL, 50*time.Millisecond)

	_, err := c.Lookup(context.Background(), "slow0000")
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Zero(t, le.StatusCode)
}

func TestClientLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Lookup(context.Background(), "01001000")
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "01001000", le.PostalCode)
}
