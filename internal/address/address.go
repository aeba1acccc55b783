// Package address resolves Brazilian postal codes (CEP) into street
// addresses through a ViaCEP-compatible HTTP API.
package address

import (
	"context"
	"fmt"

	"financas/internal/core"
)

// Lookuper resolves a postal code. Implementations return
// core.ErrAddressNotFound when the service explicitly reports an unknown
// code and a *LookupError when the service could not be asked.
type Lookuper interface {
	Lookup(ctx context.Context, postalCode string) (core.Address, error)
}

// Store is an optional persistent second level behind the in-memory cache.
type Store interface {
	GetAddress(ctx context.Context, postalCode string) (core.Address, bool, error)
	PutAddress(ctx context.Context, a core.Address) error
}

// LookupError is a transport or protocol failure, as opposed to a
// postal code the service does not know.
type LookupError struct {
	PostalCode string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("lookup postal code %s: status %d: %v", e.PostalCode, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("lookup postal code %s: %v", e.PostalCode, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
