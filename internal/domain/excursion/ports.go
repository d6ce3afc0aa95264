package excursion

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// ---------------------------------------------------------------------------
// Supply transport port
// ---------------------------------------------------------------------------

// SupplyRequest is one call to the supply API. Body is JSON-encoded when set.
type SupplyRequest struct {
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Locale    Locale
}

// SupplyResponse is a 2xx response from the supply API
type SupplyResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// SupplyTransport sends authenticated requests to the supply API.
// Implementations never retry: non-2xx responses return *UpstreamError,
// transport failures return *NetworkError and missing credentials return
// *ConfigurationError without attempting the request.
type SupplyTransport interface {
	Send(ctx context.Context, req *SupplyRequest) (*SupplyResponse, error)
	// Configured reports whether credentials are present for the active environment
	Configured() bool
}

// ---------------------------------------------------------------------------
// Lookup cache port
// ---------------------------------------------------------------------------

// LookupCache caches read-only catalog payloads by key.
// Get returns (nil, false, nil) on a miss.
type LookupCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
