package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Lookup failure classes. Every failure a provider reports wraps one of these.
var (
	ErrNetwork    = errors.New("network failure")
	ErrTimeout    = errors.New("timeout")
	ErrMalformed  = errors.New("malformed response")
	ErrUnresolved = errors.New("unresolved location")
)

// Outcome labels reported to an Observer.
const (
	OutcomeSuccess    = "success"
	OutcomeNetwork    = "network"
	OutcomeTimeout    = "timeout"
	OutcomeMalformed  = "malformed"
	OutcomeUnresolved = "unresolved"
)

const maxResponseBytes = 64 << 10

// provider is a single IP-geolocation service. An empty ip asks the
// provider to locate the caller of the request.
type provider interface {
	name() string
	lookup(ctx context.Context, ip string) (Location, error)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, ErrMalformed):
		return OutcomeMalformed
	case errors.Is(err, ErrUnresolved):
		return OutcomeUnresolved
	default:
		return OutcomeNetwork
	}
}

// getJSON issues a GET and decodes a 2xx JSON body into v.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: read body: %w", ErrTimeout, err)
		}
		return fmt.Errorf("%w: decode: %w", ErrMalformed, err)
	}
	return nil
}
