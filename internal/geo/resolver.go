package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTimeout bounds each provider call.
const DefaultTimeout = 3 * time.Second

// Resolution sources reported to an Observer.
const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
	SourceFallback  = "fallback"
)

// Observer receives provider attempt outcomes. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveLookup(provider, outcome string, elapsed time.Duration)
	ObserveResolution(source string)
}

type noopObserver struct{}

func (noopObserver) ObserveLookup(string, string, time.Duration) {}
func (noopObserver) ObserveResolution(string)                     {}

// Resolver locates visitors through a fixed chain: ipapi.co, then
// ip-api.com, then the local time zone. It never returns an error.
type Resolver struct {
	primary   provider
	secondary provider
	timeout   time.Duration
	countries CountrySet
	localTZ   func() (string, bool)
	observer  Observer
	clock     clockwork.Clock
}

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	client       *http.Client
	primaryURL   string
	secondaryURL string
	timeout      time.Duration
	countries    *CountrySet
	localTZ      func() (string, bool)
	observer     Observer
	clock        clockwork.Clock
}

// WithHTTPClient sets the client used for both providers.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *resolverConfig) { cfg.client = c }
}

// WithPrimaryURL overrides the ipapi.co base URL.
func WithPrimaryURL(u string) Option {
	return func(cfg *resolverConfig) { cfg.primaryURL = u }
}

// WithSecondaryURL overrides the ip-api.com base URL.
func WithSecondaryURL(u string) Option {
	return func(cfg *resolverConfig) { cfg.secondaryURL = u }
}

// WithTimeout sets the per-provider deadline. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(cfg *resolverConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithCountrySet replaces the denylist used for classification.
func WithCountrySet(s CountrySet) Option {
	return func(cfg *resolverConfig) { cfg.countries = &s }
}

// WithLocalTimezone replaces the local time zone source used by the final
// fallback.
func WithLocalTimezone(fn func() (string, bool)) Option {
	return func(cfg *resolverConfig) { cfg.localTZ = fn }
}

// WithObserver attaches an Observer for provider outcomes.
func WithObserver(o Observer) Option {
	return func(cfg *resolverConfig) { cfg.observer = o }
}

// WithClock sets the clock used to time provider calls.
func WithClock(c clockwork.Clock) Option {
	return func(cfg *resolverConfig) { cfg.clock = c }
}

// NewResolver creates a Resolver with the production providers and the
// authoritarian denylist unless overridden.
func NewResolver(opts ...Option) *Resolver {
	cfg := resolverConfig{
		client:       &http.Client{},
		primaryURL:   DefaultPrimaryURL,
		secondaryURL: DefaultSecondaryURL,
		timeout:      DefaultTimeout,
		localTZ:      LocalTimezone,
		observer:     noopObserver{},
		clock:        clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	countries := AuthoritarianCountries
	if cfg.countries != nil {
		countries = *cfg.countries
	}
	if cfg.observer == nil {
		cfg.observer = noopObserver{}
	}

	return &Resolver{
		primary:   &ipapiProvider{baseURL: cfg.primaryURL, client: cfg.client},
		secondary: &ipAPIProvider{baseURL: cfg.secondaryURL, client: cfg.client},
		timeout:   cfg.timeout,
		countries: countries,
		localTZ:   cfg.localTZ,
		observer:  cfg.observer,
		clock:     cfg.clock,
	}
}

// Resolve locates the host making the provider requests.
func (r *Resolver) Resolve(ctx context.Context) GeoData {
	return r.resolve(ctx, "")
}

// ResolveIP locates the given address. Addresses that are unparseable or not
// publicly routable are resolved as the host itself, like Resolve.
func (r *Resolver) ResolveIP(ctx context.Context, ip string) GeoData {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return r.resolve(ctx, "")
	}
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return r.resolve(ctx, "")
	}
	return r.resolve(ctx, addr.String())
}

func (r *Resolver) resolve(ctx context.Context, ip string) GeoData {
	if loc, err := r.attempt(ctx, r.primary, ip); err == nil {
		r.observer.ObserveResolution(SourcePrimary)
		return r.countries.Classify(loc)
	}

	if loc, err := r.attempt(ctx, r.secondary, ip); err == nil {
		r.observer.ObserveResolution(SourceSecondary)
		return r.countries.Classify(loc)
	}

	r.observer.ObserveResolution(SourceFallback)
	return r.fallback()
}

// attempt runs one provider under its own deadline. A panic inside the
// provider is reported as a malformed response.
func (r *Resolver) attempt(ctx context.Context, p provider, ip string) (loc Location, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := r.clock.Now()
	defer func() {
		if rec := recover(); rec != nil {
			loc, err = Location{}, fmt.Errorf("%w: %v", ErrMalformed, rec)
		}
		r.observer.ObserveLookup(p.name(), outcomeOf(err), r.clock.Since(start))
	}()

	return p.lookup(ctx, ip)
}

func (r *Resolver) fallback() GeoData {
	var tz string
	if r.localTZ != nil {
		if name, ok := r.localTZ(); ok {
			tz = name
		}
	}
	return r.countries.Classify(Location{Timezone: tz})
}
