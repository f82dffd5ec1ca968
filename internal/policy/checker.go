package policy

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/howdoihelp/howdoihelp/internal/data"
	"github.com/howdoihelp/howdoihelp/internal/geo"
)

var (
	// ErrInvalidIP is returned for addresses that do not parse.
	ErrInvalidIP = errors.New("invalid IP address")
	// ErrUnavailable is returned when no offline database is configured.
	ErrUnavailable = errors.New("policy database not configured")
)

// Checker classifies addresses against a country denylist using an offline
// country database.
type Checker struct {
	lookup    data.CountryLookup
	countries geo.CountrySet
}

// NewChecker returns a Checker. A nil lookup makes every check fail with
// ErrUnavailable.
func NewChecker(lookup data.CountryLookup, countries geo.CountrySet) *Checker {
	return &Checker{lookup: lookup, countries: countries}
}

// Check looks up ip and classifies the result. Addresses the database has no
// entry for classify as the unknown country.
func (c *Checker) Check(ip string) (geo.GeoData, error) {
	if c.lookup == nil {
		return geo.GeoData{}, ErrUnavailable
	}

	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return geo.GeoData{}, ErrInvalidIP
	}

	country, err := c.lookup.LookupCountry(parsed)
	if err != nil {
		return geo.GeoData{}, fmt.Errorf("lookup %s: %w", ip, err)
	}

	return c.countries.Classify(geo.Location{
		Country:     country.Name,
		CountryCode: country.Code,
	}), nil
}
