package policy

import (
	"errors"
	"net"
	"testing"

	"github.com/howdoihelp/howdoihelp/internal/data"
	"github.com/howdoihelp/howdoihelp/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	country data.Country
	err     error
	seen    net.IP
}

func (s *stubLookup) LookupCountry(ip net.IP) (data.Country, error) {
	s.seen = ip
	return s.country, s.err
}

func (s *stubLookup) Close() error { return nil }

func TestChecker_Authoritarian(t *testing.T) {
	lookup := &stubLookup{country: data.Country{Code: "RU", Name: "Russia"}}
	c := NewChecker(lookup, geo.AuthoritarianCountries)

	g, err := c.Check(" 5.255.255.5 ")
	require.NoError(t, err)

	assert.Equal(t, "Russia", g.Country())
	assert.Equal(t, "RU", g.CountryCode())
	assert.True(t, g.IsAuthoritarian())
	assert.Equal(t, "5.255.255.5", lookup.seen.String())
}

func TestChecker_NotAuthoritarian(t *testing.T) {
	c := NewChecker(&stubLookup{country: data.Country{Code: "GB", Name: "United Kingdom"}}, geo.AuthoritarianCountries)

	g, err := c.Check("2.125.160.216")
	require.NoError(t, err)
	assert.False(t, g.IsAuthoritarian())
}

func TestChecker_NoEntry(t *testing.T) {
	c := NewChecker(&stubLookup{}, geo.AuthoritarianCountries)

	g, err := c.Check("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, geo.UnknownCountryCode, g.CountryCode())
	assert.Equal(t, geo.UnknownCountry, g.Country())
	assert.False(t, g.IsAuthoritarian())
}

func TestChecker_Errors(t *testing.T) {
	_, err := NewChecker(nil, geo.AuthoritarianCountries).Check("1.2.3.4")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewChecker(&stubLookup{}, geo.AuthoritarianCountries).Check("nope")
	assert.ErrorIs(t, err, ErrInvalidIP)

	dbErr := errors.New("db failure")
	_, err = NewChecker(&stubLookup{err: dbErr}, geo.AuthoritarianCountries).Check("1.2.3.4")
	assert.ErrorIs(t, err, dbErr)
}
