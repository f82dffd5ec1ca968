package data

import "net"

// Country is an offline lookup result. Code is empty when the database has
// no entry for the address.
type Country struct {
	Code string
	Name string
}

// CountryLookup defines the interface for IP-to-country lookups.
type CountryLookup interface {
	// LookupCountry returns the country for the given IP address.
	LookupCountry(ip net.IP) (Country, error)

	// Close releases any resources held by the lookup implementation.
	Close() error
}
