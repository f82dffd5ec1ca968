package data

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MmdbReader implements CountryLookup using a MaxMind GeoLite2/GeoIP2
// Country or City database.
type MmdbReader struct {
	db *geoip2.Reader
}

// NewMmdbReader opens the MMDB file at the given path.
func NewMmdbReader(path string) (*MmdbReader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb %s: %w", path, err)
	}
	return &MmdbReader{db: db}, nil
}

// OpenMmdb opens path as a CountryLookup. It matches the Opener signature.
func OpenMmdb(path string) (CountryLookup, error) {
	return NewMmdbReader(path)
}

func (r *MmdbReader) LookupCountry(ip net.IP) (Country, error) {
	record, err := r.db.Country(ip)
	if err != nil {
		return Country{}, fmt.Errorf("country lookup: %w", err)
	}
	return Country{
		Code: record.Country.IsoCode,
		Name: record.Country.Names["en"],
	}, nil
}

func (r *MmdbReader) Close() error {
	return r.db.Close()
}
