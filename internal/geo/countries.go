package geo

import (
	"sort"
	"strings"
)

// AuthoritarianCountries is the denylist of ISO-3166 alpha-2 codes for which
// advocacy content is suppressed.
var AuthoritarianCountries = NewCountrySet(
	"CN", "RU", "IR", "KP", "SA", "SY", "BY", "CU", "VE",
	"MM", "TM", "TJ", "EG", "AE", "QA", "BH", "OM",
)

// CountrySet is a read-only set of ISO-3166 alpha-2 country codes.
// The zero value is an empty set.
type CountrySet struct {
	codes map[string]struct{}
}

// NewCountrySet builds a set from the given codes. Codes are trimmed and
// upper-cased; blanks are ignored.
func NewCountrySet(codes ...string) CountrySet {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = normalizeCode(c)
		if c == "" {
			continue
		}
		m[c] = struct{}{}
	}
	return CountrySet{codes: m}
}

// Contains reports whether code is a member of the set.
func (s CountrySet) Contains(code string) bool {
	_, ok := s.codes[normalizeCode(code)]
	return ok
}

// Len returns the number of codes in the set.
func (s CountrySet) Len() int {
	return len(s.codes)
}

// Codes returns the members in ascending order. The slice is a copy.
func (s CountrySet) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Classify builds a GeoData from a provider location, filling the unresolved
// defaults and deriving IsAuthoritarian from the country code only.
func (s CountrySet) Classify(loc Location) GeoData {
	code := normalizeCode(loc.CountryCode)
	if code == "" {
		code = UnknownCountryCode
	}
	country := strings.TrimSpace(loc.Country)
	if country == "" {
		country = UnknownCountry
	}
	return GeoData{
		country:       country,
		countryCode:   code,
		city:          strings.TrimSpace(loc.City),
		region:        strings.TrimSpace(loc.Region),
		timezone:      strings.TrimSpace(loc.Timezone),
		authoritarian: s.Contains(code),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
