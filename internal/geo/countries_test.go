package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var denylisted = []string{
	"CN", "RU", "IR", "KP", "SA", "SY", "BY", "CU", "VE",
	"MM", "TM", "TJ", "EG", "AE", "QA", "BH", "OM",
}

func TestAuthoritarianCountries_Members(t *testing.T) {
	require.Equal(t, len(denylisted), AuthoritarianCountries.Len())

	for _, code := range denylisted {
		t.Run(code, func(t *testing.T) {
			g := AuthoritarianCountries.Classify(Location{Country: "Somewhere", CountryCode: code})
			assert.True(t, g.IsAuthoritarian())
			assert.Equal(t, code, g.CountryCode())
		})
	}
}

func TestAuthoritarianCountries_NonMembers(t *testing.T) {
	for _, code := range []string{"US", "GB", "DE", "FR", "JP", "IN", "BR", "TW", "UA", "XX", "IL", "TR"} {
		t.Run(code, func(t *testing.T) {
			g := AuthoritarianCountries.Classify(Location{Country: "Somewhere", CountryCode: code})
			assert.False(t, g.IsAuthoritarian())
		})
	}
}

func TestClassify_UsesCodeNotName(t *testing.T) {
	g := AuthoritarianCountries.Classify(Location{Country: "China", CountryCode: "US"})
	assert.False(t, g.IsAuthoritarian())

	g = AuthoritarianCountries.Classify(Location{Country: "United States", CountryCode: "cn"})
	assert.True(t, g.IsAuthoritarian())
	assert.Equal(t, "CN", g.CountryCode())
}

func TestClassify_Defaults(t *testing.T) {
	g := AuthoritarianCountries.Classify(Location{})

	assert.Equal(t, UnknownCountry, g.Country())
	assert.Equal(t, UnknownCountryCode, g.CountryCode())
	assert.Empty(t, g.City())
	assert.Empty(t, g.Region())
	assert.Empty(t, g.Timezone())
	assert.False(t, g.IsAuthoritarian())
	assert.False(t, g.Resolved())
}

func TestCountrySet_Codes(t *testing.T) {
	s := NewCountrySet(" ru", "CN", "", "cn")

	assert.Equal(t, []string{"CN", "RU"}, s.Codes())
	assert.True(t, s.Contains("ru"))
	assert.False(t, s.Contains(""))

	codes := s.Codes()
	codes[0] = "US"
	assert.False(t, s.Contains("US"), "Codes must return a copy")
}

func TestCountrySet_ZeroValue(t *testing.T) {
	var s CountrySet
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("CN"))
	assert.False(t, s.Classify(Location{CountryCode: "CN"}).IsAuthoritarian())
}

func TestGeoData_MarshalJSON(t *testing.T) {
	g := AuthoritarianCountries.Classify(Location{
		Country:     "Russia",
		CountryCode: "RU",
		City:        "Moscow",
		Timezone:    "Europe/Moscow",
	})

	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"country": "Russia",
		"country_code": "RU",
		"city": "Moscow",
		"timezone": "Europe/Moscow",
		"is_authoritarian": true
	}`, string(b))
}
