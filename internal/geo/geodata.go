package geo

import "encoding/json"

const (
	// UnknownCountry is the country name reported when no provider resolved one.
	UnknownCountry = "Unknown"
	// UnknownCountryCode is the country code reported when no provider resolved one.
	UnknownCountryCode = "XX"
)

// Location is the raw result of a provider lookup before policy is applied.
type Location struct {
	Country     string
	CountryCode string
	City        string
	Region      string
	Timezone    string
}

// GeoData is a resolved visitor location with its derived policy flag.
// Values are produced by CountrySet.Classify and cannot be modified afterwards.
type GeoData struct {
	country       string
	countryCode   string
	city          string
	region        string
	timezone      string
	authoritarian bool
}

func (g GeoData) Country() string     { return g.country }
func (g GeoData) CountryCode() string { return g.countryCode }

// City is empty when the provider did not supply one.
func (g GeoData) City() string     { return g.city }
func (g GeoData) Region() string   { return g.region }
func (g GeoData) Timezone() string { return g.timezone }

// IsAuthoritarian reports whether CountryCode is on the denylist the value was
// classified against.
func (g GeoData) IsAuthoritarian() bool { return g.authoritarian }

// Resolved reports whether a provider supplied a country code.
func (g GeoData) Resolved() bool { return g.countryCode != UnknownCountryCode }

// View is the serialized form of GeoData.
type View struct {
	Country         string `json:"country"`
	CountryCode     string `json:"country_code"`
	City            string `json:"city,omitempty"`
	Region          string `json:"region,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
	IsAuthoritarian bool   `json:"is_authoritarian"`
}

// View returns a plain copy of the fields for encoding.
func (g GeoData) View() View {
	return View{
		Country:         g.country,
		CountryCode:     g.countryCode,
		City:            g.city,
		Region:          g.region,
		Timezone:        g.timezone,
		IsAuthoritarian: g.authoritarian,
	}
}

func (g GeoData) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.View())
}
