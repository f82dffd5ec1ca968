package geo

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// DefaultSecondaryURL is the base URL of the ip-api.com service. Its free
// tier is plain HTTP only.
const DefaultSecondaryURL = "http://ip-api.com"

const ipAPIFields = "country,countryCode,city,regionName,timezone"

// ipAPIProvider queries ip-api.com.
type ipAPIProvider struct {
	baseURL string
	client  *http.Client
}

type ipAPIResponse struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
	RegionName  string `json:"regionName"`
	Timezone    string `json:"timezone"`
}

func (p *ipAPIProvider) name() string { return "ip-api" }

// lookup accepts any 2xx body as-is. Missing fields are left for Classify to
// default; there is no unresolved check here.
func (p *ipAPIProvider) lookup(ctx context.Context, ip string) (Location, error) {
	u := strings.TrimRight(p.baseURL, "/") + "/json/"
	if ip != "" {
		u += url.PathEscape(ip)
	}
	u += "?fields=" + ipAPIFields

	var resp ipAPIResponse
	if err := getJSON(ctx, p.client, u, &resp); err != nil {
		return Location{}, err
	}

	return Location{
		Country:     resp.Country,
		CountryCode: resp.CountryCode,
		City:        resp.City,
		Region:      resp.RegionName,
		Timezone:    resp.Timezone,
	}, nil
}
