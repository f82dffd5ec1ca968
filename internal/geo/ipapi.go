package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultPrimaryURL is the base URL of the ipapi.co service.
const DefaultPrimaryURL = "https://ipapi.co"

// undefinedCode is what ipapi.co puts in country_code when it cannot place
// an address.
const undefinedCode = "undefined"

// ipapiProvider queries ipapi.co over HTTPS.
type ipapiProvider struct {
	baseURL string
	client  *http.Client
}

type ipapiResponse struct {
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Timezone    string `json:"timezone"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

func (p *ipapiProvider) name() string { return "ipapi" }

func (p *ipapiProvider) lookup(ctx context.Context, ip string) (Location, error) {
	u := strings.TrimRight(p.baseURL, "/") + "/json/"
	if ip != "" {
		u = strings.TrimRight(p.baseURL, "/") + "/" + url.PathEscape(ip) + "/json/"
	}

	var resp ipapiResponse
	if err := getJSON(ctx, p.client, u, &resp); err != nil {
		return Location{}, err
	}

	code := strings.TrimSpace(resp.CountryCode)
	if resp.Error || code == "" || strings.EqualFold(code, undefinedCode) {
		if resp.Reason != "" {
			return Location{}, fmt.Errorf("%w: %s", ErrUnresolved, resp.Reason)
		}
		return Location{}, ErrUnresolved
	}

	return Location{
		Country:     resp.CountryName,
		CountryCode: code,
		City:        resp.City,
		Region:      resp.Region,
		Timezone:    resp.Timezone,
	}, nil
}
