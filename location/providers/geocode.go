package providers

import (
	"context"
	"net/url"
	"strconv"

	"waitlist-edge/location"
)

// JSONGetter é o que os provedores HTTP precisam do upstream.Client.
type JSONGetter interface {
	GetJSON(ctx context.Context, op, rawURL string, out any) error
}

const DefaultReverseGeocodeURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"

// HTTPGeocoder usa um endpoint de reverse geocode no formato BigDataCloud.
type HTTPGeocoder struct {
	Client  JSONGetter
	BaseURL string
}

type reverseGeocodeResponse struct {
	CountryName          string `json:"countryName"`
	CountryCode          string `json:"countryCode"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	City                 string `json:"city"`
	Locality             string `json:"locality"`
}

func (g *HTTPGeocoder) Reverse(ctx context.Context, lat, lon float64) (location.Record, error) {
	base := g.BaseURL
	if base == "" {
		base = DefaultReverseGeocodeURL
	}
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("localityLanguage", "en")

	var resp reverseGeocodeResponse
	if err := g.Client.GetJSON(ctx, "reverse-geocode", base+"?"+q.Encode(), &resp); err != nil {
		return location.Record{}, err
	}

	city := resp.City
	if city == "" {
		city = resp.Locality
	}
	return location.Record{
		Country:     resp.CountryName,
		Region:      resp.PrincipalSubdivision,
		City:        city,
		CountryCode: resp.CountryCode,
	}, nil
}
