package providers

import (
	"context"
	"errors"
	"strings"

	"waitlist-edge/fault"
	"waitlist-edge/location"
)

const DefaultIPLookupURL = "http://ip-api.com/json/"

// IPLookup consulta um endpoint no formato ip-api.com.
// O IP vem de location.WithClientIP; sem ele, o endpoint resolve o IP de quem chama.
type IPLookup struct {
	Client  JSONGetter
	BaseURL string
}

type ipLookupResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	RegionName  string   `json:"regionName"`
	City        string   `json:"city"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Timezone    string   `json:"timezone"`
}

func (p *IPLookup) Name() string              { return "ip-lookup" }
func (p *IPLookup) Tier() location.Provenance { return location.ProvenanceNetwork }

func (p *IPLookup) Locate(ctx context.Context) (location.Record, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultIPLookupURL
	}
	target := base
	if ip, ok := location.ClientIP(ctx); ok {
		target = strings.TrimRight(base, "/") + "/" + ip.String()
	}

	var resp ipLookupResponse
	if err := p.Client.GetJSON(ctx, p.Name(), target, &resp); err != nil {
		return location.Record{}, err
	}
	if resp.Status != "" && resp.Status != "success" {
		return location.Record{}, fault.New(fault.MalformedResponse, p.Name(), errors.New("lookup failed: "+resp.Message))
	}

	return location.Record{
		Country:     resp.Country,
		Region:      resp.RegionName,
		City:        resp.City,
		CountryCode: resp.CountryCode,
		Latitude:    resp.Lat,
		Longitude:   resp.Lon,
		Timezone:    resp.Timezone,
	}, nil
}
