package providers

import (
	"context"
	"errors"
	"net"

	"waitlist-edge/fault"
	"waitlist-edge/location"

	"github.com/oschwald/geoip2-golang"
)

// CityReader é o pedaço do *geoip2.Reader usado aqui.
type CityReader interface {
	City(ip net.IP) (*geoip2.City, error)
}

// GeoIP resolve o IP do cliente numa base MaxMind local (GeoLite2-City).
// Não depende de rede; entra depois do lookup HTTP.
type GeoIP struct {
	Reader CityReader
}

// OpenGeoIP abre a base .mmdb. O chamador fecha com o cleanup devolvido.
func OpenGeoIP(path string) (*GeoIP, func(), error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return &GeoIP{Reader: db}, func() { _ = db.Close() }, nil
}

func (p *GeoIP) Name() string              { return "geoip" }
func (p *GeoIP) Tier() location.Provenance { return location.ProvenanceNetwork }

func (p *GeoIP) Locate(ctx context.Context) (location.Record, error) {
	ip, ok := location.ClientIP(ctx)
	if !ok {
		return location.Record{}, fault.New(fault.MalformedResponse, p.Name(), errors.New("no client ip in context"))
	}
	if p.Reader == nil {
		return location.Record{}, fault.New(fault.NetworkUnavailable, p.Name(), errors.New("geoip database not loaded"))
	}

	city, err := p.Reader.City(ip)
	if err != nil {
		return location.Record{}, fault.New(fault.MalformedResponse, p.Name(), err)
	}

	rec := location.Record{
		Country:     city.Country.Names["en"],
		City:        city.City.Names["en"],
		CountryCode: city.Country.IsoCode,
		Timezone:    city.Location.TimeZone,
	}
	if len(city.Subdivisions) > 0 {
		rec.Region = city.Subdivisions[0].Names["en"]
	}
	if city.Location.Latitude != 0 || city.Location.Longitude != 0 {
		rec.Latitude = location.Float(city.Location.Latitude)
		rec.Longitude = location.Float(city.Location.Longitude)
	}
	return rec, nil
}
