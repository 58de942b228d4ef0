package providers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"waitlist-edge/fault"
	"waitlist-edge/location"
	"waitlist-edge/upstream"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func client() *upstream.Client {
	return upstream.New(upstream.WithHostRate(0, 0), upstream.WithTimeout(time.Second))
}

type stubGeocoder struct {
	rec location.Record
	err error
}

func (g stubGeocoder) Reverse(context.Context, float64, float64) (location.Record, error) {
	return g.rec, g.err
}

func TestSensorProvider_GeocodesFix(t *testing.T) {
	s := NewReportedSensor()
	s.Report(Position{Latitude: 48.85, Longitude: 2.35})

	p := &SensorProvider{Sensor: s, Geocoder: stubGeocoder{rec: location.Record{Country: "France", CountryCode: "FR", City: "Paris"}}}
	rec, err := p.Locate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "FR", rec.CountryCode)
	require.NotNil(t, rec.Latitude)
	assert.InDelta(t, 48.85, *rec.Latitude, 1e-9)
}

func TestSensorProvider_GeocodeFailureFailsTier(t *testing.T) {
	s := NewReportedSensor()
	s.Report(Position{Latitude: 1, Longitude: 1})

	p := &SensorProvider{Sensor: s, Geocoder: stubGeocoder{err: fault.New(fault.NetworkUnavailable, "reverse-geocode", errors.New("down"))}}
	_, err := p.Locate(context.Background())

	assert.True(t, errors.Is(err, fault.NetworkUnavailable))

	chain := location.NewChain(
		location.Step{Provider: p},
		location.Step{Provider: Func{ProviderName: "ip", ProviderTier: location.ProvenanceNetwork,
			Fn: func(context.Context) (location.Record, error) {
				return location.Record{CountryCode: "FR"}, nil
			}}},
	)
	rec, _ := chain.Run(context.Background())
	assert.Equal(t, "FR", rec.CountryCode)
	assert.Equal(t, location.ProvenanceNetwork, rec.Provenance)
}

func TestSensorProvider_NoFixIsPermissionDenied(t *testing.T) {
	p := &SensorProvider{Sensor: NewReportedSensor(), Geocoder: stubGeocoder{}}
	_, err := p.Locate(context.Background())
	assert.True(t, errors.Is(err, fault.PermissionDenied))
}

func TestReportedSensor_RejectsStaleFix(t *testing.T) {
	s := NewReportedSensor()
	s.Report(Position{Latitude: 1, Longitude: 1, Timestamp: time.Now().Add(-6 * time.Minute)})

	_, err := s.CurrentPosition(context.Background(), 5*time.Minute)
	assert.True(t, errors.Is(err, fault.Timeout))

	s.Deny()
	_, err = s.CurrentPosition(context.Background(), 5*time.Minute)
	assert.True(t, errors.Is(err, fault.PermissionDenied))
}

func TestHTTPGeocoder_ParsesResponse(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"countryName":"Japan","countryCode":"JP","principalSubdivision":"Tokyo","city":"","locality":"Shibuya"}`)

	g := &HTTPGeocoder{Client: client(), BaseURL: srv.URL}
	rec, err := g.Reverse(context.Background(), 35.66, 139.7)

	require.NoError(t, err)
	assert.Equal(t, "JP", rec.CountryCode)
	assert.Equal(t, "Tokyo", rec.Region)
	assert.Equal(t, "Shibuya", rec.City)
}

func TestIPLookup_ParsesResponse(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"status":"success","country":"France","countryCode":"FR","regionName":"Île-de-France","city":"Paris","lat":48.85,"lon":2.35,"timezone":"Europe/Paris"}`)

	p := &IPLookup{Client: client(), BaseURL: srv.URL}
	rec, err := p.Locate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "FR", rec.CountryCode)
	assert.Equal(t, "Europe/Paris", rec.Timezone)
	require.NotNil(t, rec.Longitude)
}

func TestIPLookup_AppendsClientIP(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"success","countryCode":"BR","country":"Brazil"}`))
	}))
	defer srv.Close()

	p := &IPLookup{Client: client(), BaseURL: srv.URL + "/json/"}
	ctx := location.WithClientIP(context.Background(), net.ParseIP("200.1.2.3"))
	_, err := p.Locate(ctx)

	require.NoError(t, err)
	assert.Equal(t, "/json/200.1.2.3", gotPath)
}

func TestIPLookup_FailStatusIsMalformed(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"status":"fail","message":"reserved range"}`)
	_, err := (&IPLookup{Client: client(), BaseURL: srv.URL}).Locate(context.Background())
	assert.True(t, errors.Is(err, fault.MalformedResponse))
}

type stubCityReader struct {
	city *geoip2.City
	err  error
}

func (r stubCityReader) City(net.IP) (*geoip2.City, error) { return r.city, r.err }

func TestGeoIP_MapsCityRecord(t *testing.T) {
	city := &geoip2.City{}
	city.Country.IsoCode = "DE"
	city.Country.Names = map[string]string{"en": "Germany"}
	city.City.Names = map[string]string{"en": "Berlin"}
	city.Location.TimeZone = "Europe/Berlin"
	city.Location.Latitude = 52.52
	city.Location.Longitude = 13.4

	p := &GeoIP{Reader: stubCityReader{city: city}}
	ctx := location.WithClientIP(context.Background(), net.ParseIP("5.6.7.8"))
	rec, err := p.Locate(ctx)

	require.NoError(t, err)
	assert.Equal(t, "DE", rec.CountryCode)
	assert.Equal(t, "Berlin", rec.City)
	assert.Equal(t, "Europe/Berlin", rec.Timezone)
	assert.Equal(t, "", rec.Region)
}

func TestGeoIP_RequiresClientIP(t *testing.T) {
	_, err := (&GeoIP{Reader: stubCityReader{}}).Locate(context.Background())
	assert.True(t, errors.Is(err, fault.MalformedResponse))
}

func TestDefault_AlwaysXX(t *testing.T) {
	rec, err := Default{}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "XX", rec.CountryCode)
}
