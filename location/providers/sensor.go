package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"waitlist-edge/fault"
	"waitlist-edge/location"
)

// Position é uma leitura do sensor do dispositivo.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Sensor entrega uma posição com no máximo maxAge de idade.
type Sensor interface {
	CurrentPosition(ctx context.Context, maxAge time.Duration) (Position, error)
}

// ReverseGeocoder transforma coordenadas em país/região/cidade.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (location.Record, error)
}

// SensorProvider é o primeiro degrau: posição do sensor + reverse geocode.
// Se o geocode falhar o degrau inteiro falha, e a cadeia segue para o IP.
type SensorProvider struct {
	Sensor   Sensor
	Geocoder ReverseGeocoder
	MaxAge   time.Duration
}

func (p *SensorProvider) Name() string              { return "sensor" }
func (p *SensorProvider) Tier() location.Provenance { return location.ProvenanceSensor }

func (p *SensorProvider) Locate(ctx context.Context) (location.Record, error) {
	if p.Sensor == nil {
		return location.Record{}, fault.New(fault.PermissionDenied, p.Name(), errors.New("no sensor available"))
	}
	maxAge := p.MaxAge
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}

	pos, err := p.Sensor.CurrentPosition(ctx, maxAge)
	if err != nil {
		if fault.KindOf(err) == fault.Unknown {
			return location.Record{}, fault.New(fault.Classify(err), p.Name(), err)
		}
		return location.Record{}, err
	}
	if !pos.Timestamp.IsZero() && time.Since(pos.Timestamp) > maxAge {
		return location.Record{}, fault.New(fault.Timeout, p.Name(), fmt.Errorf("position older than %s", maxAge))
	}
	if pos.Latitude < -90 || pos.Latitude > 90 || pos.Longitude < -180 || pos.Longitude > 180 {
		return location.Record{}, fault.New(fault.MalformedResponse, p.Name(), errors.New("coordinates out of range"))
	}
	if p.Geocoder == nil {
		return location.Record{}, fault.New(fault.NetworkUnavailable, p.Name(), errors.New("no reverse geocoder"))
	}

	rec, err := p.Geocoder.Reverse(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		return location.Record{}, err
	}
	rec.Latitude = location.Float(pos.Latitude)
	rec.Longitude = location.Float(pos.Longitude)
	return rec, nil
}

// ErrNoFix indica que o cliente não informou posição (ou negou a permissão).
var ErrNoFix = fault.New(fault.PermissionDenied, "sensor", errors.New("no position reported"))

// ReportedSensor guarda a última posição enviada pelo dispositivo.
// Do lado do servidor é isso que faz o papel do sensor.
type ReportedSensor struct {
	mu  sync.RWMutex
	pos *Position
	now func() time.Time
}

func NewReportedSensor() *ReportedSensor {
	return &ReportedSensor{now: time.Now}
}

func (s *ReportedSensor) Report(pos Position) {
	if pos.Timestamp.IsZero() {
		pos.Timestamp = s.now()
	}
	s.mu.Lock()
	s.pos = &pos
	s.mu.Unlock()
}

// Deny descarta a posição, como se a permissão tivesse sido revogada.
func (s *ReportedSensor) Deny() {
	s.mu.Lock()
	s.pos = nil
	s.mu.Unlock()
}

func (s *ReportedSensor) CurrentPosition(_ context.Context, maxAge time.Duration) (Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pos == nil {
		return Position{}, ErrNoFix
	}
	if s.now().Sub(s.pos.Timestamp) > maxAge {
		return Position{}, fault.New(fault.Timeout, "sensor", fmt.Errorf("last fix older than %s", maxAge))
	}
	return *s.pos, nil
}
