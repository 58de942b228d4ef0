package location

import "strings"

// Provenance marca qual camada produziu o Record.
type Provenance string

const (
	ProvenanceSensor  Provenance = "sensor"
	ProvenanceNetwork Provenance = "network"
	ProvenanceDefault Provenance = "default"
)

const (
	UnknownValue       = "Unknown"
	UnknownCountryCode = "XX"
)

// Record é sempre válido depois de Normalize: nenhum campo textual fica vazio.
type Record struct {
	Country     string     `json:"country"`
	Region      string     `json:"region"`
	City        string     `json:"city"`
	CountryCode string     `json:"country_code"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Timezone    string     `json:"timezone,omitempty"`
	Provenance  Provenance `json:"provenance"`
	Provider    string     `json:"provider,omitempty"`
}

// DefaultRecord é o último degrau da cadeia.
func DefaultRecord() Record {
	return Record{
		Country:     UnknownValue,
		Region:      UnknownValue,
		City:        UnknownValue,
		CountryCode: UnknownCountryCode,
		Provenance:  ProvenanceDefault,
		Provider:    "default",
	}
}

// Normalize troca vazios por sentinelas e padroniza o código do país.
// Dados parciais (ex.: sem cidade) são aceitos, nunca tratados como falha.
func Normalize(r Record) Record {
	r.Country = orUnknown(r.Country)
	r.Region = orUnknown(r.Region)
	r.City = orUnknown(r.City)

	cc := strings.ToUpper(strings.TrimSpace(r.CountryCode))
	if len(cc) != 2 {
		cc = UnknownCountryCode
	}
	r.CountryCode = cc
	r.Timezone = strings.TrimSpace(r.Timezone)

	if r.Provenance == "" {
		r.Provenance = ProvenanceDefault
	}
	return r
}

// Usable diz se o registro carrega alguma informação além do padrão.
func (r Record) Usable() bool {
	return r.CountryCode != "" && r.CountryCode != UnknownCountryCode
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownValue
	}
	return s
}

// Float é um atalho para preencher Latitude/Longitude.
func Float(v float64) *float64 { return &v }
