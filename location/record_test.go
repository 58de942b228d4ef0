package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_CoercesEmptyFields(t *testing.T) {
	got := Normalize(Record{Country: "France", CountryCode: " fr "})

	assert.Equal(t, "France", got.Country)
	assert.Equal(t, UnknownValue, got.Region)
	assert.Equal(t, UnknownValue, got.City)
	assert.Equal(t, "FR", got.CountryCode)
	assert.Equal(t, ProvenanceDefault, got.Provenance)
}

func TestNormalize_InvalidCountryCodeBecomesXX(t *testing.T) {
	for _, cc := range []string{"", "FRA", "f"} {
		assert.Equal(t, UnknownCountryCode, Normalize(Record{CountryCode: cc}).CountryCode, "code %q", cc)
	}
}

func TestDefaultRecord_IsValid(t *testing.T) {
	d := DefaultRecord()
	assert.Equal(t, d, Normalize(d))
	assert.False(t, d.Usable())
	assert.Equal(t, "XX", d.CountryCode)
}
