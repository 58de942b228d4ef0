package fx

import "strings"

// countryCurrency mapeia ISO-3166 alfa-2 para ISO-4217.
var countryCurrency = map[string]string{
	"US": "USD", "PR": "USD", "EC": "USD",
	"GB": "GBP",
	"CA": "CAD",
	"AU": "AUD",
	"NZ": "NZD",
	"JP": "JPY",
	"CN": "CNY",
	"IN": "INR",
	"BR": "BRL",
	"MX": "MXN",
	"CH": "CHF", "LI": "CHF",
	"SE": "SEK",
	"NO": "NOK",
	"DK": "DKK",
	"PL": "PLN",
	"CZ": "CZK",
	"SG": "SGD",
	"HK": "HKD",
	"KR": "KRW",
	"ZA": "ZAR",
	"AE": "AED",
	"NG": "NGN",

	"AT": "EUR", "BE": "EUR", "CY": "EUR", "DE": "EUR", "EE": "EUR", "ES": "EUR",
	"FI": "EUR", "FR": "EUR", "GR": "EUR", "HR": "EUR", "IE": "EUR", "IT": "EUR",
	"LT": "EUR", "LU": "EUR", "LV": "EUR", "MT": "EUR", "NL": "EUR", "PT": "EUR",
	"SI": "EUR", "SK": "EUR",
}

// CurrencyForCountry é pura e síncrona; país sem mapeamento cai em USD.
func CurrencyForCountry(countryCode string) Currency {
	code, ok := countryCurrency[strings.ToUpper(strings.TrimSpace(countryCode))]
	if !ok {
		return USD
	}
	c, ok := registry[code]
	if !ok {
		return USD
	}
	return c
}
