package fx

import "strings"

// Currency é um item do registro estático (imutável).
// Rate é a cotação de referência em relação ao USD, usada quando a busca
// ao vivo falha.
type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Rate   float64 `json:"rate"`
	// SymbolAfter coloca o símbolo depois do valor ("1,200 kr").
	SymbolAfter bool `json:"symbol_after,omitempty"`
}

var USD = Currency{Code: "USD", Symbol: "$", Name: "US Dollar", Rate: 1}

var registry = map[string]Currency{
	"USD": USD,
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", Rate: 0.92},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", Rate: 0.79},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Rate: 1.36},
	"AUD": {Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Rate: 1.52},
	"NZD": {Code: "NZD", Symbol: "NZ$", Name: "New Zealand Dollar", Rate: 1.64},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Rate: 149.5},
	"CNY": {Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", Rate: 7.24},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee", Rate: 83.1},
	"BRL": {Code: "BRL", Symbol: "R$", Name: "Brazilian Real", Rate: 4.97},
	"MXN": {Code: "MXN", Symbol: "MX$", Name: "Mexican Peso", Rate: 17.1},
	"CHF": {Code: "CHF", Symbol: "CHF", Name: "Swiss Franc", Rate: 0.88},
	"SEK": {Code: "SEK", Symbol: "kr", Name: "Swedish Krona", Rate: 10.4, SymbolAfter: true},
	"NOK": {Code: "NOK", Symbol: "kr", Name: "Norwegian Krone", Rate: 10.6, SymbolAfter: true},
	"DKK": {Code: "DKK", Symbol: "kr", Name: "Danish Krone", Rate: 6.87, SymbolAfter: true},
	"PLN": {Code: "PLN", Symbol: "zł", Name: "Polish Zloty", Rate: 4.02, SymbolAfter: true},
	"CZK": {Code: "CZK", Symbol: "Kč", Name: "Czech Koruna", Rate: 22.6, SymbolAfter: true},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Rate: 1.34},
	"HKD": {Code: "HKD", Symbol: "HK$", Name: "Hong Kong Dollar", Rate: 7.82},
	"KRW": {Code: "KRW", Symbol: "₩", Name: "South Korean Won", Rate: 1320},
	"ZAR": {Code: "ZAR", Symbol: "R", Name: "South African Rand", Rate: 18.6},
	"AED": {Code: "AED", Symbol: "AED", Name: "UAE Dirham", Rate: 3.67},
	"NGN": {Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", Rate: 1450},
}

// Lookup procura uma moeda pelo código ISO-4217.
func Lookup(code string) (Currency, bool) {
	c, ok := registry[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Codes devolve os códigos do registro.
func Codes() []string {
	out := make([]string, 0, len(registry))
	for code := range registry {
		out = append(out, code)
	}
	return out
}

// SeedRates é a tabela estática de cotações (cópia nova a cada chamada).
func SeedRates() map[string]float64 {
	out := make(map[string]float64, len(registry))
	for code, c := range registry {
		out[code] = c.Rate
	}
	return out
}
