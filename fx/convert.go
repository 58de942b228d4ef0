package fx

import (
	"context"
	"fmt"
	"math"
	"strings"

	"waitlist-edge/fault"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Convert converte de USD para code, arredondando para 2 casas.
// Código fora do registro devolve fault.UnsupportedCurrency.
func (c *Cache) Convert(ctx context.Context, usd float64, code string) (float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "USD" {
		return usd, nil
	}
	if _, ok := registry[code]; !ok {
		return usd, fault.New(fault.UnsupportedCurrency, "fx-convert", fmt.Errorf("code %q", code))
	}
	rate, ok := c.Rates(ctx)[code]
	if !ok || rate <= 0 {
		return usd, fault.New(fault.UnsupportedCurrency, "fx-convert", fmt.Errorf("no rate for %q", code))
	}
	return decimal.NewFromFloat(usd).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64(), nil
}

// ConvertFromUSD é como Convert, mas nunca falha: moeda sem cotação mantém o valor em USD.
// Para "USD" é a identidade.
func (c *Cache) ConvertFromUSD(ctx context.Context, usd float64, code string) float64 {
	v, err := c.Convert(ctx, usd, code)
	if err != nil {
		c.logger.Debug("fx: conversion fell back to usd", "code", code, "err", err)
		return usd
	}
	return v
}

var printer = message.NewPrinter(language.English)

// FormatPrice trunca para unidades inteiras e posiciona o símbolo da moeda.
// O truncamento é decisão de produto (preço exibido nunca arredonda para cima).
func FormatPrice(amount float64, cur Currency) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	whole := int64(math.Trunc(amount))
	sign := ""
	if whole < 0 {
		sign = "-"
		whole = -whole
	}
	digits := printer.Sprintf("%d", whole)

	symbol := cur.Symbol
	if symbol == "" {
		symbol = cur.Code
	}
	if cur.SymbolAfter {
		return sign + digits + " " + symbol
	}
	return sign + symbol + digits
}
