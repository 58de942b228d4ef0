package localization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"waitlist-edge/fx"
	"waitlist-edge/location"

	"github.com/shopspring/decimal"
)

var ErrUnknownPlan = errors.New("unknown plan")

// LocationSource é o que o facade precisa do location.Resolver.
type LocationSource interface {
	Resolve(ctx context.Context) location.Record
}

// Converter é o que o facade precisa do fx.Cache.
type Converter interface {
	ConvertFromUSD(ctx context.Context, usd float64, code string) float64
}

type Facade struct {
	locations LocationSource
	rates     Converter
	logger    *slog.Logger
}

func New(locations LocationSource, rates Converter, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{locations: locations, rates: rates, logger: logger}
}

// Pricing é o preço de um plano já convertido e formatado.
type Pricing struct {
	Segment     string      `json:"segment"`
	Tier        string      `json:"tier"`
	CountryCode string      `json:"country_code"`
	Currency    fx.Currency `json:"currency"`

	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
	// Savings = Monthly×12 − Annual, na moeda local.
	Savings float64 `json:"savings"`

	MonthlyDisplay string `json:"monthly_display"`
	AnnualDisplay  string `json:"annual_display"`
	SavingsDisplay string `json:"savings_display"`
}

// countryFor usa o código informado ou, se vazio, o da localização resolvida.
func (f *Facade) countryFor(ctx context.Context, countryCode string) string {
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	if cc != "" {
		return cc
	}
	if f.locations == nil {
		return location.UnknownCountryCode
	}
	return f.locations.Resolve(ctx).CountryCode
}

func (f *Facade) LocalizedPricing(ctx context.Context, segment, tier, countryCode string) (Pricing, error) {
	plan, ok := LookupPlan(segment, tier)
	if !ok {
		return Pricing{}, fmt.Errorf("%w: %s/%s", ErrUnknownPlan, segment, tier)
	}

	cc := f.countryFor(ctx, countryCode)
	cur := fx.CurrencyForCountry(cc)
	if cc == location.UnknownCountryCode {
		f.logger.Debug("localization: country unresolved, using usd")
	}

	monthly := f.convert(ctx, plan.MonthlyUSD, cur.Code)
	annual := f.convert(ctx, plan.AnnualUSD, cur.Code)
	savings := decimal.NewFromFloat(monthly).
		Mul(decimal.NewFromInt(12)).
		Sub(decimal.NewFromFloat(annual)).
		Round(2).
		InexactFloat64()

	return Pricing{
		Segment:        strings.ToLower(segment),
		Tier:           strings.ToLower(tier),
		CountryCode:    cc,
		Currency:       cur,
		Monthly:        monthly,
		Annual:         annual,
		Savings:        savings,
		MonthlyDisplay: fx.FormatPrice(monthly, cur),
		AnnualDisplay:  fx.FormatPrice(annual, cur),
		SavingsDisplay: fx.FormatPrice(savings, cur),
	}, nil
}

// FormatUSD formata um valor em USD na moeda de quem chama.
func (f *Facade) FormatUSD(ctx context.Context, usd float64) string {
	cur := fx.CurrencyForCountry(f.countryFor(ctx, ""))
	return fx.FormatPrice(f.convert(ctx, usd, cur.Code), cur)
}

func (f *Facade) convert(ctx context.Context, usd float64, code string) float64 {
	if f.rates == nil || code == fx.USD.Code {
		return usd
	}
	return f.rates.ConvertFromUSD(ctx, usd, code)
}
