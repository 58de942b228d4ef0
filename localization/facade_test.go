package localization

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"waitlist-edge/fx"
	"waitlist-edge/location"
)

type fixedLocation struct {
	rec   location.Record
	calls int
}

func (f *fixedLocation) Resolve(ctx context.Context) location.Record {
	f.calls++
	return f.rec
}

func offlineRates() *fx.Cache {
	return fx.NewCache(fx.FetcherFunc(func(ctx context.Context) (map[string]float64, error) {
		return nil, errors.New("offline")
	}))
}

func liveRates(rates map[string]float64) *fx.Cache {
	return fx.NewCache(fx.FetcherFunc(func(ctx context.Context) (map[string]float64, error) {
		return rates, nil
	}))
}

func TestLocalizedPricing_USD(t *testing.T) {
	f := New(nil, offlineRates(), nil)

	p, err := f.LocalizedPricing(context.Background(), "individual", "starter", "US")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Monthly != 9 || p.Annual != 90 || p.Savings != 18 {
		t.Fatalf("got monthly=%v annual=%v savings=%v", p.Monthly, p.Annual, p.Savings)
	}
	if p.MonthlyDisplay != "$9" || p.AnnualDisplay != "$90" || p.SavingsDisplay != "$18" {
		t.Fatalf("unexpected displays: %+v", p)
	}
}

func TestLocalizedPricing_EURFromSeed(t *testing.T) {
	f := New(nil, offlineRates(), nil)

	p, err := f.LocalizedPricing(context.Background(), "individual", "starter", "fr")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Currency.Code != "EUR" || p.CountryCode != "FR" {
		t.Fatalf("expected EUR/FR, got %s/%s", p.Currency.Code, p.CountryCode)
	}
	// 9×0.92 = 8.28; 90×0.92 = 82.8; 8.28×12 − 82.8 = 16.56
	if p.Monthly != 8.28 || p.Annual != 82.8 || p.Savings != 16.56 {
		t.Fatalf("got monthly=%v annual=%v savings=%v", p.Monthly, p.Annual, p.Savings)
	}
	if p.MonthlyDisplay != "€8" || p.AnnualDisplay != "€82" || p.SavingsDisplay != "€16" {
		t.Fatalf("unexpected displays: %+v", p)
	}
}

func TestLocalizedPricing_SuffixCurrency(t *testing.T) {
	f := New(nil, offlineRates(), nil)

	p, err := f.LocalizedPricing(context.Background(), "individual", "starter", "SE")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.AnnualDisplay != "936 kr" || p.SavingsDisplay != "187 kr" {
		t.Fatalf("unexpected displays: %+v", p)
	}
}

func TestLocalizedPricing_LiveRates(t *testing.T) {
	f := New(nil, liveRates(map[string]float64{"EUR": 0.5}), nil)

	p, err := f.LocalizedPricing(context.Background(), "team", "pro", "DE")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Monthly != 49.5 || p.Annual != 495 || p.Savings != 99 {
		t.Fatalf("got monthly=%v annual=%v savings=%v", p.Monthly, p.Annual, p.Savings)
	}
}

func TestLocalizedPricing_EmptyCountryUsesResolver(t *testing.T) {
	loc := &fixedLocation{rec: location.Record{CountryCode: "GB"}}
	f := New(loc, offlineRates(), nil)

	p, err := f.LocalizedPricing(context.Background(), "individual", "pro", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.CountryCode != "GB" || p.Currency.Code != "GBP" {
		t.Fatalf("expected GB/GBP, got %s/%s", p.CountryCode, p.Currency.Code)
	}
	if loc.calls != 1 {
		t.Fatalf("expected one resolve, got %d", loc.calls)
	}

	// país explícito não consulta a localização
	if _, err := f.LocalizedPricing(context.Background(), "individual", "pro", "US"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if loc.calls != 1 {
		t.Fatalf("explicit country should skip resolve, got %d calls", loc.calls)
	}
}

func TestLocalizedPricing_UnknownCountryFallsBackToUSD(t *testing.T) {
	f := New(nil, offlineRates(), nil)

	p, err := f.LocalizedPricing(context.Background(), "team", "starter", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.CountryCode != location.UnknownCountryCode || p.Currency.Code != "USD" {
		t.Fatalf("expected XX/USD, got %s/%s", p.CountryCode, p.Currency.Code)
	}
	if p.MonthlyDisplay != "$49" {
		t.Fatalf("unexpected display %q", p.MonthlyDisplay)
	}
}

func TestLocalizedPricing_UnknownPlan(t *testing.T) {
	f := New(nil, offlineRates(), nil)

	_, err := f.LocalizedPricing(context.Background(), "enterprise", "starter", "US")
	if !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
	_, err = f.LocalizedPricing(context.Background(), "team", "gold", "US")
	if !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}

func TestFormatUSD(t *testing.T) {
	loc := &fixedLocation{rec: location.Record{CountryCode: "IN"}}
	f := New(loc, offlineRates(), nil)

	// 1234 × 83.1 = 102545.4
	if got := f.FormatUSD(context.Background(), 1234); got != "₹102,545" {
		t.Fatalf("got %q", got)
	}
}

func TestBudgetBuckets(t *testing.T) {
	want := []string{"Under $1,000", "$1,000 - $5,000", "$5,000 - $10,000", "$10,000 - $50,000", "$50,000+"}
	if got := BudgetBuckets("US"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}

	wantGB := []string{"Under £750", "£750 - £4,000", "£4,000 - £8,000", "£8,000 - £40,000", "£40,000+"}
	if got := BudgetBuckets("gb"); !reflect.DeepEqual(got, wantGB) {
		t.Fatalf("got %v", got)
	}

	// NOK não tem tabela própria: usa a faixa em USD
	if got := BudgetBuckets("NO"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestBudgetBuckets_IgnoreLiveRates(t *testing.T) {
	loc := &fixedLocation{rec: location.Record{CountryCode: "DE"}}
	f := New(loc, liveRates(map[string]float64{"EUR": 3}), nil)

	got := f.BudgetBuckets(context.Background(), "")
	if got[0] != "Under €1,000" || got[len(got)-1] != "€50,000+" {
		t.Fatalf("buckets should not follow fx, got %v", got)
	}
}

func TestLookupPlan(t *testing.T) {
	p, ok := LookupPlan(" Team ", "PRO")
	if !ok || p.MonthlyUSD != 99 || p.AnnualUSD != 990 {
		t.Fatalf("got %+v ok=%v", p, ok)
	}
}
