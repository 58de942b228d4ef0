package localization

import (
	"context"

	"waitlist-edge/fx"
)

// budgetBases são os limites das faixas de orçamento, já na moeda local.
// Não passam pelo câmbio: o rótulo exibido não muda com a cotação.
var budgetBases = map[string][]int64{
	"USD": {1000, 5000, 10000, 50000},
	"EUR": {1000, 5000, 10000, 50000},
	"GBP": {750, 4000, 8000, 40000},
	"CAD": {1500, 7500, 15000, 75000},
	"AUD": {1500, 7500, 15000, 75000},
	"INR": {50000, 250000, 750000, 4000000},
	"BRL": {5000, 25000, 50000, 250000},
	"JPY": {100000, 500000, 1500000, 7500000},
	"MXN": {20000, 100000, 200000, 1000000},
	"SEK": {10000, 50000, 100000, 500000},
}

// BudgetBuckets devolve os rótulos de faixa de orçamento para o país.
// Moedas sem tabela própria usam a faixa em USD.
func BudgetBuckets(countryCode string) []string {
	cur := fx.CurrencyForCountry(countryCode)
	bases, ok := budgetBases[cur.Code]
	if !ok {
		cur = fx.USD
		bases = budgetBases["USD"]
	}

	labels := make([]string, 0, len(bases)+1)
	labels = append(labels, "Under "+fx.FormatPrice(float64(bases[0]), cur))
	for i := 1; i < len(bases); i++ {
		labels = append(labels, fx.FormatPrice(float64(bases[i-1]), cur)+" - "+fx.FormatPrice(float64(bases[i]), cur))
	}
	labels = append(labels, fx.FormatPrice(float64(bases[len(bases)-1]), cur)+"+")
	return labels
}

// BudgetBuckets no facade aceita país vazio e usa a localização resolvida.
func (f *Facade) BudgetBuckets(ctx context.Context, countryCode string) []string {
	return BudgetBuckets(f.countryFor(ctx, countryCode))
}
