package localization

import "strings"

// Plan guarda os preços de referência em USD.
type Plan struct {
	MonthlyUSD float64 `json:"monthly_usd"`
	AnnualUSD  float64 `json:"annual_usd"`
}

var plans = map[string]map[string]Plan{
	"individual": {
		"starter": {MonthlyUSD: 9, AnnualUSD: 90},
		"pro":     {MonthlyUSD: 19, AnnualUSD: 190},
	},
	"team": {
		"starter": {MonthlyUSD: 49, AnnualUSD: 490},
		"pro":     {MonthlyUSD: 99, AnnualUSD: 990},
	},
}

func LookupPlan(segment, tier string) (Plan, bool) {
	tiers, ok := plans[strings.ToLower(strings.TrimSpace(segment))]
	if !ok {
		return Plan{}, false
	}
	p, ok := tiers[strings.ToLower(strings.TrimSpace(tier))]
	return p, ok
}
