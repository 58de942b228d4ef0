package fx

import (
	"context"
	"errors"
	"strings"

	"waitlist-edge/fault"
)

const DefaultRatesURL = "https://open.er-api.com/v6/latest/USD"

var errNoKnownRates = errors.New("response has no known currency")

// JSONGetter é o que o fetcher precisa do upstream.Client.
type JSONGetter interface {
	GetJSON(ctx context.Context, op, rawURL string, out any) error
}

// HTTPFetcher lê um endpoint no formato open.er-api.com:
//
//	{"result":"success","base_code":"USD","rates":{"EUR":0.92,...}}
type HTTPFetcher struct {
	Client JSONGetter
	URL    string
}

type ratesResponse struct {
	Result string             `json:"result"`
	Base   string             `json:"base_code"`
	Rates  map[string]float64 `json:"rates"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (map[string]float64, error) {
	u := f.URL
	if u == "" {
		u = DefaultRatesURL
	}
	var resp ratesResponse
	if err := f.Client.GetJSON(ctx, "fx-fetch", u, &resp); err != nil {
		return nil, err
	}
	if resp.Result != "" && resp.Result != "success" {
		return nil, fault.New(fault.MalformedResponse, "fx-fetch", errors.New("result "+resp.Result))
	}
	if resp.Base != "" && !strings.EqualFold(resp.Base, "USD") {
		return nil, fault.New(fault.MalformedResponse, "fx-fetch", errors.New("unexpected base "+resp.Base))
	}
	if len(resp.Rates) == 0 {
		return nil, fault.New(fault.MalformedResponse, "fx-fetch", errors.New("empty rates"))
	}
	return resp.Rates, nil
}

// FetcherFunc adapta uma função a Fetcher.
type FetcherFunc func(ctx context.Context) (map[string]float64, error)

func (f FetcherFunc) Fetch(ctx context.Context) (map[string]float64, error) { return f(ctx) }
