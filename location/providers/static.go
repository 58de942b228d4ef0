package providers

import (
	"context"

	"waitlist-edge/location"
)

// Default é o degrau final: sempre responde com o registro padrão.
type Default struct{}

func (Default) Name() string              { return "default" }
func (Default) Tier() location.Provenance { return location.ProvenanceDefault }

func (Default) Locate(context.Context) (location.Record, error) {
	return location.DefaultRecord(), nil
}

// Func adapta uma função a location.Provider.
type Func struct {
	ProviderName string
	ProviderTier location.Provenance
	Fn           func(ctx context.Context) (location.Record, error)
}

func (f Func) Name() string              { return f.ProviderName }
func (f Func) Tier() location.Provenance { return f.ProviderTier }

func (f Func) Locate(ctx context.Context) (location.Record, error) { return f.Fn(ctx) }
