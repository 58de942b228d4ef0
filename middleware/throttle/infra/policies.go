package infra

import (
	"fmt"
	"os"
	"time"

	"waitlist-edge/middleware/throttle/domain"

	"gopkg.in/yaml.v3"
)

// PolicyFile é o formato do arquivo de políticas:
//
//	actions:
//	  login:
//	    max_requests: 3
//	    window: 60s
//	    block_duration: 2m
type PolicyFile struct {
	Actions map[string]domain.ActionPolicy `yaml:"actions"`
}

// DefaultPolicies são usadas quando nenhum arquivo é informado.
func DefaultPolicies() map[string]domain.ActionPolicy {
	return map[string]domain.ActionPolicy{
		"waitlist_signup": {MaxRequests: 3, Window: time.Hour, BlockDuration: time.Hour},
		"login":           {MaxRequests: 5, Window: 15 * time.Minute, BlockDuration: 30 * time.Minute},
		"contact":         {MaxRequests: 5, Window: time.Hour, BlockDuration: time.Hour},
		"quiz_submit":     {MaxRequests: 10, Window: time.Hour, BlockDuration: 30 * time.Minute},
		"location_report": {MaxRequests: 5, Window: 10 * time.Minute, BlockDuration: 10 * time.Minute},
	}
}

// ParsePolicies decodifica e valida o YAML de políticas.
func ParsePolicies(data []byte) (map[string]domain.ActionPolicy, error) {
	var f PolicyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse policies: %w", err)
	}
	if len(f.Actions) == 0 {
		return nil, fmt.Errorf("parse policies: no actions defined")
	}
	for name, p := range f.Actions {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("policy %q: %w", name, err)
		}
	}
	return f.Actions, nil
}

// LoadPolicies lê o arquivo em path. path vazio devolve DefaultPolicies.
func LoadPolicies(path string) (map[string]domain.ActionPolicy, error) {
	if path == "" {
		return DefaultPolicies(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policies: %w", err)
	}
	return ParsePolicies(data)
}
