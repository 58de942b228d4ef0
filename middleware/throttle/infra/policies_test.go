package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParsePolicies_ReadsDurations(t *testing.T) {
	data := []byte(`
actions:
  login:
    max_requests: 3
    window: 60s
    block_duration: 2m
  contact:
    max_requests: 5
    window: 1h
`)
	got, err := ParsePolicies(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	login := got["login"]
	if login.MaxRequests != 3 || login.Window != time.Minute || login.BlockDuration != 2*time.Minute {
		t.Fatalf("unexpected login policy: %+v", login)
	}
	if got["contact"].BlockDuration != 0 {
		t.Fatalf("expected omitted block_duration to stay zero until Configure applies defaults")
	}
}

func TestParsePolicies_RejectsInvalid(t *testing.T) {
	if _, err := ParsePolicies([]byte("actions:\n  a:\n    max_requests: 0\n    window: 1s\n")); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := ParsePolicies([]byte("actions: {}\n")); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestLoadPolicies_EmptyPathUsesDefaults(t *testing.T) {
	got, err := LoadPolicies("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["waitlist_signup"]; !ok {
		t.Fatalf("expected default waitlist_signup policy")
	}
	if p, ok := got["location_report"]; !ok || p.Validate() != nil {
		t.Fatalf("expected a valid default location_report policy, got %+v", p)
	}
}

func TestLoadPolicies_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	if err := os.WriteFile(path, []byte("actions:\n  a:\n    max_requests: 1\n    window: 1s\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadPolicies(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["a"].MaxRequests != 1 {
		t.Fatalf("unexpected policy %+v", got["a"])
	}
}
