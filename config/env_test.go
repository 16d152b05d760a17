package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
}

func TestLoadRequiresStoreURLAndKey(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error when store settings are missing")
	}
	for _, name := range []string{"SUPABASE_URL", "SUPABASE_ANON_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected error to name %s, got %q", name, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("REQUEST_TIMEOUT_MS", "")
	t.Setenv("PORT", "")
	t.Setenv("MEDIA_BUCKET", "")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.SupabaseURL != "https://example.supabase.co" {
		t.Fatalf("expected trailing slash trimmed, got %q", s.SupabaseURL)
	}
	if s.RequestTimeout != DefaultRequestTimeout {
		t.Fatalf("expected default timeout, got %s", s.RequestTimeout)
	}
	if s.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", s.Port)
	}
	if got, want := s.RestURL(), "https://example.supabase.co/rest/v1"; got != want {
		t.Fatalf("rest url %q want %q", got, want)
	}
	if got, want := s.PublicMediaPrefix(), "https://example.supabase.co/storage/v1/object/public/portfolio-media/"; got != want {
		t.Fatalf("media prefix %q want %q", got, want)
	}
}

func TestLoadTimeoutOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("REQUEST_TIMEOUT_MS", "1500")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.RequestTimeout != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %s", s.RequestTimeout)
	}
}

func TestLoadRejectsMalformedTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("REQUEST_TIMEOUT_MS", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected malformed timeout to fail")
	}

	t.Setenv("REQUEST_TIMEOUT_MS", "-5")
	if _, err := Load(); err == nil {
		t.Fatalf("expected negative timeout to fail")
	}
}

func TestRestClientUsesAccessTokenWhenGiven(t *testing.T) {
	client, err := RestClient("http://localhost:54321/rest/v1", "anon", "user-token")
	if err != nil {
		t.Fatalf("rest client: %v", err)
	}
	if client == nil {
		t.Fatalf("expected client")
	}
}
