package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Path: filepath.Join(dir, "settings.yaml")}

	c := Default()
	c.APIBaseURL = "https://api.phylum.io"
	c.SetProfile(Profile{Auth: AuthState{TokenKind: TokenKindAPIKey, Secret: "sekrit", Organization: "acme"}})

	if err := s.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ActiveProfile().Auth.Secret != "sekrit" {
		t.Errorf("secret = %q, want %q", loaded.ActiveProfile().Auth.Secret, "sekrit")
	}
	if loaded.ActiveProfile().Auth.Organization != "acme" {
		t.Errorf("organization = %q, want %q", loaded.ActiveProfile().Auth.Organization, "acme")
	}
}

func TestStore_Save_WritesMode0600(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Path: filepath.Join(dir, "settings.yaml")}
	if err := s.Save(Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("mode = %v, want 0600", perm)
	}
}

func TestConfig_Redacted_ZeroesSecrets(t *testing.T) {
	c := Default()
	c.SetProfile(Profile{Auth: AuthState{Secret: "top-secret"}})
	r := c.Redacted()
	if r.ActiveProfile().Auth.Secret != "" {
		t.Error("Redacted() must zero the secret field")
	}
	if c.ActiveProfile().Auth.Secret != "top-secret" {
		t.Error("Redacted() must not mutate the original config")
	}
}

func TestStore_Load_MissingFileReturnsDefault(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "does-not-exist.yaml")}
	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want default", c.APIBaseURL)
	}
}
