// Package config persists settings.yaml: the API base URL, per-base-URL
// auth state, and the currently selected organization/group (§3 Auth
// state, §4.5). The linked project is not stored here; it lives in
// .phylum_project (internal/projectfile). Adapted from kcli's internal/config/config.go
// (Store, atomic SaveStore/LoadStore, 0600 mode, key redaction), generalized
// from kcli's multi-named-profile model to a base-URL-keyed profile model
// per §3's "Auth state — per-API-base-URL record".
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TokenKind distinguishes a long-lived API key from an OIDC refresh token.
type TokenKind string

const (
	TokenKindAPIKey       TokenKind = "api-key"
	TokenKindRefreshToken TokenKind = "refresh-token"
)

// AuthState is the per-base-URL record from §3.
type AuthState struct {
	TokenKind    TokenKind `yaml:"token_kind,omitempty"`
	Secret       string    `yaml:"secret,omitempty"`
	Organization string    `yaml:"organization,omitempty"`
	Group        string    `yaml:"group,omitempty"`
}

// Profile bundles the auth state for one API base URL.
type Profile struct {
	Auth AuthState `yaml:"auth"`
}

// Config is the full on-disk settings.yaml contents.
type Config struct {
	APIBaseURL string             `yaml:"api_base_url"`
	Profiles   map[string]Profile `yaml:"profiles"`
	Verbosity  string             `yaml:"verbosity,omitempty"`
}

const DefaultAPIBaseURL = "https://api.phylum.io"

// Default returns a fresh, unconfigured Config.
func Default() *Config {
	return &Config{
		APIBaseURL: DefaultAPIBaseURL,
		Profiles:   map[string]Profile{},
	}
}

// ActiveProfile returns the profile for the configured base URL. Zero value
// if none has been set yet.
func (c *Config) ActiveProfile() Profile {
	return c.Profiles[c.APIBaseURL]
}

// SetProfile stores p under the configured base URL.
func (c *Config) SetProfile(p Profile) {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.Profiles[c.APIBaseURL] = p
}

// Redacted returns a deep copy with every secret zeroed, safe to log or
// print (the "token redaction" property in §8).
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Profiles = make(map[string]Profile, len(c.Profiles))
	for url, p := range c.Profiles {
		p.Auth.Secret = ""
		cp.Profiles[url] = p
	}
	return &cp
}

// Store wraps the on-disk location of settings.yaml.
type Store struct {
	Path string
}

// DefaultStore resolves settings.yaml's path from XDG_CONFIG_HOME (default
// ~/.config), per §6 EXTERNAL INTERFACES on-disk layout.
func DefaultStore() (*Store, error) {
	dir, err := configHome()
	if err != nil {
		return nil, err
	}
	return &Store{Path: filepath.Join(dir, "phylum", "settings.yaml")}, nil
}

func configHome() (string, error) {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config"), nil
}

// Load reads and parses settings.yaml, returning a Default() config if the
// file does not exist yet.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, &IoError{Err: err}
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &MalformedFileError{Err: err}
	}
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	return &c, nil
}

// Save writes c to disk atomically (temp file in the same directory, then
// rename) with mode 0600, satisfying the "config atomicity" property in
// §8: a crash mid-write leaves the old contents intact, never a partial
// file. Grounded on kcli's config.SaveStore.
func (s *Store) Save(c *Config) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &IoError{Err: err}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return &MalformedFileError{Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml.tmp")
	if err != nil {
		return &IoError{Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &IoError{Err: err}
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return &IoError{Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IoError{Err: err}
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return &IoError{Err: err}
	}
	return nil
}

// EnsureExists creates an empty settings.yaml (mode 0600) if none exists.
func (s *Store) EnsureExists() error {
	if _, err := os.Stat(s.Path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return &IoError{Err: err}
	}
	return s.Save(Default())
}

// Validate reports PermissionsTooLoose if the on-disk file grants any
// group or other permission bit (it may carry secrets); 0600 and stricter
// modes pass.
func (s *Store) Validate() error {
	info, err := os.Stat(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &IoError{Err: err}
	}
	if info.Mode().Perm()&0077 != 0 {
		return &PermissionsTooLooseError{Mode: info.Mode().Perm()}
	}
	return nil
}

// IoError, MalformedFileError, PermissionsTooLooseError are ConfigError's
// three kinds from §7.
type IoError struct{ Err error }

func (e *IoError) Error() string { return fmt.Sprintf("config: io error: %v", e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

type MalformedFileError struct{ Err error }

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("config: malformed settings.yaml: %v", e.Err)
}
func (e *MalformedFileError) Unwrap() error { return e.Err }

type PermissionsTooLooseError struct{ Mode os.FileMode }

func (e *PermissionsTooLooseError) Error() string {
	return fmt.Sprintf("config: settings.yaml has permissions %v, want 0600 or stricter", e.Mode)
}
