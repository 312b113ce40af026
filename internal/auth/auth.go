// Package auth implements OIDC device-authorization login, bearer-token
// refresh, and the PHYLUM_API_KEY precedence rule (§4.5). Device-flow
// usage of golang.org/x/oauth2 and ID-token verification via
// github.com/coreos/go-oidc/v3 are adapted from
// kubilitics-backend/internal/auth/oidc/provider.go's Provider/NewProvider
// (a web auth-code flow there; a device flow here).
package auth

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	oidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/phylum-dev/cli-go/internal/config"
	"github.com/phylum-dev/cli-go/internal/keychain"
)

// Kind enumerates AuthError's failure classes (§7).
type Kind string

const (
	KindUnconfigured   Kind = "unconfigured"
	KindExpired        Kind = "expired"
	KindRevoked        Kind = "revoked"
	KindNetwork        Kind = "network"
	KindServerRejected Kind = "server-rejected"
)

// AuthError wraps every auth failure, carrying the enumerated Kind that
// the dispatcher renders on.
type AuthError struct {
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("auth: %s", e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// keychainAccount is the per-base-URL secret label used when the platform
// keychain (internal/keychain) is available, so the stored secret never
// needs to be written into settings.yaml in plaintext.
func keychainAccount(baseURL string) string { return "token." + baseURL }

// Provider resolves OIDC endpoints and performs the device grant, ID-token
// verification, and refresh exchange for one API base URL.
type Provider struct {
	IssuerURL    string
	ClientID     string
	oidcProvider *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config oauth2.Config
}

// NewProvider discovers the OIDC issuer's endpoints (equivalent to
// kubilitics-backend's oidc.NewProvider: provider discovery + verifier
// construction) ahead of a device-grant login.
func NewProvider(ctx context.Context, issuerURL, clientID string) (*Provider, error) {
	p, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, &AuthError{Kind: KindNetwork, Err: err}
	}
	return &Provider{
		IssuerURL:    issuerURL,
		ClientID:     clientID,
		oidcProvider: p,
		verifier:     p.Verifier(&oidc.Config{ClientID: clientID}),
		oauth2Config: oauth2.Config{ClientID: clientID, Endpoint: p.Endpoint()},
	}, nil
}

// DeviceLoginResult is returned by StartDeviceLogin for the caller to
// render (out of core scope: pretty-printing the verification URL/code).
type DeviceLoginResult struct {
	VerificationURI         string
	VerificationURIComplete string
	UserCode                string
	Interval                time.Duration
	ExpiresAt               time.Time
}

// StartDeviceLogin begins the OIDC device-authorization grant (§4.5 Login
// flow). The returned DeviceAuthResponse must be passed to
// CompleteDeviceLogin to poll for completion.
func (p *Provider) StartDeviceLogin(ctx context.Context) (*oauth2.DeviceAuthResponse, *DeviceLoginResult, error) {
	resp, err := p.oauth2Config.DeviceAuth(ctx)
	if err != nil {
		return nil, nil, &AuthError{Kind: KindNetwork, Err: err}
	}
	return resp, &DeviceLoginResult{
		VerificationURI:         resp.VerificationURI,
		VerificationURIComplete: resp.VerificationURIComplete,
		UserCode:                resp.UserCode,
		Interval:                time.Duration(resp.Interval) * time.Second,
		ExpiresAt:               resp.Expiry,
	}, nil
}

// CompleteDeviceLogin polls until the user has approved the device code (or
// it expires), then verifies the returned ID token.
func (p *Provider) CompleteDeviceLogin(ctx context.Context, resp *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	tok, err := p.oauth2Config.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, &AuthError{Kind: KindServerRejected, Err: err}
	}
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		if _, err := p.verifier.Verify(ctx, raw); err != nil {
			return nil, &AuthError{Kind: KindServerRejected, Err: fmt.Errorf("id_token verification: %w", err)}
		}
	}
	return tok, nil
}

// bearerCache is process-local only (§3, §5: "Auth bearer cache: in-memory
// only; not shared across invocations").
type bearerCache struct {
	mu      sync.Mutex
	byURL   map[string]cachedBearer
}

type cachedBearer struct {
	token   string
	expires time.Time
}

var cache = &bearerCache{byURL: map[string]cachedBearer{}}

// ResolveToken implements the precedence and refresh rules of §4.5 and the
// §8 scenario 5 property: a non-empty PHYLUM_API_KEY always wins; an empty
// value is treated as unset, falling back to the stored credential.
func ResolveToken(ctx context.Context, cfg *config.Config, provider *Provider) (string, error) {
	if env := os.Getenv("PHYLUM_API_KEY"); env != "" {
		return env, nil
	}

	profile := cfg.ActiveProfile()
	secret := profile.Auth.Secret
	if secret == "" && keychain.Available() {
		if v, err := keychain.Get(keychain.Service, keychainAccount(cfg.APIBaseURL)); err == nil {
			secret = v
		}
	}
	if secret == "" {
		return "", &AuthError{Kind: KindUnconfigured}
	}

	if profile.Auth.TokenKind == config.TokenKindAPIKey {
		return secret, nil
	}

	// Refresh-token flow: return a cached bearer if still valid, otherwise
	// exchange it (§4.5's "Bearer refresh").
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cb, ok := cache.byURL[cfg.APIBaseURL]; ok && time.Now().Before(cb.expires) {
		return cb.token, nil
	}
	if provider == nil {
		return "", &AuthError{Kind: KindUnconfigured, Err: fmt.Errorf("no OIDC provider configured for refresh")}
	}
	src := provider.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: secret})
	tok, err := src.Token()
	if err != nil {
		return "", &AuthError{Kind: KindExpired, Err: err}
	}
	cache.byURL[cfg.APIBaseURL] = cachedBearer{token: tok.AccessToken, expires: tok.Expiry}
	return tok.AccessToken, nil
}

// StoreSecret persists a credential for baseURL, preferring the platform
// keychain when available and otherwise falling back to settings.yaml
// (still mode-0600 and atomically written by internal/config).
func StoreSecret(cfg *config.Config, baseURL string, kind config.TokenKind, secret string) {
	profile := cfg.Profiles[baseURL]
	profile.Auth.TokenKind = kind
	if keychain.Available() {
		if err := keychain.Set(keychain.Service, keychainAccount(baseURL), secret); err == nil {
			profile.Auth.Secret = "" // kept out of the plaintext file when the keychain took it
			cfg.Profiles[baseURL] = profile
			return
		}
	}
	profile.Auth.Secret = secret
	cfg.Profiles[baseURL] = profile
}

// ClearSecret removes a stored credential for baseURL from both the
// keychain (best effort) and settings.yaml (§4.5 `logout`).
func ClearSecret(cfg *config.Config, baseURL string) {
	if keychain.Available() {
		_ = keychain.Delete(keychain.Service, keychainAccount(baseURL))
	}
	delete(cfg.Profiles, baseURL)
}
