// Package keychain provides OS-level secret storage for the CLI's stored
// API credentials (internal/auth). On macOS it uses the Keychain via
// security(1); on Linux it uses Secret Service via secret-tool(1). Other
// platforms report unavailable, and callers fall back to settings.yaml.
package keychain

// Service name used for all phylum entries.
const Service = "phylum"

// Set stores a secret in the system keychain. account is a unique label
// (internal/auth uses "token." followed by the API base URL).
// If the keychain is unavailable, returns ErrUnavailable.
func Set(service, account, value string) error {
	return set(service, account, value)
}

// Get retrieves a secret from the system keychain. Returns empty string
// if the item is not found or keychain is unavailable.
func Get(service, account string) (string, error) {
	return get(service, account)
}

// Delete removes a secret from the system keychain. Idempotent.
func Delete(service, account string) error {
	return delete(service, account)
}

// Available reports whether the system keychain is usable (security on macOS,
// secret-tool on Linux).
func Available() bool {
	return available()
}
