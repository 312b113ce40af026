package extreg

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// RegistryEntry records one installed extension, including the directory
// checksum recorded at install time and re-verified at run time (§4.7
// SUPPLEMENTED FEATURES: "binary integrity" adapted from kcli's
// VerifyPlugin/BinaryChecksum onto extension directories, since extensions
// are interpreted source rather than compiled binaries).
type RegistryEntry struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	EntryPoint        string `json:"entry_point"`
	InstalledAt       string `json:"installed_at"`
	DirectoryChecksum string `json:"directory_checksum"`
	AcknowledgedPermissions bool `json:"acknowledged_permissions"`
}

// Registry is the on-disk list of installed extensions, persisted as JSON
// under <XDG_DATA_HOME>/phylum/extensions/registry.json (kcli's
// plugin.Registry/SaveRegistry pattern).
type Registry struct {
	Extensions map[string]RegistryEntry `json:"extensions"`
}

func loadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Registry{Extensions: map[string]RegistryEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Extensions == nil {
		r.Extensions = map[string]RegistryEntry{}
	}
	return &r, nil
}

// saveRegistry writes the registry atomically (temp file + rename), same
// pattern as internal/config.Store.Save.
func saveRegistry(path string, r *Registry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".registry-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// ExtensionsDir returns <XDG_DATA_HOME>/phylum/extensions.
func ExtensionsDir() (string, error) {
	dir, err := dataHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "phylum", "extensions"), nil
}

func dataHome() (string, error) {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// NameReservedError / NameTakenError are ExtensionError's collision kinds
// (§7): built-in collisions are always rejected; installed-extension
// collisions are rejected unless --overwrite.
type NameReservedError struct{ Name string }

func (e *NameReservedError) Error() string {
	return fmt.Sprintf("extreg: %q collides with a built-in command", e.Name)
}

type NameTakenError struct{ Name string }

func (e *NameTakenError) Error() string {
	return fmt.Sprintf("extreg: %q is already installed; use --overwrite", e.Name)
}

type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("extreg: extension %q not found", e.Name) }

// DirectoryChecksum hashes every regular file under dir (name + content) in
// sorted path order, so the digest is independent of traversal order.
func DirectoryChecksum(dir string) (string, error) {
	h := sha256.New()
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		h.Write([]byte(rel))
		data, err := os.Open(f)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, data)
		data.Close()
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
