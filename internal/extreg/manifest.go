// Package extreg is the on-disk extension registry: install/uninstall/
// list/new/run, manifest validation, and directory-integrity hashing
// (§4.7). Grounded on kcli's internal/plugin/plugin.go (Registry,
// RegistryEntry, atomic SaveRegistry, FileSHA256/VerifyPlugin,
// InstallFromSource), adapted from single-binary plugins to TOML-manifested
// extension directories.
package extreg

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/phylum-dev/cli-go/internal/sandbox"
)

var nameRE = regexp.MustCompile(`^[a-z0-9_-]+$`)

// rawManifest mirrors PhylumExt.toml's on-disk shape (§6 EXTERNAL
// INTERFACES). Permission fields use `any` because TOML has no native
// bool-or-array union; permissionValue below normalizes each one.
type rawManifest struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	EntryPoint  string `toml:"entry_point"`
	MinVersion  string `toml:"min_phylum_version"`
	Permissions struct {
		Read           any `toml:"read"`
		Write          any `toml:"write"`
		Env            any `toml:"env"`
		Run            any `toml:"run"`
		UnsandboxedRun any `toml:"unsandboxed_run"`
		Net            any `toml:"net"`
		Strict         bool `toml:"strict"`
	} `toml:"permissions"`
}

// Manifest is the validated, in-memory form of PhylumExt.toml.
type Manifest struct {
	Name           string
	Description    string
	EntryPoint     string
	MinVersion     string
	Permissions    sandbox.PermissionSet
	UnsandboxedRun sandbox.PathGrant // binaries this extension may run without the sandbox, an escape hatch the manifest must declare explicitly
}

// ManifestInvalidError wraps every manifest validation failure
// (ExtensionError{ManifestInvalid} in §7).
type ManifestInvalidError struct {
	Path string
	Err  error
}

func (e *ManifestInvalidError) Error() string {
	return fmt.Sprintf("extreg: invalid manifest %s: %v", e.Path, e.Err)
}
func (e *ManifestInvalidError) Unwrap() error { return e.Err }

// LoadManifest reads and validates PhylumExt.toml at dir/PhylumExt.toml.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "PhylumExt.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestInvalidError{Path: path, Err: err}
	}
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ManifestInvalidError{Path: path, Err: err}
	}

	if !nameRE.MatchString(raw.Name) {
		return nil, &ManifestInvalidError{Path: path, Err: fmt.Errorf("name %q must match [a-z0-9_-]+", raw.Name)}
	}
	if raw.EntryPoint == "" {
		return nil, &ManifestInvalidError{Path: path, Err: fmt.Errorf("entry_point is required")}
	}
	entryAbs := filepath.Join(dir, raw.EntryPoint)
	if _, err := os.Stat(entryAbs); err != nil {
		return nil, &EntryPointMissingError{Path: entryAbs}
	}

	m := &Manifest{
		Name:        raw.Name,
		Description: raw.Description,
		EntryPoint:  raw.EntryPoint,
		MinVersion:  raw.MinVersion,
	}
	m.Permissions.Read = permissionPathGrant(raw.Permissions.Read)
	m.Permissions.Write = permissionPathGrant(raw.Permissions.Write)
	m.Permissions.Run = permissionPathGrant(raw.Permissions.Run)
	m.Permissions.Net = permissionHostGrant(raw.Permissions.Net)
	m.Permissions.Env = permissionEnvGrant(raw.Permissions.Env)
	m.Permissions.Strict = raw.Permissions.Strict
	m.UnsandboxedRun = permissionPathGrant(raw.Permissions.UnsandboxedRun)

	return m, nil
}

// EntryPointMissingError is ExtensionError{EntryPointMissing} from §7.
type EntryPointMissingError struct{ Path string }

func (e *EntryPointMissingError) Error() string {
	return fmt.Sprintf("extreg: entry point %s does not exist", e.Path)
}

func permissionPathGrant(v any) sandbox.PathGrant {
	switch t := v.(type) {
	case bool:
		return sandbox.PathGrant{All: t}
	case []any:
		return sandbox.PathGrant{Paths: toStringSlice(t)}
	default:
		return sandbox.PathGrant{}
	}
}

func permissionHostGrant(v any) sandbox.HostGrant {
	switch t := v.(type) {
	case bool:
		return sandbox.HostGrant{All: t}
	case []any:
		return sandbox.HostGrant{Hosts: toStringSlice(t)}
	default:
		return sandbox.HostGrant{}
	}
}

func permissionEnvGrant(v any) sandbox.EnvGrant {
	switch t := v.(type) {
	case bool:
		return sandbox.EnvGrant{All: t}
	case []any:
		return sandbox.EnvGrant{Vars: toStringSlice(t)}
	default:
		return sandbox.EnvGrant{}
	}
}

func toStringSlice(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
