package sandbox

import "os/exec"

// Capabilities reports which isolation primitives are usable on the
// current host, so failures are observable up front via `phylum status
// sandbox info` rather than only by trying and failing (SUPPLEMENTED FEATURES in
// SPEC_FULL.md, grounded on kcli's plugin inspect-sandbox and
// xadnavyaai-vectraguard's namespace.DetectCapabilities).
type Capabilities struct {
	Platform          string
	Available         bool
	Bubblewrap        bool // Linux: bwrap(1) present
	Unshare           bool // Linux: unshare(1) present
	SandboxExec       bool // macOS: sandbox-exec(1) present
	UnprivilegedUserNS bool
}

// DetectCapabilities inspects the current host for usable sandbox
// primitives without attempting an actual sandboxed run.
func DetectCapabilities() Capabilities {
	return detectCapabilities()
}

func binaryAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
