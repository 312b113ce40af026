package sandbox

// sandboxExceptionsV1 is the pinned default portability-exception table
// (§9 Open Question: "the implementation must pin a version and document
// it"). It is unioned into a permission set whenever Strict=false. Any
// future revision must add a v2 table alongside this one rather than
// mutating it in place, so a permission set computed under an older
// manifest doesn't silently change shape.
var sandboxExceptionsV1 = struct {
	read  []string
	write []string
}{
	read: []string{
		"/etc/passwd",   // user-identity resolution
		"/dev/urandom",  // entropy
		"/tmp",          // scratch
	},
	write: []string{
		"/tmp",
	},
}

// PathExceptions returns the read/write paths sandboxExceptionsV1 adds, for
// callers that want to display the pinned table without reimplementing it.
// No command in this module calls it.
func PathExceptions() (read, write []string) {
	return append([]string{}, sandboxExceptionsV1.read...), append([]string{}, sandboxExceptionsV1.write...)
}
