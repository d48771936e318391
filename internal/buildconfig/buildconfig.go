package buildconfig

import "fmt"

// Injected via ldflags at release build time.
var (
	version = "0.0.0-dev"
	commit  = ""
)

// Version is the bare release version. The scoring engine stamps it
// into every outcome contract's audit block.
func Version() string {
	return version
}

// String renders the version with the commit suffix when one was
// stamped, for CLI version output.
func String() string {
	if commit == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}
