package buildconfig

// Set at build time via -ldflags "-X .../buildconfig.version=... -X .../buildconfig.commit=...".
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the release version of this build.
func Version() string { return version }

// Commit returns the git commit this build was produced from.
func Commit() string { return commit }
