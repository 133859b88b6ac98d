package version

// Version is set at build time via ldflags:
//
//	-ldflags "-X github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/version.Version=v1.0.0"
//
// When built without ldflags it defaults to "dev".
var Version = "dev"

// String is the banner printed by `secscan version`.
func String() string {
	return "secscan " + Version
}
