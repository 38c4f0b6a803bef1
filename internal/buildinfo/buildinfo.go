// Package buildinfo carries the firmware version shown in the boot banner.
package buildinfo

// Version and Commit are overridden with
// -ldflags "-X octopus/internal/buildinfo.Version=...".
var (
	Version = "0.0.1"
	Commit  = ""
)

// Short returns the version, with the commit appended when one was stamped.
func Short() string {
	if Commit == "" {
		return Version
	}
	if len(Commit) > 7 {
		return Version + "+" + Commit[:7]
	}
	return Version + "+" + Commit
}
