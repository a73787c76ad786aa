// Package version carries build metadata. The values are overridden at
// release time via -ldflags; the engine receives them explicitly at
// construction instead of reading process-wide state.
package version

var (
	Version = "dev"
	Commit  = "unknown"
)

// Info is the build metadata handed to the engine and stamped into reports.
type Info struct {
	Version string
	Commit  string
}

func Current() Info {
	return Info{Version: Version, Commit: Commit}
}

func (i Info) String() string {
	if i.Commit == "" || i.Commit == "unknown" {
		return i.Version
	}
	return i.Version + " (" + i.Commit + ")"
}
