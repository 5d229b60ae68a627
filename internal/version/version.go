// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// Info is a snapshot of the build metadata.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// Current returns the metadata of the running binary.
func Current() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the multi-line form printed by "installez version".
// Unknown commit and build date are omitted.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "installez %s (%s)\n", i.Version, i.Platform)
	if i.Commit != "" {
		fmt.Fprintf(&b, "commit:     %s\n", i.Commit)
	}
	if i.BuildDate != "" {
		fmt.Fprintf(&b, "built:      %s\n", i.BuildDate)
	}
	fmt.Fprintf(&b, "go version: %s\n", i.GoVersion)
	return b.String()
}
