// Package version reports build identity: the release set via -ldflags
// plus whatever VCS metadata the Go toolchain embedded.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time with
// -ldflags "-X github.com/connexa-app/connexa/version.Version=v1.2.3".
var Version = "dev"

// Info is the version payload exposed on the health endpoint.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get assembles the version info from the build metadata.
func Get() Info {
	info := Info{Version: Version}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			commit := s.Value
			if len(commit) > 7 {
				commit = commit[:7]
			}
			info.GitCommit = commit
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// Short returns "version-commit", with a -dirty suffix for local builds.
func Short() string {
	info := Get()
	s := info.Version
	if info.GitCommit != "" {
		s = fmt.Sprintf("%s-%s", s, info.GitCommit)
	}
	if info.Dirty {
		s += "-dirty"
	}
	return s
}
