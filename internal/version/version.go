// Package version reports which gateway build is running.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set via -ldflags "-X". Unset values fall back to the VCS stamp Go embeds
// in the binary.
//
//nolint:revive
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

const unknown = "unknown"

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get returns the build info of the running binary.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fromBuildSettings(info, bi.Settings)
	}
	if info.Commit == "" {
		info.Commit = unknown
	}
	if info.Date == "" {
		info.Date = unknown
	}
	return info
}

// fromBuildSettings fills commit and date left empty by ldflags from the
// vcs.revision and vcs.time settings. A dirty tree marks the commit.
func fromBuildSettings(info Info, settings []debug.BuildSetting) Info {
	var revision, vcsTime string
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			vcsTime = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if info.Commit == "" && revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if dirty {
			revision += "-dirty"
		}
		info.Commit = revision
	}
	if info.Date == "" {
		info.Date = vcsTime
	}
	return info
}
