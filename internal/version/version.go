// Package version reports build metadata for loop.
package version

import (
	"runtime"
	"runtime/debug"
)

// Overridden at link time with -X.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	commit, date := Commit, Date
	if commit == "none" {
		if rev, at, ok := vcsInfo(); ok {
			commit, date = rev, at
		}
	}
	return "loop " + Version + " (commit=" + commit + ", date=" + date +
		", go=" + runtime.Version() + ", " + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

// vcsInfo falls back to the revision stamped by go build.
func vcsInfo() (revision string, at string, ok bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}
	at = "unknown"
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
			if len(revision) > 12 {
				revision = revision[:12]
			}
		case "vcs.time":
			at = s.Value
		}
	}
	return revision, at, revision != ""
}
