// Package misc holds small helpers needed across the program which do not
// deserve a package of their own.
package misc

import (
	"runtime/debug"
)

var (
	appName = "fontwrench"

	// set by the linker during build
	version = ""
	gitHash = ""
)

// GetAppName returns short program name to be used in logs and file names.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, falling back to module build info when
// linker did not provide one.
func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 {
		return bi.Main.Version
	}
	return "unknown"
}

// GetGitHash returns VCS revision recorded in the build.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
