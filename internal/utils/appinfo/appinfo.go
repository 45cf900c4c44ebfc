// Package appinfo provides application information utilities
package appinfo

import (
	"os"
	"runtime/debug"
)

// Version is set at build time with -ldflags "-X .../appinfo.Version=1.2.3"
var Version = ""

// GetVersion returns the application version
// It checks for the following in order:
// 1. Version set via -ldflags
// 2. APP_VERSION environment variable
// 3. Build info from debug.BuildInfo (module version, then vcs.revision)
// 4. Defaults to "0.0.0-unknown"
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return shortRevision(setting.Value)
			}
		}
	}

	return "0.0.0-unknown"
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
