// Package misc holds build time information about the program.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set by the linker: -ldflags "-X idmlc/misc.version=... -X idmlc/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
	appName = "idmlc"
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns commit the program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name without extension, falls back to the
// compiled in name when executable cannot be determined.
func GetAppName() string {
	if exe, err := os.Executable(); err == nil {
		name := strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
		if len(name) > 0 && !strings.HasSuffix(name, ".test") {
			return name
		}
	}
	return appName
}
