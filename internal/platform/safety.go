package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDir is the directory, under the system temp dir, that receives backing
// files relocated by the dev sandbox.
const DevDir = "hbnb-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolvePath determines where the backing file actually lives. With
// forceTemp, a path outside the system temp directory is re-rooted under
// DevDir, keeping only its file name.
func ResolvePath(path string, forceTemp bool) string {
	if path == "" {
		path = "file.json"
	}
	if !forceTemp {
		return path
	}

	clean := filepath.Clean(path)
	if abs, err := filepath.Abs(clean); err == nil {
		if rel, err := filepath.Rel(os.TempDir(), abs); err == nil && !strings.HasPrefix(rel, "..") {
			return clean
		}
	}
	return filepath.Join(os.TempDir(), DevDir, filepath.Base(clean))
}
