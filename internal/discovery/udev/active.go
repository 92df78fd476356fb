// internal/discovery/udev/active.go
package udev

import (
	"os"
	"path/filepath"
)

// DefaultByPathDir holds the kernel's stable per-port symlinks
const DefaultByPathDir = "/dev/serial/by-path"

// ActiveDevices returns the resolved device nodes linked from dir.
// Any access failure, including a single link that cannot be resolved,
// yields an empty set.
func ActiveDevices(dir string) map[string]struct{} {
	active := make(map[string]struct{})

	entries, err := os.ReadDir(dir)
	if err != nil {
		return active
	}

	for _, entry := range entries {
		target, err := filepath.EvalSymlinks(filepath.Join(dir, entry.Name()))
		if err != nil {
			return make(map[string]struct{})
		}
		active[target] = struct{}{}
	}

	return active
}
