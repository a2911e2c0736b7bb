package audio

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ResolveBinary finds name on PATH, then in the per-user and system install
// locations pip and package managers commonly use. The bare name is returned
// with false when nothing is found.
func ResolveBinary(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if strings.ContainsRune(name, os.PathSeparator) {
		if isExecutableFile(name) {
			return name, true
		}
		return name, false
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, true
	}
	for _, dir := range fallbackDirs() {
		candidate := filepath.Join(dir, name)
		if isExecutableFile(candidate) {
			return candidate, true
		}
	}
	return name, false
}

func fallbackDirs() []string {
	dirs := make([]string, 0, 3)
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"), filepath.Join(home, ".pyenv", "shims"))
	}
	return append(dirs, "/usr/local/bin")
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
