package facts

import (
	"os"
	"path/filepath"
	"strings"
)

// FunctionDirs lists the function subdirectories of a crate's fact
// directory. Entries whose name starts with a dot are not functions.
func FunctionDirs(factsDir string) ([]string, error) {
	entries, err := os.ReadDir(factsDir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(factsDir, e.Name())
		if !isDir(e, path) {
			continue
		}
		dirs = append(dirs, path)
	}
	return dirs, nil
}

func isDir(e os.DirEntry, path string) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Missing returns the relation files absent from a crate's fact directory.
// If factsDir is not a directory at all, it is returned as the only entry.
// An empty result means every function is complete.
func Missing(factsDir string) ([]string, error) {
	info, err := os.Stat(factsDir)
	if err != nil || !info.IsDir() {
		return []string{factsDir}, nil
	}

	fns, err := FunctionDirs(factsDir)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, fn := range fns {
		missing = append(missing, MissingIn(fn)...)
	}
	return missing, nil
}

// MissingIn returns the relation files absent from one function directory.
func MissingIn(functionDir string) []string {
	var missing []string
	for _, r := range Relations() {
		path := filepath.Join(functionDir, r.FileName())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, path)
		}
	}
	return missing
}
