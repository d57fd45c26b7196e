package richprompt

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// NormalizeWildcardPath turns a wildcard identifier into its canonical relative path:
// backslashes become "/", repeated and leading separators are dropped, and a trailing
// ".txt" extension is removed. Case is preserved.
func NormalizeWildcardPath(identifier string) string {
	p := strings.TrimSpace(identifier)
	p = strings.ReplaceAll(p, `\`, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	if strings.HasSuffix(strings.ToLower(p), ".txt") {
		p = p[:len(p)-len(".txt")]
	}
	return p
}

// ResolveWildcardFile maps a wildcard identifier to the text file under dir.
//
// Resolution order:
// 1. Reject identifiers that climb out of dir
// 2. Exact "<identifier>.txt" under dir
// 3. Case-insensitive match of each path segment
// 4. Return ErrFileNotFound
func ResolveWildcardFile(dir, identifier string) (string, error) {
	rel := NormalizeWildcardPath(identifier)
	if rel == "" {
		return "", ErrFileNotFound
	}
	if containsDirectoryTraversal(rel) {
		return "", ErrDirectoryTraversal
	}

	candidate := filepath.Join(dir, filepath.FromSlash(rel)+".txt")
	if fileExists(candidate) {
		return candidate, nil
	}

	if found, ok := findFold(dir, strings.Split(rel+".txt", "/")); ok {
		return found, nil
	}
	return "", ErrFileNotFound
}

func containsDirectoryTraversal(rel string) bool {
	if path.IsAbs(rel) || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return true
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// findFold walks dir one segment at a time, matching names case-insensitively.
func findFold(dir string, segments []string) (string, bool) {
	current := dir
	for i, seg := range segments {
		entries, err := os.ReadDir(current)
		if err != nil {
			return "", false
		}
		last := i == len(segments)-1
		next := ""
		for _, e := range entries {
			if e.IsDir() == last {
				continue
			}
			if strings.EqualFold(e.Name(), seg) {
				next = filepath.Join(current, e.Name())
				break
			}
		}
		if next == "" {
			return "", false
		}
		current = next
	}
	return current, true
}

func fileExists(name string) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
