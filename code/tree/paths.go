package tree

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Normalize converts a plan or snapshot path to canonical form:
// forward slashes, cleaned, with a leading "/" relative to the target
// root. It fails when the path would escape the root (".." past the
// top) or is empty after cleaning.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(filepath.ToSlash(raw))
	if s == "" {
		return "", errors.New("empty path")
	}
	s = strings.TrimPrefix(s, "/")
	cleaned := path.Clean(s)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.Errorf("path escapes the target root: %s", raw)
	}
	if cleaned == "." {
		return "/", nil
	}
	return "/" + cleaned, nil
}

// OSPath converts a normalized root-relative path back to an OS-native
// absolute path under rootPath.
func OSPath(rootPath, normalized string) string {
	rel := strings.TrimPrefix(normalized, "/")
	if rel == "" {
		return filepath.Clean(rootPath)
	}
	return filepath.Join(rootPath, filepath.FromSlash(rel))
}

// Parent returns the normalized parent directory of a normalized path.
func Parent(normalized string) string {
	p := path.Dir(normalized)
	if p == "." || p == "" {
		return "/"
	}
	return p
}

// Base returns the last element of a normalized path.
func Base(normalized string) string {
	return path.Base(normalized)
}

// IsAncestor reports whether ancestor strictly contains descendant.
func IsAncestor(ancestor, descendant string) bool {
	if ancestor == "/" {
		return descendant != "/"
	}
	return strings.HasPrefix(descendant, ancestor+"/")
}
