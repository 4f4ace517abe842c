package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError reports which safety rule a candidate deletion path
// broke. Validation failures must block the filesystem operation
// unconditionally.
type ValidationError struct {
	Rule string
	Path string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("path validation failed (%s): %s", e.Rule, e.Path)
}

// NormalizePath converts all path separators to forward slashes.
// Go's os.Open/os.Stat accept forward slashes on all platforms.
func NormalizePath(p string) string {
	return filepath.ToSlash(p)
}

// Validate accepts a candidate deletion path only when a root is
// configured, the path is absolute, the raw path carries no
// parent-directory traversal segment, and the cleaned path stays under
// the cleaned root. This is the sole guard between remote-reported
// destinations and local deletion.
func Validate(root, path string) error {
	if root == "" {
		return &ValidationError{Rule: "no root configured", Path: path}
	}

	if containsTraversal(path) {
		return &ValidationError{Rule: "parent directory traversal", Path: path}
	}

	if !filepath.IsAbs(path) {
		return &ValidationError{Rule: "path not absolute", Path: path}
	}

	cleanRoot := NormalizePath(filepath.Clean(root))
	cleanPath := NormalizePath(filepath.Clean(path))
	if cleanPath != cleanRoot && !strings.HasPrefix(cleanPath, cleanRoot+"/") {
		return &ValidationError{Rule: "outside configured root", Path: path}
	}

	return nil
}

// Join places a remote-reported destination under root and validates
// the result. The raw destination is checked for traversal segments
// before joining, because filepath.Join would resolve them away.
func Join(root, destination string) (string, error) {
	if containsTraversal(destination) {
		return "", &ValidationError{Rule: "parent directory traversal", Path: destination}
	}
	joined := filepath.Join(root, destination)
	if err := Validate(root, joined); err != nil {
		return "", err
	}
	return joined, nil
}

// containsTraversal checks the raw, pre-clean path so that segments
// like "a/../../b" are rejected even when Clean would resolve them.
func containsTraversal(path string) bool {
	for _, seg := range strings.Split(NormalizePath(path), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
