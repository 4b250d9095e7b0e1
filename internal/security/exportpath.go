// Package security guards the file paths the planner writes exports to.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrPathTraversal is returned when a path resolves outside its
	// output directory.
	ErrPathTraversal = errors.New("path escapes output directory")
	// ErrExtension is returned when an export path has the wrong extension.
	ErrExtension = errors.New("unexpected file extension")
)

// canonical returns the absolute, symlink-resolved form of path. When path
// does not exist yet, the nearest existing parent is resolved and the
// remaining components are re-attached, so a missing file under a
// symlinked directory still resolves to the symlink target.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	for dir := abs; ; {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rel, err := filepath.Rel(parent, abs)
			if err != nil {
				return "", err
			}
			return filepath.Join(resolved, rel), nil
		}
		dir = parent
	}
}

// ValidatePathWithinDirectory checks that filePath resolves inside safeDir,
// following symlinks on both sides. safeDir must exist.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	target, err := canonical(filePath)
	if err != nil {
		return err
	}
	absDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	dir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory symlinks: %w", err)
	}

	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is not under %s", ErrPathTraversal, filePath, safeDir)
	}
	return nil
}

// ValidateExportPath checks that filePath lives under outDir and carries
// one of the allowed extensions (compared case-insensitively, with dot).
func ValidateExportPath(filePath, outDir string, allowedExt ...string) error {
	if len(allowedExt) > 0 {
		ext := strings.ToLower(filepath.Ext(filePath))
		ok := false
		for _, a := range allowedExt {
			if ext == strings.ToLower(a) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: %q (want one of %v)", ErrExtension, ext, allowedExt)
		}
	}
	return ValidatePathWithinDirectory(filePath, outDir)
}

// ExportPath builds outDir/<sanitised name><ext> and validates it.
func ExportPath(outDir, name, ext string) (string, error) {
	p := filepath.Join(outDir, SanitizeFilename(name)+ext)
	if err := ValidateExportPath(p, outDir, ext); err != nil {
		return "", err
	}
	return p, nil
}

// SanitizeFilename keeps ASCII letters, digits, dot, underscore and dash,
// collapses every other run of characters into one underscore, trims
// leading and trailing dots and underscores, and caps the length at 128.
// Empty results become "unknown".
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case r < 128 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '_' || r == '-'):
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
