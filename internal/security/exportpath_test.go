package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plots"), 0o755))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"file in dir", filepath.Join(dir, "plan.json"), false},
		{"missing file in subdir", filepath.Join(dir, "plots", "plan.png"), false},
		{"missing nested dirs", filepath.Join(dir, "a", "b", "plan.png"), false},
		{"dot dot escape", filepath.Join(dir, "..", "plan.json"), true},
		{"absolute elsewhere", "/etc/passwd", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.path, dir)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPathTraversal)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Error(t, ValidatePathWithinDirectory(filepath.Join(dir, "x"), filepath.Join(dir, "missing")))
}

func TestValidatePathWithinDirectory_Symlink(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(dir, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	err := ValidatePathWithinDirectory(filepath.Join(link, "plan.json"), dir)
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestValidateExportPath(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, ValidateExportPath(filepath.Join(dir, "plan.PNG"), dir, ".png"))
	assert.NoError(t, ValidateExportPath(filepath.Join(dir, "plan.anything"), dir))
	assert.ErrorIs(t, ValidateExportPath(filepath.Join(dir, "plan.txt"), dir, ".png", ".html"), ErrExtension)
}

func TestExportPath(t *testing.T) {
	dir := t.TempDir()
	p, err := ExportPath(dir, "../../mission 7/north field", ".json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mission_7_north_field.json"), p)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unknown"},
		{"plan-01.json", "plan-01.json"},
		{"../etc/passwd", "etc_passwd"},
		{"north  field / east", "north_field_east"},
		{"...___", "unknown"},
		{"café", "caf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
