package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/survey.planner/internal/fsutil"
	"github.com/banshee-data/survey.planner/internal/security"
)

// Export file extensions.
const (
	ExtJSON = ".json"
	ExtPNG  = ".png"
	ExtHTML = ".html"
)

// Exporter writes plan artefacts under Dir. Every path is checked to stay
// inside Dir (following symlinks) and to carry the expected extension
// before anything is written.
type Exporter struct {
	FS  fsutil.FileSystem
	Dir string
}

// NewExporter returns an Exporter on the real filesystem.
func NewExporter(dir string) *Exporter {
	return &Exporter{FS: fsutil.OSFileSystem{}, Dir: dir}
}

// Path resolves name against Dir. An empty name becomes the sanitised
// fallback plus ext; relative names are joined to Dir; absolute names must
// already be inside it.
func (e *Exporter) Path(name, fallback, ext string) (string, error) {
	if name == "" {
		return security.ExportPath(e.Dir, fallback, ext)
	}
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(e.Dir, p)
	}
	if err := security.ValidateExportPath(p, e.Dir, ext); err != nil {
		return "", err
	}
	return p, nil
}

// JSON writes v as indented JSON and returns the path written.
func (e *Exporter) JSON(name, fallback string, v any) (string, error) {
	p, err := e.Path(name, fallback, ExtJSON)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", p, err)
	}
	if err := e.FS.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", err
	}
	if err := e.FS.WriteFile(p, append(data, '\n'), 0644); err != nil {
		return "", err
	}
	return p, nil
}

// PlanView writes the PNG plan view.
func (e *Exporter) PlanView(name, fallback string, in Input) (string, error) {
	p, err := e.Path(name, fallback, ExtPNG)
	if err != nil {
		return "", err
	}
	if err := e.create(p, func(w io.Writer) error { return WritePlanView(in, w) }); err != nil {
		return "", err
	}
	return p, nil
}

// HTML writes the interactive report page.
func (e *Exporter) HTML(name, fallback string, in Input) (string, error) {
	p, err := e.Path(name, fallback, ExtHTML)
	if err != nil {
		return "", err
	}
	if err := e.create(p, func(w io.Writer) error { return RenderHTML(in, w) }); err != nil {
		return "", err
	}
	return p, nil
}

func (e *Exporter) create(path string, render func(io.Writer) error) error {
	if err := e.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := e.FS.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
