package config

import (
	"path/filepath"

	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/paths"
)

// Manifest is a fully merged and resolved project configuration
type Manifest struct {
	Sources   Sources    `koanf:"sources"`
	Globals   Globals    `koanf:"globals"`
	Output    Output     `koanf:"output"`
	Artifacts []Artifact `koanf:"artifacts"`

	// Dir is the directory relative paths were resolved against
	Dir string `koanf:"-"`
	// Files lists the configuration files that were merged, in load order
	Files []string `koanf:"-"`
}

// Sources selects the Soy files to compile
type Sources struct {
	Files    []string `koanf:"files"`
	Dirs     []string `koanf:"dirs"`
	Patterns []string `koanf:"patterns"`
}

// Globals points at the compile-time constants file
type Globals struct {
	File string `koanf:"file"`
}

// Output holds settings shared by every artifact
type Output struct {
	Encoding       string `koanf:"encoding"`
	CreateDirs     bool   `koanf:"create_dirs"`
	ValidateMarkup bool   `koanf:"validate_markup"`
	Workers        int    `koanf:"workers"`
}

// Artifact is one template rendered to one file
type Artifact struct {
	Template string                 `koanf:"template"`
	Path     string                 `koanf:"path"`
	Encoding string                 `koanf:"encoding"`
	Indent   int                    `koanf:"indent"`
	Data     map[string]interface{} `koanf:"data"`
}

// Validate checks the manifest is complete enough to run
func (m *Manifest) Validate() error {
	if len(m.Sources.Files) == 0 && len(m.Sources.Dirs) == 0 {
		return invalid("manifest lists no template sources")
	}
	if len(m.Artifacts) == 0 {
		return invalid("manifest lists no artifacts")
	}
	if m.Output.Workers < 1 {
		return invalid("output.workers must be at least 1, got %d", m.Output.Workers)
	}

	paths := make(map[string]int, len(m.Artifacts))
	for i, a := range m.Artifacts {
		switch {
		case a.Template == "":
			return invalid("artifact %d has no template", i+1)
		case a.Path == "":
			return invalid("artifact %d (%s) has no path", i+1, a.Template).
				WithDetail(errors.DetailTemplate, a.Template)
		case a.Indent < 0:
			return invalid("artifact %d (%s) has negative indent", i+1, a.Template).
				WithDetail(errors.DetailTemplate, a.Template)
		}
		key := filepath.Clean(a.Path)
		if prev, dup := paths[key]; dup {
			return invalid("artifacts %d and %d both write %s", prev, i+1, a.Path).
				WithDetail(errors.DetailPath, a.Path)
		}
		paths[key] = i + 1
	}
	return nil
}

// resolve makes every relative path absolute against dir and fills in
// per-artifact encodings from the output default
func (m *Manifest) resolve(dir string) {
	m.Dir = dir
	abs := func(p string) string {
		p = paths.ExpandHome(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	for i, f := range m.Sources.Files {
		m.Sources.Files[i] = abs(f)
	}
	for i, d := range m.Sources.Dirs {
		m.Sources.Dirs[i] = abs(d)
	}
	m.Globals.File = abs(m.Globals.File)
	for i := range m.Artifacts {
		m.Artifacts[i].Path = abs(m.Artifacts[i].Path)
		if m.Artifacts[i].Encoding == "" {
			m.Artifacts[i].Encoding = m.Output.Encoding
		}
	}
}

func invalid(format string, args ...interface{}) *errors.ForgeError {
	return errors.Newf(errors.ErrConfigValid, format, args...)
}
