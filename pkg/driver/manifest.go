package driver

import (
	"github.com/arthur-debert/soyforge/pkg/config"
	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/globals"
	"github.com/arthur-debert/soyforge/pkg/output"
	"github.com/arthur-debert/soyforge/pkg/sources"
)

// FromManifest builds a Driver from a loaded manifest. The manifest's output
// settings become defaults; opts are applied after them and win.
func FromManifest(m *config.Manifest, opts ...Option) (*Driver, error) {
	set, err := SourcesFromManifest(m)
	if err != nil {
		return nil, err
	}

	g := globals.Empty()
	if m.Globals.File != "" {
		g, err = globals.LoadFile(m.Globals.File)
		if err != nil {
			return nil, err
		}
	}

	artifacts := make([]Artifact, len(m.Artifacts))
	for i, a := range m.Artifacts {
		artifacts[i] = Artifact{
			Template: a.Template,
			Path:     a.Path,
			Encoding: a.Encoding,
			Indent:   a.Indent,
			Data:     a.Data,
		}
	}

	base := []Option{
		WithWriter(&output.Writer{CreateDirs: m.Output.CreateDirs}),
		WithWorkers(m.Output.Workers),
		WithMarkupChecks(m.Output.ValidateMarkup),
	}
	return New(set, g, artifacts, append(base, opts...)...), nil
}

// SourcesFromManifest collects the manifest's files, then its directories,
// into a source set
func SourcesFromManifest(m *config.Manifest) (*sources.Set, error) {
	if m == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no manifest")
	}
	set := sources.NewSet()
	for _, f := range m.Sources.Files {
		set.AddFile(f)
	}
	for _, d := range m.Sources.Dirs {
		if err := set.AddDir(d, m.Sources.Patterns...); err != nil {
			return nil, err
		}
	}
	return set, nil
}
