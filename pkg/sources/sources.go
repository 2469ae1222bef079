// Package sources holds the ordered set of Soy template sources fed to the
// compiler. A Set only records where sources live; contents are read when the
// set is compiled.
package sources

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/logging"
)

// DefaultPatterns are the file patterns matched by AddDir when none are given
var DefaultPatterns = []string{"*.soy"}

// Source is one template definition file or an in-memory equivalent
type Source struct {
	// Name is the logical name reported in compiler errors
	Name string
	// Path is the file to read; empty for inline sources
	Path string

	content []byte
	inline  bool
}

// Inline reports whether the source was added from memory
func (s Source) Inline() bool {
	return s.inline
}

// Contents is a source paired with the bytes read at compile time
type Contents struct {
	Source
	Text string
}

// Set is an ordered, de-duplicated collection of sources
type Set struct {
	entries []Source
	seen    map[string]struct{}
}

// NewSet creates an empty Set
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// AddFile appends a template file. Adding the same path twice keeps the first entry.
func (s *Set) AddFile(path string) *Set {
	key := filepath.Clean(path)
	if _, ok := s.seen[key]; ok {
		return s
	}
	s.seen[key] = struct{}{}
	s.entries = append(s.entries, Source{Name: key, Path: key})
	return s
}

// AddString appends an inline source under a logical name
func (s *Set) AddString(name, content string) *Set {
	key := "inline:" + name
	if _, ok := s.seen[key]; ok {
		return s
	}
	s.seen[key] = struct{}{}
	s.entries = append(s.entries, Source{Name: name, content: []byte(content), inline: true})
	return s
}

// AddDir walks root recursively and appends every file whose base name matches
// one of patterns, in lexical path order. A missing root is a SOURCE_UNAVAILABLE error.
func (s *Set) AddDir(root string, patterns ...string) error {
	logger := logging.GetLogger("sources")
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := matchAny(patterns, d.Name())
		if err != nil {
			return err
		}
		if ok {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceUnavailable, "cannot scan source directory %s", root).
			WithDetail(errors.DetailPath, root)
	}

	sort.Strings(found)
	for _, path := range found {
		s.AddFile(path)
	}
	logger.Debug().Str("dir", root).Int("count", len(found)).Msg("Added source directory")
	return nil
}

func matchAny(patterns []string, name string) (bool, error) {
	for _, p := range patterns {
		ok, err := filepath.Match(p, name)
		if err != nil {
			return false, errors.Wrapf(err, errors.ErrInvalidInput, "bad source pattern %q", p)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of sources
func (s *Set) Len() int {
	return len(s.entries)
}

// Sources returns a copy of the sources in insertion order
func (s *Set) Sources() []Source {
	out := make([]Source, len(s.entries))
	copy(out, s.entries)
	return out
}

// Read loads every source in order. The first unreadable file aborts with
// SOURCE_UNAVAILABLE naming its path.
func (s *Set) Read() ([]Contents, error) {
	out := make([]Contents, 0, len(s.entries))
	for _, src := range s.entries {
		if src.inline {
			out = append(out, Contents{Source: src, Text: string(src.content)})
			continue
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "cannot read template source %s", src.Path).
				WithDetail(errors.DetailPath, src.Path)
		}
		out = append(out, Contents{Source: src, Text: string(data)})
	}
	return out, nil
}
