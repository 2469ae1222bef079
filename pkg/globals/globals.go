// Package globals loads compile-time constant bindings for Soy templates.
//
// Bindings map dotted identifiers to string, integer, float or boolean
// constants. They are loaded once, before compilation, and never change
// afterwards. Three file formats are understood, chosen by extension:
//
//	soyglobals.txt   key = value lines (the Soy globals format)
//	globals.toml     TOML, nested tables flatten to dotted keys
//	globals.yaml     YAML, nested maps flatten to dotted keys
package globals

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/robfig/soy/data"

	"github.com/arthur-debert/soyforge/pkg/errors"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Bindings is an immutable set of global constants
type Bindings struct {
	values map[string]interface{}
	source string
}

// Empty returns bindings with no globals
func Empty() *Bindings {
	return &Bindings{values: map[string]interface{}{}}
}

// LoadFile reads a globals file, picking the parser from its extension
func LoadFile(path string) (*Bindings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "cannot read globals file %s", path).
			WithDetail(errors.DetailPath, path).
			WithDetail(errors.DetailStage, errors.StageConfig)
	}

	var b *Bindings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		b, err = parseTOML(raw, path)
	case ".yaml", ".yml":
		b, err = parseYAML(raw, path)
	default:
		b, err = Parse(strings.NewReader(string(raw)), path)
	}
	if err != nil {
		return nil, err
	}
	b.source = path
	return b, nil
}

// FromMap builds bindings from a nested map. Nested maps flatten to dotted keys.
func FromMap(m map[string]interface{}) (*Bindings, error) {
	b := Empty()
	if err := b.flatten("", m, "map"); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bindings) flatten(prefix string, m map[string]interface{}, origin string) error {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			if err := b.flatten(key, nested, origin); err != nil {
				return err
			}
			continue
		}
		if err := b.set(key, v, origin); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bindings) set(key string, v interface{}, origin string) error {
	if !keyPattern.MatchString(key) {
		return configErr(origin, "invalid global name %q", key)
	}
	if _, dup := b.values[key]; dup {
		return configErr(origin, "global %q is defined more than once", key)
	}
	norm, err := normalize(v)
	if err != nil {
		return configErr(origin, "global %q: %v", key, err)
	}
	b.values[key] = norm
	return nil
}

// normalize narrows a decoded value to string, int64, float64 or bool
func normalize(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string, bool, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	case nil:
		return nil, fmt.Errorf("null is not a constant")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func configErr(origin, format string, args ...interface{}) *errors.ForgeError {
	return errors.Newf(errors.ErrConfiguration, format, args...).
		WithDetail(errors.DetailPath, origin).
		WithDetail(errors.DetailStage, errors.StageConfig)
}

// Source returns the file the bindings were loaded from, if any
func (b *Bindings) Source() string {
	return b.source
}

// Len returns the number of globals
func (b *Bindings) Len() int {
	return len(b.values)
}

// Has reports whether key is bound
func (b *Bindings) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Get returns the constant bound to key
func (b *Bindings) Get(key string) (interface{}, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Keys returns all bound names in sorted order
func (b *Bindings) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values converts the bindings into the soy data model
func (b *Bindings) Values() data.Map {
	m := make(data.Map, len(b.values))
	for k, v := range b.values {
		switch x := v.(type) {
		case string:
			m[k] = data.String(x)
		case int64:
			m[k] = data.Int(x)
		case float64:
			m[k] = data.Float(x)
		case bool:
			m[k] = data.Bool(x)
		}
	}
	return m
}
