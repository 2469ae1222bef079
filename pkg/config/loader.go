package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/logging"
	"github.com/arthur-debert/soyforge/pkg/paths"
)

// EnvPrefix marks environment variables that override manifest values
const EnvPrefix = "SOYFORGE_"

// ManifestNames are tried in order when no explicit manifest is given
var ManifestNames = []string{"soyforge.toml", ".soyforge.toml", "soyforge.yaml"}

// Options control where Load looks for configuration
type Options struct {
	// File is an explicit manifest path; it must exist
	File string
	// WorkDir is searched for ManifestNames when File is empty. Defaults to
	// the process working directory.
	WorkDir string
	// Overrides are applied last, keyed by dotted path ("output.workers")
	Overrides map[string]interface{}
}

// Load merges every configuration layer into a validated Manifest
func Load(opts Options) (*Manifest, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")
	var files []string

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load defaults")
	}

	// 2. User config
	if path := paths.UserConfigFile(); fileExists(path) {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	// 3. Project manifest
	path, err := findManifest(opts)
	if err != nil {
		return nil, err
	}
	if err := loadFile(k, path); err != nil {
		return nil, err
	}
	files = append(files, path)

	// 4. Environment
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 5. Caller overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var m Manifest
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &m,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &m, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode manifest").
			WithDetail(errors.DetailPath, path)
	}

	m.Files = files
	m.resolve(filepath.Dir(path))
	if err := m.Validate(); err != nil {
		return nil, withPath(err, path)
	}

	logger.Debug().
		Strs("files", files).
		Int("artifacts", len(m.Artifacts)).
		Msg("Loaded manifest")
	return &m, nil
}

func findManifest(opts Options) (string, error) {
	if opts.File != "" {
		abs, err := filepath.Abs(paths.ExpandHome(opts.File))
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "bad manifest path %s", opts.File)
		}
		if !fileExists(abs) {
			return "", errors.Newf(errors.ErrConfigLoad, "manifest %s does not exist", opts.File).
				WithDetail(errors.DetailPath, opts.File)
		}
		return abs, nil
	}

	dir := opts.WorkDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrConfigLoad, "cannot determine working directory")
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigLoad, "bad working directory %s", dir)
	}

	for _, name := range ManifestNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path, nil
		}
	}
	return "", errors.Newf(errors.ErrConfigLoad, "no manifest found in %s (looked for %s)",
		dir, strings.Join(ManifestNames, ", ")).
		WithDetail(errors.DetailPath, dir)
}

func loadFile(k *koanf.Koanf, path string) error {
	parser := koanf.Parser(toml.Parser())
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load %s", path).
			WithDetail(errors.DetailPath, path)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func withPath(err error, path string) error {
	if fe, ok := err.(*errors.ForgeError); ok {
		if _, set := fe.Details[errors.DetailPath]; !set {
			fe.WithDetail(errors.DetailPath, path)
		}
		return fe
	}
	return err
}
