package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/logging"
	"github.com/arthur-debert/soyforge/pkg/render"
)

// DefaultEncoding is used when a Target names none
const DefaultEncoding = "UTF-8"

// Target is where and how an artifact is written
type Target struct {
	Path     string
	Encoding string
}

// Result describes a completed (or, in dry-run mode, simulated) write
type Result struct {
	Path     string
	Encoding string
	Bytes    int
	DryRun   bool
}

// Writer writes rendered output to targets
type Writer struct {
	// DryRun computes the encoded bytes but leaves the filesystem alone
	DryRun bool
	// CreateDirs creates a missing destination directory instead of failing
	CreateDirs bool
}

// writeFile is swapped in tests to inject failures mid-write
var writeFile = replaceFile

// Write transcodes out into t's encoding and replaces t.Path with it
func (w *Writer) Write(out render.Output, t Target) (Result, error) {
	logger := logging.GetLogger("output").With().
		Str("template", out.Template).
		Str("path", t.Path).
		Logger()

	if t.Path == "" {
		return Result{}, errors.New(errors.ErrIO, "artifact has no destination path").
			WithDetail(errors.DetailTemplate, out.Template)
	}

	name, encoded, err := Encode(out.Bytes, t.Encoding)
	if err != nil {
		return Result{}, withPath(err, t.Path)
	}
	res := Result{Path: t.Path, Encoding: name, Bytes: len(encoded), DryRun: w.DryRun}

	if w.DryRun {
		logger.Info().Int("bytes", res.Bytes).Str("encoding", name).Msg("Dry run, not writing artifact")
		return res, nil
	}

	if err := w.ensureDir(filepath.Dir(t.Path)); err != nil {
		return Result{}, err
	}
	if err := writeAtomic(t.Path, bytes.NewReader(encoded)); err != nil {
		return Result{}, err
	}

	logger.Info().Int("bytes", res.Bytes).Str("encoding", name).Msg("Wrote artifact")
	return res, nil
}

func (w *Writer) ensureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return errors.Newf(errors.ErrIO, "destination %s is not a directory", dir).
			WithDetail(errors.DetailPath, dir)
	case os.IsNotExist(err) && w.CreateDirs:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrIO, "cannot create directory %s", dir).
				WithDetail(errors.DetailPath, dir)
		}
		return nil
	case os.IsNotExist(err):
		return errors.Newf(errors.ErrIO, "destination directory %s does not exist", dir).
			WithDetail(errors.DetailPath, dir)
	default:
		return errors.Wrapf(err, errors.ErrIO, "cannot access directory %s", dir).
			WithDetail(errors.DetailPath, dir)
	}
}

// ArtifactMode is the permission given to newly created artifacts. An
// existing destination keeps its own mode.
const ArtifactMode os.FileMode = 0o644

// replaceFile writes r to a temp file beside path and renames it over path
func replaceFile(path string, r io.Reader) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	mode := ArtifactMode
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, "."+name+".tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err = f.Chmod(mode); err != nil {
		return err
	}
	if _, err = io.Copy(f, r); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return atomic.ReplaceFile(tmp, path)
}

// writeAtomic replaces path with the contents of r, or leaves it untouched
func writeAtomic(path string, r io.Reader) error {
	if err := writeFile(path, r); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot write %s", path).
			WithDetail(errors.DetailPath, path)
	}
	return nil
}

// Encode transcodes UTF-8 text into the named IANA encoding and returns the
// canonical encoding name alongside the bytes.
func Encode(text []byte, name string) (string, []byte, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := lookup(name)
	if err != nil {
		return "", nil, err
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil || canonical == "" {
		canonical = strings.ToUpper(name)
	}
	if isUTF8(canonical) {
		return canonical, text, nil
	}

	encoded, err := enc.NewEncoder().Bytes(text)
	if err != nil {
		return "", nil, errors.Wrapf(err, errors.ErrEncoding, "text cannot be represented in %s", canonical).
			WithDetail("encoding", canonical)
	}
	return canonical, encoded, nil
}

func lookup(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEncoding, "unknown encoding %q", name).
			WithDetail("encoding", name)
	}
	if enc == nil {
		return nil, errors.Newf(errors.ErrEncoding, "encoding %q is not supported", name).
			WithDetail("encoding", name)
	}
	return enc, nil
}

func isUTF8(name string) bool {
	return strings.EqualFold(name, "UTF-8") || strings.EqualFold(name, "UTF8")
}

func withPath(err error, path string) error {
	if fe, ok := err.(*errors.ForgeError); ok {
		return fe.WithDetail(errors.DetailPath, path)
	}
	return err
}
