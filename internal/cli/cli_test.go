package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/testutil"
)

const windmillSoy = `{namespace windmill.templates}

/**
 * Icon sprites.
 */
{template .icons}
<svg xmlns="http://www.w3.org/2000/svg"><symbol id="mill"/></svg>
{/template}

/**
 * Brand logo.
 * @param? size
 */
{template .logo}
<svg xmlns="http://www.w3.org/2000/svg" fill="{BRAND_COLOR}" width="{$size ?: 64}"/>
{/template}
`

const manifest = `
[sources]
files = ["src/windmill.soy"]

[globals]
file = "dist/soyglobals.txt"

[[artifacts]]
template = "windmill.templates.icons"
path = "static/witness.svg"

[[artifacts]]
template = "windmill.templates.logo"
path = "static/logo.svg"
`

type project struct {
	dir      string
	manifest string
}

func newProject(t *testing.T, soy string) project {
	t.Helper()
	testutil.Isolate(t)
	dir := testutil.TempTree(t, testutil.FileTree{
		"src/windmill.soy":    soy,
		"dist/soyglobals.txt": "BRAND_COLOR = '#1e90ff'\n",
		"soyforge.toml":       manifest,
		"static/":             "",
	})
	return project{dir: dir, manifest: filepath.Join(dir, "soyforge.toml")}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuild(t *testing.T) {
	p := newProject(t, windmillSoy)

	out, err := run(t, "build", "-c", p.manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "static/witness.svg")
	assert.Contains(t, out, "windmill.templates.logo")
	assert.Contains(t, out, "2 artifact(s)")

	logo, err := os.ReadFile(filepath.Join(p.dir, "static", "logo.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(logo), `fill="#1e90ff"`)
}

func TestBuildDryRun(t *testing.T) {
	p := newProject(t, windmillSoy)

	out, err := run(t, "build", "-c", p.manifest, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN MODE")
	assert.NoFileExists(t, filepath.Join(p.dir, "static", "logo.svg"))
}

func TestBuildCorruptTemplate(t *testing.T) {
	corrupt := strings.Replace(windmillSoy, `width="{$size ?: 64}"`, `width="{$size ?: }"`, 1)
	p := newProject(t, corrupt)

	_, err := run(t, "build", "-c", p.manifest)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCompilation, errors.GetErrorCode(err))
	assert.True(t, strings.HasPrefix(FormatError(err), "compile failed: "))

	assert.NoFileExists(t, filepath.Join(p.dir, "static", "witness.svg"))
	assert.NoFileExists(t, filepath.Join(p.dir, "static", "logo.svg"))
}

func TestBuildMissingDirectory(t *testing.T) {
	p := newProject(t, windmillSoy)
	require.NoError(t, os.RemoveAll(filepath.Join(p.dir, "static")))

	_, err := run(t, "build", "-c", p.manifest)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(FormatError(err), "write failed: "))

	_, err = run(t, "build", "-c", p.manifest, "--create-dirs")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(p.dir, "static", "logo.svg"))
}

func TestBuildNoManifest(t *testing.T) {
	testutil.Isolate(t)
	_, err := run(t, "build", "-c", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(FormatError(err), "config failed: "))
}

func TestList(t *testing.T) {
	p := newProject(t, windmillSoy)

	out, err := run(t, "list", "-c", p.manifest, "--globals")
	require.NoError(t, err)
	assert.Contains(t, out, "windmill.templates.icons")
	assert.Contains(t, out, "windmill.templates.logo")
	assert.Contains(t, out, "size")
	assert.Contains(t, out, "BRAND_COLOR")
}

func TestRender(t *testing.T) {
	p := newProject(t, windmillSoy)

	out, err := run(t, "render", "windmill.templates.logo", "-c", p.manifest, "--set", "size=32")
	require.NoError(t, err)
	assert.Contains(t, out, `width="32"`)

	target := filepath.Join(p.dir, "out.svg")
	_, err = run(t, "render", "windmill.templates.logo", "-c", p.manifest, "--out", target)
	require.NoError(t, err)
	assert.FileExists(t, target)

	_, err = run(t, "render", "windmill.templates.nope", "-c", p.manifest)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTemplateNotFound, errors.GetErrorCode(err))
}

func TestLoadParams(t *testing.T) {
	data := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(data, []byte("title: Home\nsize: 8\n"), 0o644))

	params, err := loadParams(data, []string{"size=32", "color=#fff", "flag=true"})
	require.NoError(t, err)
	assert.Equal(t, "Home", params["title"])
	assert.Equal(t, 32, params["size"])
	assert.Equal(t, "#fff", params["color"])
	assert.Equal(t, true, params["flag"])

	_, err = loadParams("", []string{"novalue"})
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	testutil.Isolate(t)
	dir := t.TempDir()

	out, err := run(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "soyforge.toml")
	assert.FileExists(t, filepath.Join(dir, "soyforge.toml"))

	_, err = run(t, "init", dir)
	require.Error(t, err)
}

func TestInitWriteFailureRemovesFile(t *testing.T) {
	testutil.Isolate(t)
	dir := t.TempDir()

	orig := writeStarter
	t.Cleanup(func() { writeStarter = orig })
	writeStarter = func(f *os.File, content string) error {
		_, _ = f.WriteString(content[:10])
		return fmt.Errorf("disk full")
	}

	_, err := run(t, "init", dir)
	require.Error(t, err)
	assert.Equal(t, errors.ErrIO, errors.GetErrorCode(err))
	assert.NoFileExists(t, filepath.Join(dir, "soyforge.toml"))

	writeStarter = orig
	_, err = run(t, "init", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "soyforge.toml"))
}

func TestVersionAndHelpTopics(t *testing.T) {
	testutil.Isolate(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "soyforge version")

	out, err = run(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "errors")
	assert.Contains(t, out, "globals")
	assert.Contains(t, out, "manifest")

	out, err = run(t, "help", "globals")
	require.NoError(t, err)
	assert.Contains(t, out, "BRAND_COLOR")
}

func TestFormatError(t *testing.T) {
	err := errors.New(errors.ErrIO, "destination directory missing").
		WithDetail(errors.DetailPath, "/tmp/x").
		WithDetail(errors.DetailTemplate, "site.page")
	assert.Equal(t,
		"write failed: [IO] destination directory missing (path=/tmp/x, template=site.page)",
		FormatError(err))

	named := errors.New(errors.ErrTemplateNotFound, "template site.nope not found").
		WithDetail(errors.DetailTemplate, "site.nope")
	assert.Equal(t, "render failed: [TEMPLATE_NOT_FOUND] template site.nope not found", FormatError(named))
}

func TestCompletionAndMan(t *testing.T) {
	testutil.Isolate(t)

	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "soyforge")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)

	out, err = run(t, "man")
	require.NoError(t, err)
	assert.Contains(t, out, "SOYFORGE")
}
