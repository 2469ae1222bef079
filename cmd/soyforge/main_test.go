package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/soyforge/pkg/testutil"
)

const envRunMain = "BE_SOYFORGE_MAIN"

func TestMain(m *testing.M) {
	if args, ok := os.LookupEnv(envRunMain); ok {
		os.Args = append([]string{"soyforge"}, strings.Fields(args)...)
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// runMain re-executes the test binary as soyforge in dir and returns its exit code
func runMain(t *testing.T, dir string, args ...string) (int, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0])
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), envRunMain+"="+strings.Join(args, " "))
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), string(out)
	}
	require.NoError(t, err)
	return 0, string(out)
}

const logoSoy = `{namespace site}

/** Logo. */
{template .logo}
<svg xmlns="http://www.w3.org/2000/svg"/>
{/template}
`

const manifest = `[sources]
dirs = ["templates"]

[[artifacts]]
template = "site.logo"
path = "out/logo.svg"
`

func TestExitCodes(t *testing.T) {
	testutil.Isolate(t)

	t.Run("success_exits_zero", func(t *testing.T) {
		dir := testutil.TempTree(t, testutil.FileTree{
			"soyforge.toml":      manifest,
			"templates/site.soy": logoSoy,
			"out/":               "",
		})
		code, out := runMain(t, dir, "build")
		assert.Equal(t, 0, code, out)
		assert.FileExists(t, filepath.Join(dir, "out", "logo.svg"))
	})

	t.Run("corrupt_template_exits_nonzero", func(t *testing.T) {
		dir := testutil.TempTree(t, testutil.FileTree{
			"soyforge.toml":      manifest,
			"templates/site.soy": "{namespace site}\n/** Logo. */\n{template .logo}\n",
			"out/":               "",
		})
		code, out := runMain(t, dir, "build")
		assert.Equal(t, 1, code)
		assert.Contains(t, out, "compile failed")
		assert.NoFileExists(t, filepath.Join(dir, "out", "logo.svg"))
	})

	t.Run("missing_manifest_exits_nonzero", func(t *testing.T) {
		code, _ := runMain(t, t.TempDir(), "build")
		assert.Equal(t, 1, code)
	})
}
