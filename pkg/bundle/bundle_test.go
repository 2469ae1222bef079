package bundle_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/robfig/soy/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/soyforge/pkg/bundle"
	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/globals"
	"github.com/arthur-debert/soyforge/pkg/sources"
)

const windmill = `
{namespace windmill.templates}

/**
 * Icon sprite sheet.
 */
{template .icons}
<svg xmlns="http://www.w3.org/2000/svg"><title>icons</title></svg>
{/template}

/**
 * Logo.
 * @param? size
 */
{template .logo}
<svg xmlns="http://www.w3.org/2000/svg" fill="{BRAND_COLOR}">{call .mark}{param size: $size ?: 16 /}{/call}</svg>
{/template}

/**
 * @param size
 */
{template .mark}
<rect width="{$size}"/>
{/template}
`

func brand(t *testing.T) *globals.Bindings {
	t.Helper()
	g, err := globals.FromMap(map[string]interface{}{"BRAND_COLOR": "#0af"})
	require.NoError(t, err)
	return g
}

func TestCompile(t *testing.T) {
	set := sources.NewSet().AddString("windmill.soy", windmill)

	b, err := bundle.Compile(set, brand(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"windmill.templates.icons",
		"windmill.templates.logo",
		"windmill.templates.mark",
	}, b.Names())
	assert.True(t, b.Has("windmill.templates.logo"))
	assert.False(t, b.Has("windmill.templates.missing"))
	assert.Equal(t, "#0af", b.Globals().Values()["BRAND_COLOR"].String())

	logo, ok := b.Template("windmill.templates.logo")
	require.True(t, ok)
	assert.Equal(t, "windmill.templates", logo.Namespace)
	assert.Empty(t, logo.Required)
	assert.Equal(t, []string{"size"}, logo.Optional)
	assert.Equal(t, []string{"windmill.templates.mark"}, logo.Calls)

	mark, _ := b.Template("windmill.templates.mark")
	assert.Equal(t, []string{"size"}, mark.Required)
}

func TestCompileIsDeterministic(t *testing.T) {
	compile := func() []byte {
		set := sources.NewSet().AddString("windmill.soy", windmill)
		b, err := bundle.Compile(set, brand(t))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, b.Execute(&buf, "windmill.templates.logo", data.Map{"size": data.Int(32)}))
		return buf.Bytes()
	}

	first := compile()
	assert.Contains(t, string(first), `fill="#0af"`)
	assert.Contains(t, string(first), `width="32"`)
	assert.Equal(t, first, compile())
}

func TestCompileAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.soy"), []byte(`
{namespace site.a}

/** Page. */
{template .page}
<p>{call site.b.footer /}</p>
{/template}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.soy"), []byte(`
{namespace site.b}

/** Footer. */
{template .footer}
footer
{/template}
`), 0o644))

	set := sources.NewSet()
	require.NoError(t, set.AddDir(dir))

	b, err := bundle.Compile(set, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"site.a.page", "site.b.footer"}, b.Names())
	assert.Equal(t, 0, b.Globals().Len())
}

func TestCompileFailures(t *testing.T) {
	tests := []struct {
		name string
		set  func(t *testing.T) *sources.Set
		code errors.ErrorCode
	}{
		{
			name: "empty_set",
			set:  func(t *testing.T) *sources.Set { return sources.NewSet() },
			code: errors.ErrCompilation,
		},
		{
			name: "missing_file",
			set: func(t *testing.T) *sources.Set {
				return sources.NewSet().
					AddString("windmill.soy", windmill).
					AddFile(filepath.Join(t.TempDir(), "gone.soy"))
			},
			code: errors.ErrSourceUnavailable,
		},
		{
			name: "syntax_error",
			set: func(t *testing.T) *sources.Set {
				return sources.NewSet().
					AddString("windmill.soy", windmill).
					AddString("broken.soy", "{namespace broken}\n/** x */\n{template .x}\n{if}\n{/template}\n")
			},
			code: errors.ErrCompilation,
		},
		{
			name: "duplicate_template",
			set: func(t *testing.T) *sources.Set {
				return sources.NewSet().
					AddString("one.soy", "{namespace dup}\n/** x */\n{template .x}\nx\n{/template}\n").
					AddString("two.soy", "{namespace dup}\n/** x */\n{template .x}\ny\n{/template}\n")
			},
			code: errors.ErrCompilation,
		},
		{
			name: "undefined_global",
			set: func(t *testing.T) *sources.Set {
				return sources.NewSet().
					AddString("g.soy", "{namespace g}\n/** x */\n{template .x}\n{NOT_DEFINED}\n{/template}\n")
			},
			code: errors.ErrCompilation,
		},
		{
			name: "undefined_callee",
			set: func(t *testing.T) *sources.Set {
				return sources.NewSet().
					AddString("c.soy", "{namespace c}\n/** x */\n{template .x}\n{call c.nowhere /}\n{/template}\n")
			},
			code: errors.ErrCompilation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := bundle.Compile(tt.set(t), brand(t))
			require.Error(t, err)
			assert.Nil(t, b)
			assert.Equal(t, tt.code, errors.GetErrorCode(err))
			assert.Equal(t, errors.StageCompile, errors.Stage(err))
		})
	}
}
