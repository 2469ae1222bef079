package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/soyforge/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "template_not_found",
			code:    errors.ErrTemplateNotFound,
			message: "template pkg.missing not found",
			wantStr: "[TEMPLATE_NOT_FOUND] template pkg.missing not found",
		},
		{
			name:    "compilation",
			code:    errors.ErrCompilation,
			message: "source set is empty",
			wantStr: "[COMPILATION] source set is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrRender, "template %s: missing param %q", "pkg.logo", "size")
	want := `template pkg.logo: missing param "size"`
	if err.Message != want {
		t.Errorf("Newf() message = %q, want %q", err.Message, want)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("permission denied")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrIO, "cannot write out/icons.svg")

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}
		wantStr := "[IO] cannot write out/icons.svg: permission denied"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrIO, "unused"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if err := errors.Wrapf(nil, errors.ErrIO, "unused %d", 1); err != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})
}

func TestWithDetails(t *testing.T) {
	err := errors.New(errors.ErrRender, "render failed").
		WithDetail(errors.DetailTemplate, "pkg.icons").
		WithDetails(map[string]interface{}{errors.DetailPath: "out/icons.svg"})

	if err.Details[errors.DetailTemplate] != "pkg.icons" {
		t.Errorf("template detail = %v", err.Details[errors.DetailTemplate])
	}
	if got := errors.GetErrorDetails(err)[errors.DetailPath]; got != "out/icons.svg" {
		t.Errorf("path detail = %v", got)
	}
	if errors.GetErrorDetails(stderrors.New("plain")) != nil {
		t.Error("GetErrorDetails() should be nil for non-forge errors")
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrCompilation, "error 1")
	err2 := errors.New(errors.ErrCompilation, "error 2")
	err3 := errors.New(errors.ErrRender, "error 3")

	if !stderrors.Is(err1, err2) {
		t.Error("errors.Is() should match on code")
	}
	if stderrors.Is(err1, err3) {
		t.Error("errors.Is() should not match different codes")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", errors.New(errors.ErrIO, "x"), errors.ErrIO, true},
		{"different_code", errors.New(errors.ErrIO, "x"), errors.ErrEncoding, false},
		{"wrapped_error", errors.Wrap(stderrors.New("base"), errors.ErrSourceUnavailable, "read"), errors.ErrSourceUnavailable, true},
		{"non_forge_error", stderrors.New("standard error"), errors.ErrIO, false},
		{"nil_error", nil, errors.ErrIO, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrConfiguration, "collision")); got != errors.ErrConfiguration {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v, want UNKNOWN", got)
	}
	if got := errors.GetErrorCode(nil); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode(nil) = %v, want UNKNOWN", got)
	}
}

func TestStage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config_load", errors.New(errors.ErrConfigLoad, "x"), errors.StageConfig},
		{"source_unavailable", errors.New(errors.ErrSourceUnavailable, "x"), errors.StageCompile},
		{"compilation", errors.New(errors.ErrCompilation, "x"), errors.StageCompile},
		{"template_not_found", errors.New(errors.ErrTemplateNotFound, "x"), errors.StageRender},
		{"configuration", errors.New(errors.ErrConfiguration, "x"), errors.StageRender},
		{"io", errors.New(errors.ErrIO, "x"), errors.StageWrite},
		{"encoding", errors.New(errors.ErrEncoding, "x"), errors.StageWrite},
		{"explicit_detail_wins", errors.New(errors.ErrConfiguration, "x").WithDetail(errors.DetailStage, errors.StageConfig), errors.StageConfig},
		{"plain_error", stderrors.New("x"), errors.StageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Stage(tt.err); got != tt.want {
				t.Errorf("Stage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("no such file")
	readErr := errors.Wrap(rootCause, errors.ErrSourceUnavailable, "cannot read src/logo.soy")
	top := errors.Wrap(readErr, errors.ErrCompilation, "compile failed")

	if !errors.IsErrorCode(top, errors.ErrCompilation) {
		t.Error("top level should have ErrCompilation code")
	}

	var forgeErr *errors.ForgeError
	if stderrors.As(top.Unwrap(), &forgeErr) && forgeErr.Code != errors.ErrSourceUnavailable {
		t.Errorf("middle error code = %v", forgeErr.Code)
	}
	if !stderrors.Is(top, rootCause) {
		t.Error("should find root cause with errors.Is")
	}
}
