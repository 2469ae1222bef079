// Package render executes a named template from a compiled bundle.
//
// Rendering only reads the bundle, so any number of renders may run
// concurrently against the same *bundle.Bundle.
package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/robfig/soy/data"

	"github.com/arthur-debert/soyforge/pkg/bundle"
	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/logging"
)

// Request identifies one render: a template in a bundle plus its data
type Request struct {
	Bundle   *bundle.Bundle
	Template string
	Data     map[string]interface{}
}

// Render executes the request
func (r Request) Render() (Output, error) {
	return Render(r.Bundle, r.Template, r.Data)
}

// Output is the UTF-8 text produced by one template
type Output struct {
	Template string
	Bytes    []byte
}

// Len returns the size of the rendered text in bytes
func (o Output) Len() int {
	return len(o.Bytes)
}

// String returns the rendered text
func (o Output) String() string {
	return string(o.Bytes)
}

// Render executes template name from b with params. Globals baked into b are
// visible to the template; params may not shadow them.
func Render(b *bundle.Bundle, name string, params map[string]interface{}) (Output, error) {
	var buf bytes.Buffer
	if err := RenderTo(&buf, b, name, params); err != nil {
		return Output{}, err
	}
	if !utf8.Valid(buf.Bytes()) {
		return Output{}, renderErr(name, errors.New(errors.ErrRender, "template produced invalid UTF-8"))
	}
	return Output{Template: name, Bytes: buf.Bytes()}, nil
}

// RenderTo is Render streaming into w. On error w may hold partial output.
func RenderTo(w io.Writer, b *bundle.Bundle, name string, params map[string]interface{}) error {
	logger := logging.GetLogger("render").With().Str("template", name).Logger()

	if b == nil {
		return errors.New(errors.ErrInvalidInput, "no bundle to render from")
	}
	tmpl, ok := b.Template(name)
	if !ok {
		return errors.Newf(errors.ErrTemplateNotFound, "template %s not found", name).
			WithDetail(errors.DetailTemplate, name)
	}

	if err := checkParams(b, tmpl, params); err != nil {
		return err
	}

	values, err := toData(params)
	if err != nil {
		return renderErr(name, err)
	}

	logger.Debug().Int("params", len(params)).Msg("Rendering template")
	if err := execute(w, b, name, values); err != nil {
		return renderErr(name, err)
	}
	return nil
}

// checkParams rejects params shadowing a global and missing required params
func checkParams(b *bundle.Bundle, tmpl bundle.Template, params map[string]interface{}) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if b.Globals().Has(k) {
			return errors.Newf(errors.ErrConfiguration, "data key %q collides with a global of the same name", k).
				WithDetail(errors.DetailTemplate, tmpl.Name)
		}
	}

	for _, p := range tmpl.Required {
		if v, ok := params[p]; !ok || v == nil {
			return errors.Newf(errors.ErrRender, "template %s requires param %q", tmpl.Name, p).
				WithDetail(errors.DetailTemplate, tmpl.Name).
				WithDetail("param", p)
		}
	}
	return nil
}

// toData converts params into engine values. data.New panics on types it
// cannot represent (channels, funcs).
func toData(params map[string]interface{}) (m data.Map, err error) {
	if len(params) == 0 {
		return data.Map{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unsupported template data: %v", r)
		}
	}()
	m, ok := data.New(params).(data.Map)
	if !ok {
		return nil, fmt.Errorf("template data must be a map")
	}
	return m, nil
}

func execute(w io.Writer, b *bundle.Bundle, name string, values data.Map) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return b.Execute(w, name, values)
}

func renderErr(name string, err error) error {
	if errors.GetErrorCode(err) == errors.ErrRender {
		if fe, ok := err.(*errors.ForgeError); ok {
			return fe.WithDetail(errors.DetailTemplate, name)
		}
	}
	return errors.Wrapf(err, errors.ErrRender, "cannot render %s", name).
		WithDetail(errors.DetailTemplate, name)
}
