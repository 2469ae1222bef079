package globals

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/soyforge/pkg/errors"
)

// Parse reads the Soy globals format: one `key = value` per line. Blank lines
// and lines starting with // or # are skipped.
func Parse(r io.Reader, name string) (*Bindings, error) {
	b := Empty()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		origin := fmt.Sprintf("%s:%d", name, lineNo)

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, configErr(origin, "expected `key = value`, got %q", line)
		}
		key := strings.TrimSpace(line[:eq])
		value, err := parseValue(strings.TrimSpace(line[eq+1:]))
		if err != nil {
			return nil, configErr(origin, "global %q: %v", key, err)
		}
		if err := b.set(key, value, origin); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "cannot read globals %s", name).
			WithDetail(errors.DetailPath, name).
			WithDetail(errors.DetailStage, errors.StageConfig)
	}
	return b, nil
}

// parseValue decodes a Soy primitive literal
func parseValue(raw string) (interface{}, error) {
	switch {
	case raw == "":
		return nil, fmt.Errorf("missing value")
	case raw == "true":
		return true, nil
	case raw == "false":
		return false, nil
	case raw == "null":
		return nil, fmt.Errorf("null is not a constant")
	case raw[0] == '\'':
		return unquoteSingle(raw)
	case raw[0] == '"':
		return strconv.Unquote(raw)
	}
	if i, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("cannot parse value %q", raw)
}

// unquoteSingle decodes a single-quoted Soy string literal
func unquoteSingle(raw string) (string, error) {
	if len(raw) < 2 || raw[len(raw)-1] != '\'' {
		return "", fmt.Errorf("unterminated string %s", raw)
	}
	s := raw[1 : len(raw)-1]
	var sb strings.Builder
	for len(s) > 0 {
		r, _, tail, err := strconv.UnquoteChar(s, '\'')
		if err != nil {
			return "", fmt.Errorf("bad string literal %s", raw)
		}
		sb.WriteRune(r)
		s = tail
	}
	return sb.String(), nil
}

func parseTOML(raw []byte, path string) (*Bindings, error) {
	var m map[string]interface{}
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfiguration, "cannot parse globals %s", path).
			WithDetail(errors.DetailPath, path).
			WithDetail(errors.DetailStage, errors.StageConfig)
	}
	b := Empty()
	if err := b.flatten("", m, path); err != nil {
		return nil, err
	}
	return b, nil
}

func parseYAML(raw []byte, path string) (*Bindings, error) {
	var m map[string]interface{}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfiguration, "cannot parse globals %s", path).
			WithDetail(errors.DetailPath, path).
			WithDetail(errors.DetailStage, errors.StageConfig)
	}
	b := Empty()
	if err := b.flatten("", m, path); err != nil {
		return nil, err
	}
	return b, nil
}
