package config

import (
	_ "embed"
	"errors"
	"strings"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

//go:embed embedded/starter.toml
var starterConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// StarterContent returns a manifest suitable for a new project
func StarterContent() string {
	return string(starterConfig)
}

// CommentedStarterContent returns the starter manifest with every value
// commented out, for appending to an existing file
func CommentedStarterContent() string {
	return commentOutConfigValues(StarterContent())
}

// commentOutConfigValues comments out every line that assigns a value.
// Blank lines, comments and table headers are kept.
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}
	return strings.Join(result, "\n")
}
