package output

import (
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/arthur-debert/soyforge/pkg/errors"
)

var markupExts = map[string]bool{
	".svg":   true,
	".xml":   true,
	".xhtml": true,
}

// IsMarkup reports whether path names a markup artifact
func IsMarkup(path string) bool {
	return markupExts[strings.ToLower(filepath.Ext(path))]
}

// CheckMarkup fails unless data is well-formed XML with a root element
func CheckMarkup(data []byte) error {
	// etree reads raw tokens and does not match end tags, so run the
	// strict decoder over the document first.
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrRender, "rendered markup is not well-formed")
		}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return errors.Wrap(err, errors.ErrRender, "rendered markup is not well-formed")
	}
	if doc.Root() == nil {
		return errors.New(errors.ErrRender, "rendered markup has no root element")
	}
	return nil
}

// IndentMarkup re-serializes data with each nesting level indented by spaces
func IndentMarkup(data []byte, spaces int) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrRender, "cannot indent markup")
	}
	if doc.Root() == nil {
		return nil, errors.New(errors.ErrRender, "rendered markup has no root element")
	}
	doc.Indent(spaces)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRender, "cannot serialize markup")
	}
	return out, nil
}
