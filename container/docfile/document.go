package docfile

import (
	"bytes"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a container document
type Format string

const (
	// FormatAuto picks a format from the file extension, falling back to
	// sniffing content
	FormatAuto = Format("")
	// FormatYAML decodes documents with gopkg.in/yaml.v3
	FormatYAML = Format("yaml")
	// FormatJSON decodes documents with github.com/goccy/go-json
	FormatJSON = Format("json")
)

// document is the serialized form of a container. the document root is
// the container's root group
type document struct {
	Attributes []attributeDoc `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children   []nodeDoc      `json:"children,omitempty" yaml:"children,omitempty"`
}

type nodeDoc struct {
	Name       string         `json:"name" yaml:"name"`
	Kind       string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Dtype      string         `json:"dtype,omitempty" yaml:"dtype,omitempty"`
	Shape      []int          `json:"shape,omitempty" yaml:"shape,omitempty"`
	Data       interface{}    `json:"data,omitempty" yaml:"data,omitempty"`
	Attributes []attributeDoc `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children   []nodeDoc      `json:"children,omitempty" yaml:"children,omitempty"`
}

type attributeDoc struct {
	Name  string      `json:"name" yaml:"name"`
	Dtype string      `json:"dtype,omitempty" yaml:"dtype,omitempty"`
	Value interface{} `json:"value" yaml:"value"`
}

// FormatFromPath picks a document format from a file extension
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

func decode(data []byte, format Format) (*document, error) {
	if format == FormatAuto {
		format = sniff(data)
	}

	doc := &document{}
	switch format {
	case FormatJSON:
		dec := gojson.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return nil, errors.Wrap(err, "decoding json")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil {
			// an empty document is an empty container
			if len(bytes.TrimSpace(data)) == 0 {
				return doc, nil
			}
			return nil, errors.Wrap(err, "decoding yaml")
		}
	default:
		return nil, errors.Errorf("unknown document format %q", format)
	}
	return doc, nil
}
