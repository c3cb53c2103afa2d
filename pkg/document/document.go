package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/template"
)

// Format names a document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists every supported encoding.
var Formats = []Format{FormatTOML, FormatYAML, FormatJSON}

// ParseFormat maps a user supplied name ("toml", "yml", ...) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported document format %q", s)
}

// FormatFromPath picks a Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer document format of %s", path)
	}
	return ParseFormat(ext)
}

// Document is a whole layout tree described by name.
type Document struct {
	Root   string          `toml:"root,omitempty" yaml:"root,omitempty" json:"root,omitempty" bson:"root,omitempty"`
	Leaves map[string]Leaf `toml:"leaves,omitempty" yaml:"leaves,omitempty" json:"leaves,omitempty" bson:"leaves,omitempty"`
	Nodes  map[string]Node `toml:"nodes,omitempty" yaml:"nodes,omitempty" json:"nodes,omitempty" bson:"nodes,omitempty"`
}

// Leaf is a box with an intrinsic size. Nil dimensions are undefined.
type Leaf struct {
	Width  *float64 `toml:"width,omitempty" yaml:"width,omitempty" json:"width,omitempty" bson:"width,omitempty"`
	Height *float64 `toml:"height,omitempty" yaml:"height,omitempty" json:"height,omitempty" bson:"height,omitempty"`
}

// Sized returns a leaf with both dimensions set.
func Sized(width, height float64) Leaf {
	return Leaf{Width: &width, Height: &height}
}

// Node is a box subdivided among other named boxes.
type Node struct {
	Template []string `toml:"template" yaml:"template" json:"template" bson:"template"`
}

// Rows returns the template rows with inline separators expanded and blank
// rows dropped.
func (n Node) Rows() []string {
	var rows []string
	for _, entry := range n.Template {
		for _, row := range template.SplitInline(entry) {
			if strings.TrimSpace(row) != "" {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// Labels returns every label the template mentions, in order of first use.
func (n Node) Labels() []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range n.Rows() {
		for _, label := range strings.Fields(row) {
			if !seen[label] {
				seen[label] = true
				out = append(out, label)
			}
		}
	}
	return out
}

// Parse decodes data in the given format. The result is not validated.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &doc)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown key %q", undecoded[0].String())
			}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported document format %q", format)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "decode %s document", format)
	}
	return &doc, nil
}

// Load reads, decodes and validates the document at path. The format is
// taken from the file extension.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes the document in the given format.
func (d *Document) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode toml document")
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(d)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode yaml document")
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode json document")
		}
		return data, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported document format %q", format)
}

// Canonical returns a stable encoding of the document suitable for hashing.
// Map keys are sorted, so equal documents encode identically.
func (d *Document) Canonical() ([]byte, error) {
	return json.Marshal(d)
}
