package template

import (
	"strings"

	errs "github.com/matzehuels/gridlay/pkg/errors"
)

type builderState int

const (
	stateStart builderState = iota
	stateFirstRow
	stateRest
)

// Builder assembles a template row by row and rejects ragged input.
//
// The first row fixes the width; every later row must match it.
//
//	b := template.NewBuilder()
//	b.Add(a); b.Add(a); b.EndRow()
//	b.Add(b); b.Add(c); b.EndRow()
//	t, err := b.Template()
type Builder struct {
	state  builderState
	width  int
	count  int
	height int
	cells  []NodeID
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends id to the current row.
func (b *Builder) Add(id NodeID) error {
	switch b.state {
	case stateStart:
		b.state = stateFirstRow
		b.count = 1
	case stateFirstRow:
		b.count++
	case stateRest:
		if b.count >= b.width {
			return errs.New(errs.ErrCodeInvalidTemplate,
				"line %d is unbalanced [expected: %d, got: %d]", b.height+1, b.width, b.count+1)
		}
		b.count++
	}
	b.cells = append(b.cells, id)
	return nil
}

// EndRow closes the current row.
func (b *Builder) EndRow() error {
	switch b.state {
	case stateStart:
		return errs.New(errs.ErrCodeInvalidTemplate, "zero width templates are not supported")
	case stateFirstRow:
		b.state = stateRest
		b.width = b.count
		b.count = 0
		b.height = 1
	case stateRest:
		if b.count != b.width {
			return errs.New(errs.ErrCodeInvalidTemplate,
				"line %d is unbalanced [expected: %d, got: %d]", b.height+1, b.width, b.count)
		}
		b.count = 0
		b.height++
	}
	return nil
}

// Template returns the assembled template. A trailing row that was not
// closed with EndRow is closed implicitly.
func (b *Builder) Template() (Template, error) {
	if b.state == stateFirstRow || (b.state == stateRest && b.count > 0) {
		if err := b.EndRow(); err != nil {
			return Template{}, err
		}
	}
	if b.state == stateStart {
		return Template{}, errs.New(errs.ErrCodeInvalidTemplate, "zero width templates are not supported")
	}
	return New(b.width, b.height, b.cells)
}

// Parse builds a template from text rows. Each row holds whitespace
// separated labels; resolve maps a label to its node id. Blank rows are
// ignored.
func Parse(rows []string, resolve func(label string) (NodeID, error)) (Template, error) {
	b := NewBuilder()
	for _, row := range rows {
		labels := strings.Fields(row)
		if len(labels) == 0 {
			continue
		}
		for _, label := range labels {
			id, err := resolve(label)
			if err != nil {
				return Template{}, err
			}
			if err := b.Add(id); err != nil {
				return Template{}, err
			}
		}
		if err := b.EndRow(); err != nil {
			return Template{}, err
		}
	}
	return b.Template()
}

// SplitInline splits an inline template such as "a a / b c / b c" into
// rows. Rows may be separated by '/', ';' or newlines.
func SplitInline(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == ';' || r == '\n'
	})
}
