package grid

import "github.com/matzehuels/gridlay/pkg/template"

// Lines writes a template row by row in terms of handles. It is only valid
// inside the fill function passed to [Grid.NewNode].
type Lines struct {
	grid    *Grid
	builder *template.Builder
}

// Add appends h to the current row.
func (l *Lines) Add(h Handle) error {
	id, err := l.grid.NodeID(h)
	if err != nil {
		return err
	}
	return l.builder.Add(id)
}

// End closes the current row.
func (l *Lines) End() error {
	return l.builder.EndRow()
}

// Row adds a whole row and closes it.
func (l *Lines) Row(hs ...Handle) error {
	for _, h := range hs {
		if err := l.Add(h); err != nil {
			return err
		}
	}
	return l.End()
}

// Rows adds each row in turn.
func (l *Lines) Rows(rows ...[]Handle) error {
	for _, row := range rows {
		if err := l.Row(row...); err != nil {
			return err
		}
	}
	return nil
}
