package template

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/geo"
)

const (
	a NodeID = iota
	b
	c
	d
	e
)

func mustNew(t *testing.T, width, height int, cells ...NodeID) Template {
	t.Helper()
	tmpl, err := New(width, height, cells)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", width, height, err)
	}
	return tmpl
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name string
		tmpl func(t *testing.T) Template
		want []Placement
	}{
		{
			name: "single cell",
			tmpl: func(t *testing.T) Template { return mustNew(t, 1, 1, a) },
			want: []Placement{{ID: a, Rect: geo.R(0, 0, 1, 1)}},
		},
		{
			name: "header over two columns",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 2, 3,
					a, a,
					b, c,
					b, c)
			},
			want: []Placement{
				{ID: a, Rect: geo.R(0, 0, 2, 1)},
				{ID: b, Rect: geo.R(0, 1, 1, 2)},
				{ID: c, Rect: geo.R(1, 1, 1, 2)},
			},
		},
		{
			name: "single column stays within its row",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 1, 3,
					a,
					a,
					b)
			},
			want: []Placement{
				{ID: a, Rect: geo.R(0, 0, 1, 2)},
				{ID: b, Rect: geo.R(0, 2, 1, 1)},
			},
		},
		{
			name: "row end does not join next row start",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 3, 2,
					a, b, c,
					c, b, c)
			},
			// c at (2,0) is found before c at (0,1); the scan must stop at
			// the row end and then report the second region.
			want: nil,
		},
		{
			name: "holy grail",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 3, 3,
					a, a, a,
					b, c, d,
					e, e, e)
			},
			want: []Placement{
				{ID: a, Rect: geo.R(0, 0, 3, 1)},
				{ID: b, Rect: geo.R(0, 1, 1, 1)},
				{ID: c, Rect: geo.R(1, 1, 1, 1)},
				{ID: d, Rect: geo.R(2, 1, 1, 1)},
				{ID: e, Rect: geo.R(0, 2, 3, 1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tmpl(t).Decompose()
			if tt.want == nil {
				if !errs.Is(err, errs.ErrCodeInvalidShape) {
					t.Fatalf("Decompose() error = %v, want %s", err, errs.ErrCodeInvalidShape)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decompose() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decompose() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecomposeTilesGrid(t *testing.T) {
	templates := []Template{
		mustNew(t, 1, 1, a),
		mustNew(t, 2, 3, a, a, b, c, b, c),
		mustNew(t, 4, 2, a, a, b, c, a, a, d, c),
		mustNew(t, 3, 3, a, b, b, a, b, b, c, c, d),
		mustNew(t, 5, 1, a, b, c, d, e),
		mustNew(t, 1, 4, a, b, b, c),
	}

	for _, tmpl := range templates {
		t.Run(tmpl.String(), func(t *testing.T) {
			placements, err := tmpl.Decompose()
			if err != nil {
				t.Fatalf("Decompose() error: %v", err)
			}

			var area float64
			for i, p := range placements {
				area += p.Rect.Area()
				for j := i + 1; j < len(placements); j++ {
					if p.Rect.Overlaps(placements[j].Rect) {
						t.Errorf("%v overlaps %v", p, placements[j])
					}
				}
			}
			if want := float64(tmpl.Width * tmpl.Height); area != want {
				t.Errorf("placements cover %v cells, want %v", area, want)
			}

			// Every cell lies in the rectangle of its own label.
			for y := 0; y < tmpl.Height; y++ {
				for x := 0; x < tmpl.Width; x++ {
					label := tmpl.At(x, y)
					covered := false
					for _, p := range placements {
						if p.ID == label && p.Rect.Contains(float64(x)+0.5, float64(y)+0.5) {
							covered = true
						}
					}
					if !covered {
						t.Errorf("cell (%d, %d) with label %d not covered by its rectangle", x, y, label)
					}
				}
			}
		})
	}
}

func TestDecomposeInvalidShape(t *testing.T) {
	tests := []struct {
		name       string
		tmpl       func(t *testing.T) Template
		wantX      int
		wantY      int
		wantRepeat bool
	}{
		{
			name: "disjoint repeat in a row",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 3, 1, a, b, a)
			},
			wantX: 2, wantY: 0, wantRepeat: true,
		},
		{
			name: "disjoint repeat in a column",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 1, 3, a, b, a)
			},
			wantX: 0, wantY: 2, wantRepeat: true,
		},
		{
			name: "L shape",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 2, 2,
					a, a,
					a, b)
			},
			wantX: 1, wantY: 1,
		},
		{
			name: "hole",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 3, 3,
					a, a, a,
					a, b, a,
					a, a, a)
			},
			wantX: 1, wantY: 1,
		},
		{
			name: "diagonal",
			tmpl: func(t *testing.T) Template {
				return mustNew(t, 2, 2,
					a, b,
					b, a)
			},
			wantX: 0, wantY: 1, wantRepeat: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tmpl(t).Decompose()
			if !errs.Is(err, errs.ErrCodeInvalidShape) {
				t.Fatalf("Decompose() error = %v, want %s", err, errs.ErrCodeInvalidShape)
			}

			var shape *ShapeError
			if !stderrors.As(err, &shape) {
				t.Fatalf("error %v does not carry a *ShapeError", err)
			}
			if shape.X != tt.wantX || shape.Y != tt.wantY {
				t.Errorf("offending cell = (%d, %d), want (%d, %d)", shape.X, shape.Y, tt.wantX, tt.wantY)
			}
			if shape.Repeat != tt.wantRepeat {
				t.Errorf("Repeat = %v, want %v", shape.Repeat, tt.wantRepeat)
			}
		})
	}
}

func TestDecomposeMalformed(t *testing.T) {
	_, err := Template{Width: 2, Height: 2, Cells: []NodeID{a}}.Decompose()
	if !errs.Is(err, errs.ErrCodeInvalidTemplate) {
		t.Errorf("Decompose() error = %v, want %s", err, errs.ErrCodeInvalidTemplate)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		cells         []NodeID
		wantErr       bool
	}{
		{"valid", 2, 1, []NodeID{a, b}, false},
		{"zero width", 0, 1, nil, true},
		{"zero height", 1, 0, nil, true},
		{"too few cells", 2, 2, []NodeID{a, b, c}, true},
		{"too many cells", 1, 1, []NodeID{a, b}, true},
		{"negative id", 1, 1, []NodeID{-1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.height, tt.cells)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeInvalidTemplate) {
				t.Errorf("New() code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidTemplate)
			}
		})
	}
}

func TestIDs(t *testing.T) {
	tmpl := mustNew(t, 2, 3, c, c, b, a, b, a)
	if diff := cmp.Diff([]NodeID{a, b, c}, tmpl.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewCopiesCells(t *testing.T) {
	cells := []NodeID{a, b}
	tmpl := mustNew(t, 2, 1, cells...)
	cells[0] = c
	if tmpl.At(0, 0) != a {
		t.Error("New must not alias the caller's slice")
	}
}
