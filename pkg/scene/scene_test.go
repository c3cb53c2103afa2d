package scene

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/grid"
)

func holyGrail(t *testing.T) (*grid.Grid, grid.Handle) {
	t.Helper()
	g := grid.New(nil)
	a := g.NewLeaf(2, 1)
	b := g.NewLeaf(1, 2)
	c := g.NewLeaf(1, 2)
	p, err := g.NewNode(func(l *grid.Lines) error {
		return l.Rows([]grid.Handle{a, a}, []grid.Handle{b, c}, []grid.Handle{b, c})
	})
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	for h, name := range map[grid.Handle]string{a: "header", b: "nav", c: "main"} {
		if err := g.SetName(h, name); err != nil {
			t.Fatalf("SetName: %v", err)
		}
	}
	return g, p
}

func TestFromGrid(t *testing.T) {
	g, root := holyGrail(t)
	s, err := FromGrid(g, root)
	if err != nil {
		t.Fatalf("FromGrid() error: %v", err)
	}

	want := Scene{
		Width:  2,
		Height: 3,
		Boxes: []Box{
			{ID: 0, Name: "header", X: 0, Y: 0, Width: 2, Height: 1},
			{ID: 2, Name: "main", X: 1, Y: 1, Width: 1, Height: 2},
			{ID: 1, Name: "nav", X: 0, Y: 1, Width: 1, Height: 2},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("FromGrid() mismatch (-want +got):\n%s", diff)
	}
	if b, ok := s.Box("nav"); !ok || b.Height != 2 {
		t.Errorf("Box(nav) = %v, %v", b, ok)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		scene   Scene
		wantErr bool
	}{
		{"empty", Scene{}, false},
		{"inside", Scene{Width: 2, Height: 2, Boxes: []Box{{Width: 2, Height: 2}}}, false},
		{"outside", Scene{Width: 2, Height: 2, Boxes: []Box{{X: 1, Width: 2, Height: 1}}}, true},
		{"negative", Scene{Width: -1, Height: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scene.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	g, root := holyGrail(t)
	s, err := FromGrid(g, root)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "page.layout.json")
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	if _, err := Unmarshal([]byte("{")); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Unmarshal() error = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
}
