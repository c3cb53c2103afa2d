package layout_test

import (
	"fmt"

	"github.com/matzehuels/gridlay/pkg/forest"
	"github.com/matzehuels/gridlay/pkg/geo"
	"github.com/matzehuels/gridlay/pkg/layout"
	"github.com/matzehuels/gridlay/pkg/template"
)

func ExampleCompute() {
	f := forest.New()
	a := f.NewLeaf(geo.Sz(2, 1))
	b := f.NewLeaf(geo.Sz(1, 2))
	c := f.NewLeaf(geo.Sz(1, 2))

	t, _ := template.New(2, 3, []template.NodeID{
		a, a,
		b, c,
		b, c,
	})
	p, _ := f.NewParent(t)

	l, err := layout.Compute(f, p)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("size", l.Size)
	for _, e := range l.Entries() {
		fmt.Println(e.ID, e.Rect)
	}
	// Output:
	// size 2x3
	// 0 (0,0 2x1)
	// 1 (0,1 1x2)
	// 2 (1,1 1x2)
}
