// Package document reads layout documents: named leaves, named template
// nodes and a root, in TOML, YAML or JSON.
//
// # Format
//
//	root = "top"
//
//	[leaves.a]
//	width = 2
//	height = 1
//
//	[leaves.b]
//	width = 1
//	height = 2
//
//	[nodes.P]
//	template = ["a a", "b c", "b c"]
//
//	[nodes.top]
//	template = ["d P"]
//
// Template rows hold whitespace-separated labels. A single entry may also
// carry several rows separated by '/' or ';', so ["a a / b c / b c"] is the
// same template as the three-row form above.
//
// Leaf dimensions may be omitted. A missing dimension is undefined and the
// layout of any tree containing that leaf fails with UNDEFINED_LEAF_SIZE.
//
// If root is omitted, the root is the single name no template refers to.
//
// # Building
//
// [Document.Build] turns a validated document into a [grid.Grid], creating
// children before the parents that use them. Every node gets its document
// name as display name. Names the root never reaches are not built.
//
//	doc, err := document.Load("page.toml")
//	if err != nil {
//	    return err
//	}
//	g, root, err := doc.Build(nil)
//	if err != nil {
//	    return err
//	}
//	result, err := g.ComputeLayout(root)
package document
