package document

import (
	"slices"

	errs "github.com/matzehuels/gridlay/pkg/errors"
)

// Validate checks names, templates, leaf sizes and the root. It does not
// check template shapes or reference cycles; those surface from Build and
// from layout.
func (d *Document) Validate() error {
	if len(d.Leaves) == 0 && len(d.Nodes) == 0 {
		return errs.New(errs.ErrCodeInvalidDocument, "document defines no leaves or nodes")
	}

	for _, name := range sortedKeys(d.Leaves) {
		if err := errs.ValidateNodeName(name); err != nil {
			return err
		}
		if _, dup := d.Nodes[name]; dup {
			return errs.New(errs.ErrCodeInvalidDocument, "%q is defined as both leaf and node", name)
		}
		leaf := d.Leaves[name]
		if (leaf.Width != nil && *leaf.Width < 0) || (leaf.Height != nil && *leaf.Height < 0) {
			return errs.New(errs.ErrCodeInvalidDocument, "leaf %q has a negative dimension", name)
		}
	}

	for _, name := range sortedKeys(d.Nodes) {
		if err := errs.ValidateNodeName(name); err != nil {
			return err
		}
		if len(d.Nodes[name].Rows()) == 0 {
			return errs.New(errs.ErrCodeInvalidDocument, "node %q has an empty template", name)
		}
	}

	_, err := d.RootName()
	return err
}

// RootName returns the declared root, or infers it as the only name that
// no template refers to.
func (d *Document) RootName() (string, error) {
	if d.Root != "" {
		if !d.Has(d.Root) {
			return "", errs.New(errs.ErrCodeNodeNotFound, "root %q is not defined", d.Root)
		}
		return d.Root, nil
	}

	referenced := make(map[string]bool)
	for _, n := range d.Nodes {
		for _, label := range n.Labels() {
			referenced[label] = true
		}
	}

	var candidates []string
	for _, name := range d.Names() {
		if !referenced[name] {
			candidates = append(candidates, name)
		}
	}
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", errs.New(errs.ErrCodeInvalidDocument, "no root: every name is referenced by a template")
	default:
		return "", errs.New(errs.ErrCodeInvalidDocument, "ambiguous root: %v are all unreferenced", candidates)
	}
}

// Has reports whether name is a leaf or a node.
func (d *Document) Has(name string) bool {
	_, leaf := d.Leaves[name]
	_, node := d.Nodes[name]
	return leaf || node
}

// Names returns every leaf and node name in sorted order.
func (d *Document) Names() []string {
	names := append(sortedKeys(d.Leaves), sortedKeys(d.Nodes)...)
	slices.Sort(names)
	return slices.Compact(names)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
