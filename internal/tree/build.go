// Package tree is the category tree engine: it materializes a flat,
// recursively-queried list of category rows into a nested tree, and applies
// local structural edits to an already-materialized tree without a storage
// round-trip.
//
// Everything in this package is a pure function over explicit values. The
// caller (the category service) owns the cached tree and decides when to
// publish a result or throw it away; the engine itself never touches storage
// and never blocks.
package tree

import "github.com/hackerc/linkhub/internal/model"

// Build converts a flat list of category rows into a forest of TreeCategory
// nodes and returns the roots.
//
// The algorithm is two flat passes, not a recursive descent, so arbitrarily
// deep hierarchies cannot blow the stack:
//
//  1. Wrap every row in a TreeCategory shell and index the shells by id.
//  2. For every row, append its shell to the parent's SubCategories (the
//     same shell as in the index, not a copy) and bump the parent's
//     ItemCount. Rows with no parent — or with a parent that is missing
//     from the input — become roots.
//
// A missing parent means the row is an orphan (the parent was deleted
// inconsistently or belongs to another user). Orphans are promoted to roots,
// never dropped: this affects visible data, not just performance.
//
// Children keep the order their rows arrived in; Build imposes no sort of
// its own. The upstream query orders by depth then creation time, which is
// what makes the sidebar stable across refetches.
//
// O(n) time and space. Empty input yields an empty forest.
func Build(rows []model.CategoryRow) []*model.TreeCategory {
	shells := make(map[string]*model.TreeCategory, len(rows))
	nodes := make([]*model.TreeCategory, 0, len(rows))

	for _, row := range rows {
		shell := &model.TreeCategory{
			Category:      row.Category,
			ShortID:       row.ShortID,
			SubCategories: []*model.TreeCategory{},
		}
		shells[row.ID] = shell
		nodes = append(nodes, shell)
	}

	roots := make([]*model.TreeCategory, 0, len(rows))
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := shells[*node.ParentID]; ok {
				parent.SubCategories = append(parent.SubCategories, node)
				parent.ItemCount++
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// Flatten walks a forest pre-order and returns every node's Category.
// It is the inverse view of Build: Build then Flatten yields a permutation
// of the input rows with nothing gained or lost.
func Flatten(nodes []*model.TreeCategory) []model.Category {
	out := make([]model.Category, 0, len(nodes))
	var walk func(ns []*model.TreeCategory)
	walk = func(ns []*model.TreeCategory) {
		for _, n := range ns {
			out = append(out, n.Category)
			walk(n.SubCategories)
		}
	}
	walk(nodes)
	return out
}
