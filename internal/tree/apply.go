package tree

import "github.com/hackerc/linkhub/internal/model"

// Op is a structural operation against a cached tree.
type Op int

const (
	// OpAdd inserts target as the first child of target.ParentID, or as the
	// first root when target has no parent. If the declared parent is not in
	// the tree the add is silently ignored — the persisted row still exists
	// and the next refetch reconciles.
	OpAdd Op = iota
	// OpUpdate replaces the category scalars of the node whose id matches
	// target, keeping its children and UI state. No-op if the id is absent.
	OpUpdate
	// OpDelete removes the node with target's id, wherever it sits, together
	// with its whole subtree. No-op if the id is absent.
	OpDelete
	// OpToggleActive flips the IsSubMenuOpen flag of the node with target's
	// id. Pure UI expand/collapse state — "which category is selected" is the
	// caller's business (it compares route ids), not this flag's.
	OpToggleActive
)

// Apply runs one structural operation and returns the resulting forest.
//
// Apply never mutates its input: every node on the path from a root to the
// touched node is reconstructed with a fresh SubCategories slice, while
// untouched siblings are shared by reference. Callers that detect change by
// comparing references therefore always observe a new value, and a failed
// storage call can simply keep the old tree.
//
// A target id that is no longer in the tree (a race with a concurrent
// delete in another tab) makes Update/Delete/ToggleActive a no-op rather
// than an error; a later refetch reconciles.
func Apply(nodes []*model.TreeCategory, target *model.TreeCategory, op Op) []*model.TreeCategory {
	switch op {
	case OpAdd:
		return add(nodes, target)
	case OpUpdate:
		return update(nodes, target, mergeScalars)
	case OpDelete:
		return remove(nodes, target.ID)
	case OpToggleActive:
		return update(nodes, target, toggleOpen)
	default:
		return nodes
	}
}

// Find returns the node with the given id, searching depth-first, or nil.
// This is the read-only form of the shared traversal: callers use it to
// inspect cached state before deciding which operation to dispatch.
func Find(nodes []*model.TreeCategory, id string) *model.TreeCategory {
	for _, node := range nodes {
		if node.ID == id {
			return node
		}
		if found := Find(node.SubCategories, id); found != nil {
			return found
		}
	}
	return nil
}

// mergeScalars carries target's category fields onto a copy of node,
// preserving everything derived or transient: children, ItemCount and the
// expand/collapse flag survive a rename or visibility toggle. The short id
// is immutable once allocated, so a target without one keeps the node's.
func mergeScalars(node, target *model.TreeCategory) *model.TreeCategory {
	merged := *node
	merged.Category = target.Category
	if target.ShortID != 0 {
		merged.ShortID = target.ShortID
	}
	return &merged
}

func toggleOpen(node, _ *model.TreeCategory) *model.TreeCategory {
	flipped := *node
	flipped.IsSubMenuOpen = !node.IsSubMenuOpen
	return &flipped
}

// update rebuilds the path to the node matching target.ID, applying fn to
// that node. Subtrees that cannot contain the target are shared as-is.
func update(nodes []*model.TreeCategory, target *model.TreeCategory, fn func(node, target *model.TreeCategory) *model.TreeCategory) []*model.TreeCategory {
	out := make([]*model.TreeCategory, len(nodes))
	for i, node := range nodes {
		switch {
		case node.ID == target.ID:
			out[i] = fn(node, target)
		case len(node.SubCategories) > 0:
			rebuilt := *node
			rebuilt.SubCategories = update(node.SubCategories, target, fn)
			out[i] = &rebuilt
		default:
			out[i] = node
		}
	}
	return out
}

// remove filters out the node with the given id at whatever depth it occurs.
// Its descendants are embedded in SubCategories and vanish with it —
// deletion is subtree removal.
func remove(nodes []*model.TreeCategory, id string) []*model.TreeCategory {
	out := make([]*model.TreeCategory, 0, len(nodes))
	for _, node := range nodes {
		if node.ID == id {
			continue
		}
		if len(node.SubCategories) > 0 {
			kept := *node
			kept.SubCategories = remove(node.SubCategories, id)
			kept.ItemCount = len(kept.SubCategories)
			out = append(out, &kept)
			continue
		}
		out = append(out, node)
	}
	return out
}

// add prepends target as a root when it has no parent, otherwise prepends it
// to the parent's SubCategories. An absent parent leaves the tree unchanged.
func add(nodes []*model.TreeCategory, target *model.TreeCategory) []*model.TreeCategory {
	if target.ParentID == nil {
		return append([]*model.TreeCategory{target}, nodes...)
	}

	out := make([]*model.TreeCategory, len(nodes))
	for i, node := range nodes {
		switch {
		case node.ID == *target.ParentID:
			parent := *node
			parent.SubCategories = append([]*model.TreeCategory{target}, node.SubCategories...)
			parent.ItemCount = len(parent.SubCategories)
			out[i] = &parent
		case len(node.SubCategories) > 0:
			rebuilt := *node
			rebuilt.SubCategories = add(node.SubCategories, target)
			out[i] = &rebuilt
		default:
			out[i] = node
		}
	}
	return out
}
