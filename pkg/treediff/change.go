// Package treediff computes the structural changes between two git tree
// objects. It walks both trees in lockstep with a sorted merge-join, recurses
// into sub-trees through an object-store lookup, and streams every change to
// an Observer that may cancel the traversal at any point.
package treediff

import "github.com/Sumatoshi-tech/treediff/pkg/gitobj"

// ChangeAction represents the type of change in a diff.
type ChangeAction int

const (
	// Insert indicates an entry that exists only on the target side.
	Insert ChangeAction = iota
	// Delete indicates an entry that exists only on the source side, or the
	// removal of the old kind when an entry changes between file and tree.
	Delete
	// Modify indicates an entry present on both sides whose mode or hash
	// differs without crossing the tree/non-tree boundary.
	Modify
)

// String returns the single-letter status used by git porcelain output.
func (a ChangeAction) String() string {
	switch a {
	case Insert:
		return "A"
	case Delete:
		return "D"
	case Modify:
		return "M"
	default:
		return "?"
	}
}

// ChangeEntry is one side of a change. The mode and hash are copied out of
// the borrowed tree entry so they stay valid after the tree buffer is reused.
type ChangeEntry struct {
	Mode gitobj.EntryMode
	Hash gitobj.Hash
}

// Change is a single reported difference. From is set for Delete and Modify,
// To for Insert and Modify. PathID is the identity of the path-component
// mutation issued immediately before this change.
type Change struct {
	Action ChangeAction
	PathID uint32
	From   ChangeEntry
	To     ChangeEntry
}

// Action is the observer's verdict after receiving a change.
type Action int

const (
	// Continue lets the traversal proceed.
	Continue Action = iota
	// Cancel terminates the diff; the call returns ErrCancelled.
	Cancel
)

// Cancelled returns true when the verdict stops the traversal.
func (a Action) Cancelled() bool {
	return a == Cancel
}

// PathComponent is one segment of the current relative path. Name borrows
// from the tree buffer; ID is assigned by a counter that increases for every
// mutation within one diff call and is never reused.
type PathComponent struct {
	Name []byte
	ID   uint32
}

// PathUpdate tells the observer how to apply a path-component mutation.
type PathUpdate int

const (
	// PathReplace overwrites the component at the current depth.
	PathReplace PathUpdate = iota
	// PathPush descends one level, making the component the new deepest.
	PathPush
	// PathPop ascends one level after a recursive descent returns. The
	// component carries no name and a zero identity.
	PathPop
)

// Observer receives path mutations and changes from the engine. Record may
// collect, stream, or aggregate; it must not mutate the trees being compared.
type Observer interface {
	UpdatePathComponent(component PathComponent, update PathUpdate)
	Record(change Change) Action
}
