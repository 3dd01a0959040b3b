package treediff

import (
	"bytes"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

// TreeLookup fetches and decodes the tree object identified by hash. The
// decoded entries may alias buf, which the engine owns and keeps alive for
// the duration of the nested traversal. A false return means the store has
// no such object.
type TreeLookup func(hash gitobj.Hash, buf *[]byte) (*gitobj.Tree, bool)

// Differ walks two trees and reports their structural differences. It holds
// no state between calls except recycled scratch buffers; a single Differ
// must not be used from multiple goroutines at once, but independent Differs
// may run concurrently.
type Differ struct {
	lookup TreeLookup
	obs    Observer
	pathID uint32
	free   []*[]byte
}

// NewDiffer creates a Differ that resolves sub-trees through lookup.
func NewDiffer(lookup TreeLookup) *Differ {
	return &Differ{lookup: lookup}
}

// Diff reports the changes that transform the source tree into the target
// tree. A nil source stands for the empty tree, so diffing the very first
// snapshot needs no special case. Both trees must already be in canonical
// entry order; that is a precondition, not validated here.
//
// Returns nil on completion, ErrCancelled when the observer stops the
// traversal, or an *ObjectNotFoundError when a referenced sub-tree is
// missing from the store.
func (d *Differ) Diff(source, target *gitobj.Tree, obs Observer) error {
	if source == nil {
		source = gitobj.EmptyTree
	}

	if target == nil {
		target = gitobj.EmptyTree
	}

	d.obs = obs
	d.pathID = 0

	return d.level(source, target)
}

// level runs one merge-join pass over a pair of entry sequences. Recursion
// into sub-trees re-enters level one call-stack frame deeper.
func (d *Differ) level(lhs, rhs *gitobj.Tree) error {
	lents, rents := lhs.Entries, rhs.Entries

	for len(lents) > 0 || len(rents) > 0 {
		switch {
		case len(lents) == 0:
			if err := d.added(&rents[0]); err != nil {
				return err
			}

			rents = rents[1:]
		case len(rents) == 0:
			if err := d.deleted(&lents[0]); err != nil {
				return err
			}

			lents = lents[1:]
		case bytes.Equal(lents[0].Name, rents[0].Name):
			if err := d.matched(&lents[0], &rents[0]); err != nil {
				return err
			}

			lents, rents = lents[1:], rents[1:]
		case gitobj.CompareEntries(lents[0], rents[0]) < 0:
			// Catch-up: the source entry has no counterpart at this name.
			if err := d.deleted(&lents[0]); err != nil {
				return err
			}

			lents = lents[1:]
		default:
			if err := d.added(&rents[0]); err != nil {
				return err
			}

			rents = rents[1:]
		}
	}

	return nil
}

// matched handles a single logical path present on both sides.
func (d *Differ) matched(lhs, rhs *gitobj.TreeEntry) error {
	if lhs.Hash != rhs.Hash || lhs.Mode != rhs.Mode {
		id := d.replacePath(lhs.Name)

		var change Change
		if lhs.Mode.IsTree() != rhs.Mode.IsTree() {
			// Crossing the tree/non-tree boundary is modeled as "remove the
			// old thing, then populate the new thing from an empty baseline".
			// The recursion below produces the additions or deletions.
			change = Change{
				Action: Delete,
				PathID: id,
				From:   ChangeEntry{Mode: lhs.Mode, Hash: lhs.Hash},
			}
		} else {
			change = Change{
				Action: Modify,
				PathID: id,
				From:   ChangeEntry{Mode: lhs.Mode, Hash: lhs.Hash},
				To:     ChangeEntry{Mode: rhs.Mode, Hash: rhs.Hash},
			}
		}

		if d.obs.Record(change).Cancelled() {
			return ErrCancelled
		}
	}

	switch {
	case lhs.Mode.IsTree() && rhs.Mode.IsTree():
		if lhs.Hash != rhs.Hash {
			return d.recurse(lhs.Name, lhs.Hash, rhs.Hash)
		}
	case rhs.Mode.IsTree():
		// Non-tree became a tree: everything inside surfaces as an Addition.
		return d.recurse(lhs.Name, gitobj.ZeroHash(), rhs.Hash)
	case lhs.Mode.IsTree():
		// Tree became a non-tree: drain the old contents as Deletions, then
		// add the entry of the new kind.
		if err := d.recurse(lhs.Name, lhs.Hash, gitobj.ZeroHash()); err != nil {
			return err
		}

		return d.added(rhs)
	}

	return nil
}

// added reports entry as an Addition and, for trees, recurses to surface the
// whole sub-tree as additions.
func (d *Differ) added(entry *gitobj.TreeEntry) error {
	id := d.replacePath(entry.Name)

	change := Change{
		Action: Insert,
		PathID: id,
		To:     ChangeEntry{Mode: entry.Mode, Hash: entry.Hash},
	}
	if d.obs.Record(change).Cancelled() {
		return ErrCancelled
	}

	if entry.Mode.IsTree() {
		return d.recurse(entry.Name, gitobj.ZeroHash(), entry.Hash)
	}

	return nil
}

// deleted reports entry as a Deletion and, for trees, recurses to surface the
// whole sub-tree as deletions.
func (d *Differ) deleted(entry *gitobj.TreeEntry) error {
	id := d.replacePath(entry.Name)

	change := Change{
		Action: Delete,
		PathID: id,
		From:   ChangeEntry{Mode: entry.Mode, Hash: entry.Hash},
	}
	if d.obs.Record(change).Cancelled() {
		return ErrCancelled
	}

	if entry.Mode.IsTree() {
		return d.recurse(entry.Name, entry.Hash, gitobj.ZeroHash())
	}

	return nil
}

// recurse fetches the sub-trees named by the given hashes and runs one more
// merge-join level between them. A zero hash stands for the empty tree and
// skips the fetch. The path tracker descends before the nested level and
// ascends after it returns.
func (d *Differ) recurse(name []byte, fromHash, toHash gitobj.Hash) error {
	from, fromBuf, err := d.fetchTree(fromHash)
	if err != nil {
		return err
	}

	to, toBuf, err := d.fetchTree(toHash)
	if err != nil {
		d.releaseBuf(fromBuf)

		return err
	}

	d.pushPath(name)

	err = d.level(from, to)
	if err == nil {
		// An unwinding call issues no further mutations.
		d.popPath()
	}

	d.releaseBuf(fromBuf)
	d.releaseBuf(toBuf)

	return err
}

// fetchTree resolves hash through the lookup into a recycled scratch buffer.
// The zero hash resolves to the empty tree without touching the store.
func (d *Differ) fetchTree(hash gitobj.Hash) (*gitobj.Tree, *[]byte, error) {
	if hash.IsZero() {
		return gitobj.EmptyTree, nil, nil
	}

	buf := d.acquireBuf()

	tree, ok := d.lookup(hash, buf)
	if !ok {
		d.releaseBuf(buf)

		return nil, nil, &ObjectNotFoundError{Hash: hash}
	}

	return tree, buf, nil
}

func (d *Differ) replacePath(name []byte) uint32 {
	d.pathID++
	d.obs.UpdatePathComponent(PathComponent{Name: name, ID: d.pathID}, PathReplace)

	return d.pathID
}

func (d *Differ) pushPath(name []byte) {
	d.pathID++
	d.obs.UpdatePathComponent(PathComponent{Name: name, ID: d.pathID}, PathPush)
}

func (d *Differ) popPath() {
	d.obs.UpdatePathComponent(PathComponent{}, PathPop)
}

// acquireBuf pops a scratch buffer from the free list. Buffers released by
// completed sibling recursions are refilled instead of reallocated, so at
// most two buffers per recursion depth are ever live.
func (d *Differ) acquireBuf() *[]byte {
	if n := len(d.free); n > 0 {
		buf := d.free[n-1]
		d.free = d.free[:n-1]

		return buf
	}

	return new([]byte)
}

func (d *Differ) releaseBuf(buf *[]byte) {
	if buf != nil {
		d.free = append(d.free, buf)
	}
}
