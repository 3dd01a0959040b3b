package odb

import (
	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
	"github.com/Sumatoshi-tech/treediff/pkg/treediff"
)

// TreeSource adapts a Store into the diff engine's lookup capability.
// Anything that is not a well-formed tree object reports as not found; a
// tree reference that resolves to garbage is the same integrity fault as one
// that resolves to nothing.
func TreeSource(store Store) treediff.TreeLookup {
	return func(hash gitobj.Hash, buf *[]byte) (*gitobj.Tree, bool) {
		obj, err := store.Object(hash, buf)
		if err != nil || obj.Kind != KindTree {
			return nil, false
		}

		tree := &gitobj.Tree{}
		if err := gitobj.DecodeTree(obj.Data, tree); err != nil {
			return nil, false
		}

		return tree, true
	}
}
