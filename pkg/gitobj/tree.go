package gitobj

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

// TreeEntry is one record of a tree object. Name borrows from the buffer the
// tree was decoded from and stays valid only as long as that buffer does.
type TreeEntry struct {
	Name []byte
	Mode EntryMode
	Hash Hash
}

// Tree is an ordered snapshot of named entries. Entries are unique by name
// and sorted by the canonical tree-entry order; decoders produce them that
// way and the diff engine relies on it.
type Tree struct {
	Entries []TreeEntry
}

// EmptyTree is the well-known empty tree. Diffing against "nothing" is
// expressed as diffing against this value, never as a nil special case.
var EmptyTree = &Tree{}

// ErrTreeCorrupt reports a tree payload that does not follow the
// "<octal mode> <name>\0<20-byte hash>" record format.
var ErrTreeCorrupt = errors.New("corrupt tree object")

// CompareEntries orders entries the way git orders them inside a tree:
// byte-wise by name, with tree names compared as if they carried a trailing
// slash. Returns a negative value, zero, or a positive value.
func CompareEntries(a, b TreeEntry) int {
	common := min(len(a.Name), len(b.Name))

	if c := bytes.Compare(a.Name[:common], b.Name[:common]); c != 0 {
		return c
	}

	return int(entryBoundary(a, common)) - int(entryBoundary(b, common))
}

// entryBoundary is the byte that follows the common prefix, substituting the
// virtual trailing slash for tree names that end at the boundary.
func entryBoundary(e TreeEntry, at int) byte {
	if at < len(e.Name) {
		return e.Name[at]
	}

	if e.Mode.IsTree() {
		return '/'
	}

	return 0
}

// SortEntries sorts entries into canonical order. Writers need this before
// encoding; the diff engine never re-sorts.
func SortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return CompareEntries(entries[i], entries[j]) < 0
	})
}

// DecodeTree parses a tree payload (without the loose-object header) into
// tree. Entry names alias data. The previous contents of tree are discarded
// while its entry slice is reused, so one Tree can decode many payloads
// without reallocating.
func DecodeTree(data []byte, tree *Tree) error {
	tree.Entries = tree.Entries[:0]

	for len(data) > 0 {
		space := bytes.IndexByte(data, ' ')
		if space <= 0 {
			return fmt.Errorf("%w: missing mode terminator", ErrTreeCorrupt)
		}

		mode, ok := ParseEntryMode(data[:space])
		if !ok {
			return fmt.Errorf("%w: bad mode %q", ErrTreeCorrupt, data[:space])
		}

		rest := data[space+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul <= 0 {
			return fmt.Errorf("%w: missing name terminator", ErrTreeCorrupt)
		}

		name := rest[:nul]
		rest = rest[nul+1:]

		if len(rest) < HashSize {
			return fmt.Errorf("%w: truncated hash for %q", ErrTreeCorrupt, name)
		}

		var hash Hash
		copy(hash[:], rest[:HashSize])

		tree.Entries = append(tree.Entries, TreeEntry{Name: name, Mode: mode, Hash: hash})

		data = rest[HashSize:]
	}

	return nil
}

// EncodeTree serializes entries into the tree payload format. Entries must
// already be in canonical order.
func EncodeTree(tree *Tree) []byte {
	var buf bytes.Buffer

	for _, entry := range tree.Entries {
		buf.WriteString(entry.Mode.Wire())
		buf.WriteByte(' ')
		buf.Write(entry.Name)
		buf.WriteByte(0)
		buf.Write(entry.Hash[:])
	}

	return buf.Bytes()
}
