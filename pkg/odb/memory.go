package odb

import (
	"crypto/sha1" //nolint:gosec // git object identity is defined over SHA-1.
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

// MemoryStore is a map-backed Store. It backs tests and synthetic trees that
// never touch a repository on disk.
type MemoryStore struct {
	objects map[gitobj.Hash]memObject
}

type memObject struct {
	kind Kind
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[gitobj.Hash]memObject)}
}

// Put stores a copy of data under its content hash and returns the hash.
func (s *MemoryStore) Put(kind Kind, data []byte) gitobj.Hash {
	hash := HashObject(kind, data)

	s.objects[hash] = memObject{kind: kind, data: append([]byte(nil), data...)}

	return hash
}

// PutTree encodes tree in canonical form and stores it.
func (s *MemoryStore) PutTree(tree *gitobj.Tree) gitobj.Hash {
	return s.Put(KindTree, gitobj.EncodeTree(tree))
}

// Object returns the object stored under hash, copying its payload into buf.
func (s *MemoryStore) Object(hash gitobj.Hash, buf *[]byte) (Object, error) {
	obj, ok := s.objects[hash]
	if !ok {
		return Object{}, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}

	*buf = append((*buf)[:0], obj.data...)

	return Object{Kind: obj.kind, Data: *buf}, nil
}

// Delete removes the object stored under hash, if any. Tests use this to
// simulate a store with a dangling tree reference.
func (s *MemoryStore) Delete(hash gitobj.Hash) {
	delete(s.objects, hash)
}

// HashObject computes the content hash of an object in the canonical
// "<kind> <size>\0<payload>" form without storing it.
func HashObject(kind Kind, data []byte) gitobj.Hash {
	h := sha1.New() //nolint:gosec // git object identity is defined over SHA-1.
	h.Write([]byte(kind))
	h.Write([]byte{' '})
	h.Write([]byte(strconv.Itoa(len(data))))
	h.Write([]byte{0})
	h.Write(data)

	var hash gitobj.Hash
	copy(hash[:], h.Sum(nil))

	return hash
}
