// Package odb provides object-store access for content-addressed git
// objects: a loose-object filesystem store, an in-memory store, and an
// LRU caching wrapper with LZ4-compressed payloads.
package odb

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

// Kind is the object type recorded in the loose-object header.
type Kind string

// Object kinds git writes.
const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
	KindTag    Kind = "tag"
)

// Valid reports whether the kind is one git writes.
func (k Kind) Valid() bool {
	switch k {
	case KindBlob, KindTree, KindCommit, KindTag:
		return true
	default:
		return false
	}
}

// Object is a decoded object. Data aliases the scratch buffer passed to the
// lookup and stays valid only until that buffer is refilled.
type Object struct {
	Kind Kind
	Data []byte
}

// ErrNotFound reports a hash the store cannot produce. At the store API this
// is a normal outcome; the diff engine escalates it to a fatal error when it
// happens during recursion.
var ErrNotFound = errors.New("object not found")

// ErrCorruptObject reports an object whose header or payload does not match
// the "<type> <size>\0<payload>" format.
var ErrCorruptObject = errors.New("corrupt object")

// Store maps a content hash to a decoded object. Implementations fill the
// caller's scratch buffer so repeated lookups reuse one allocation.
type Store interface {
	Object(hash gitobj.Hash, buf *[]byte) (Object, error)
}

// parseHeader splits a decompressed loose object into its kind and payload,
// validating the declared size.
func parseHeader(data []byte) (Kind, []byte, error) {
	nul := bytes.IndexByte(data, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("%w: missing header terminator", ErrCorruptObject)
	}

	kindStr, sizeStr, ok := bytes.Cut(data[:nul], []byte{' '})
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed header %q", ErrCorruptObject, data[:nul])
	}

	kind := Kind(kindStr)
	if !kind.Valid() {
		return "", nil, fmt.Errorf("%w: unknown kind %q", ErrCorruptObject, kindStr)
	}

	size, err := strconv.Atoi(string(sizeStr))
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad size %q", ErrCorruptObject, sizeStr)
	}

	payload := data[nul+1:]
	if len(payload) != size {
		return "", nil, fmt.Errorf("%w: size %d does not match payload length %d", ErrCorruptObject, size, len(payload))
	}

	return kind, payload, nil
}
