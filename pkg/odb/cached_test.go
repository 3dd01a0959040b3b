package odb_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
	"github.com/Sumatoshi-tech/treediff/pkg/odb"
)

// countingStore tracks how many lookups reach the wrapped store.
type countingStore struct {
	inner   odb.Store
	lookups int
}

func (s *countingStore) Object(hash gitobj.Hash, buf *[]byte) (odb.Object, error) {
	s.lookups++

	return s.inner.Object(hash, buf)
}

func TestCachedStoreServesFromCache(t *testing.T) {
	memory := odb.NewMemoryStore()
	// Repetitive content compresses; mirrors tree payloads.
	content := bytes.Repeat([]byte("0123456789abcdef"), 64)
	hash := memory.Put(odb.KindBlob, content)

	counting := &countingStore{inner: memory}
	cached := odb.NewCachedStore(counting, 0)

	var buf []byte

	for range 3 {
		obj, err := cached.Object(hash, &buf)

		require.NoError(t, err)
		assert.Equal(t, content, obj.Data)
	}

	assert.Equal(t, 1, counting.lookups, "only the first lookup reaches the inner store")

	stats := cached.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Less(t, stats.CurrentSize, int64(len(content)), "payload is stored compressed")
}

func TestCachedStoreIncompressiblePayload(t *testing.T) {
	memory := odb.NewMemoryStore()
	// High-entropy content that LZ4 cannot shrink.
	content := make([]byte, 256)
	for i := range content {
		content[i] = byte(i*7 + 13)
	}

	hash := memory.Put(odb.KindBlob, content)
	cached := odb.NewCachedStore(memory, 0)

	var buf []byte

	_, err := cached.Object(hash, &buf)
	require.NoError(t, err)

	obj, err := cached.Object(hash, &buf)
	require.NoError(t, err)
	assert.Equal(t, content, obj.Data)
	assert.Equal(t, int64(1), cached.Stats().Hits)
}

func TestCachedStoreEviction(t *testing.T) {
	memory := odb.NewMemoryStore()

	hashes := make([]gitobj.Hash, 8)
	for i := range hashes {
		content := make([]byte, 128)
		for j := range content {
			content[j] = byte(i*31 + j*17)
		}

		hashes[i] = memory.Put(odb.KindBlob, content)
	}

	// Room for roughly two incompressible 128-byte payloads.
	cached := odb.NewCachedStore(memory, 300)

	var buf []byte

	for _, hash := range hashes {
		_, err := cached.Object(hash, &buf)
		require.NoError(t, err)
	}

	stats := cached.Stats()
	assert.LessOrEqual(t, stats.CurrentSize, stats.MaxSize)
	assert.LessOrEqual(t, stats.Entries, 2)

	// The most recently used entry survives.
	_, err := cached.Object(hashes[len(hashes)-1], &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Stats().Hits)
}

func TestCachedStorePassesThroughNotFound(t *testing.T) {
	cached := odb.NewCachedStore(odb.NewMemoryStore(), 0)

	var buf []byte

	_, err := cached.Object(gitobj.NewHash("ffffffffffffffffffffffffffffffffffffffff"), &buf)

	require.ErrorIs(t, err, odb.ErrNotFound)
}

func TestCachedStoreAsTreeSource(t *testing.T) {
	memory := odb.NewMemoryStore()

	entries := make([]gitobj.TreeEntry, 0, 16)
	for i := range 16 {
		entries = append(entries, gitobj.TreeEntry{
			Name: []byte(fmt.Sprintf("file-%02d.txt", i)),
			Mode: gitobj.ModeFile,
			Hash: gitobj.NewHash("1111111111111111111111111111111111111111"),
		})
	}

	tree := &gitobj.Tree{Entries: entries}
	gitobj.SortEntries(tree.Entries)
	hash := memory.PutTree(tree)

	counting := &countingStore{inner: memory}
	lookup := odb.TreeSource(odb.NewCachedStore(counting, 0))

	var buf []byte

	for range 2 {
		decoded, ok := lookup(hash, &buf)

		require.True(t, ok)
		assert.Len(t, decoded.Entries, 16)
	}

	assert.Equal(t, 1, counting.lookups)
}
