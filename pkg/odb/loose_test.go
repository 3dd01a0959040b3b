package odb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
	"github.com/Sumatoshi-tech/treediff/pkg/odb"
)

func TestLooseStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	content := []byte("loose object payload")

	hash, err := odb.WriteLoose(dir, odb.KindBlob, content)
	require.NoError(t, err)

	store := odb.NewLooseStore(dir)

	var buf []byte

	obj, err := store.Object(hash, &buf)

	require.NoError(t, err)
	assert.Equal(t, odb.KindBlob, obj.Kind)
	assert.Equal(t, content, obj.Data)
}

func TestLooseStoreFanout(t *testing.T) {
	dir := t.TempDir()

	hash, err := odb.WriteLoose(dir, odb.KindBlob, []byte("fanout"))
	require.NoError(t, err)

	hex := hash.String()

	_, statErr := os.Stat(filepath.Join(dir, hex[:2], hex[2:]))
	require.NoError(t, statErr, "object must live under the two-character fanout directory")
}

func TestLooseStoreWriteIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := odb.WriteLoose(dir, odb.KindBlob, []byte("same content"))
	require.NoError(t, err)

	second, err := odb.WriteLoose(dir, odb.KindBlob, []byte("same content"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLooseStoreNotFound(t *testing.T) {
	store := odb.NewLooseStore(t.TempDir())

	var buf []byte

	_, err := store.Object(gitobj.NewHash("ffffffffffffffffffffffffffffffffffffffff"), &buf)

	require.ErrorIs(t, err, odb.ErrNotFound)
}

func TestLooseStoreCorruptObject(t *testing.T) {
	dir := t.TempDir()

	hash, err := odb.WriteLoose(dir, odb.KindBlob, []byte("will be clobbered"))
	require.NoError(t, err)

	hex := hash.String()
	path := filepath.Join(dir, hex[:2], hex[2:])
	require.NoError(t, os.WriteFile(path, []byte("not zlib at all"), 0o644))

	store := odb.NewLooseStore(dir)

	var buf []byte

	_, lookupErr := store.Object(hash, &buf)

	require.Error(t, lookupErr)
	assert.NotErrorIs(t, lookupErr, odb.ErrNotFound)
}

func TestLooseStoreTreeObjects(t *testing.T) {
	dir := t.TempDir()

	tree := &gitobj.Tree{Entries: []gitobj.TreeEntry{
		{Name: []byte("a.txt"), Mode: gitobj.ModeFile, Hash: gitobj.NewHash("1111111111111111111111111111111111111111")},
		{Name: []byte("lib"), Mode: gitobj.ModeTree, Hash: gitobj.NewHash("2222222222222222222222222222222222222222")},
	}}
	gitobj.SortEntries(tree.Entries)

	hash, err := odb.WriteLoose(dir, odb.KindTree, gitobj.EncodeTree(tree))
	require.NoError(t, err)

	lookup := odb.TreeSource(odb.NewLooseStore(dir))

	var buf []byte

	decoded, ok := lookup(hash, &buf)

	require.True(t, ok)
	require.Len(t, decoded.Entries, 2)
	assert.Equal(t, "a.txt", string(decoded.Entries[0].Name))
	assert.Equal(t, gitobj.ModeTree, decoded.Entries[1].Mode)
}

func TestLooseStoreBufferReuse(t *testing.T) {
	dir := t.TempDir()

	firstHash, err := odb.WriteLoose(dir, odb.KindBlob, []byte("first payload, long enough to matter"))
	require.NoError(t, err)

	secondHash, err := odb.WriteLoose(dir, odb.KindBlob, []byte("second"))
	require.NoError(t, err)

	store := odb.NewLooseStore(dir)

	var buf []byte

	_, err = store.Object(firstHash, &buf)
	require.NoError(t, err)

	capacityAfterFirst := cap(buf)

	obj, err := store.Object(secondHash, &buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), obj.Data)
	assert.Equal(t, capacityAfterFirst, cap(buf), "scratch buffer capacity is retained")
}
