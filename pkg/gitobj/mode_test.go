package gitobj_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

func TestEntryModePredicates(t *testing.T) {
	tests := []struct {
		name   string
		mode   gitobj.EntryMode
		isTree bool
		isBlob bool
	}{
		{name: "file", mode: gitobj.ModeFile, isBlob: true},
		{name: "executable", mode: gitobj.ModeExecutable, isBlob: true},
		{name: "symlink", mode: gitobj.ModeSymlink, isBlob: true},
		{name: "tree", mode: gitobj.ModeTree, isTree: true},
		{name: "gitlink", mode: gitobj.ModeGitlink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTree, tt.mode.IsTree())
			assert.Equal(t, !tt.isTree, tt.mode.IsNoTree())
			assert.Equal(t, tt.isBlob, tt.mode.IsBlob())
			assert.True(t, tt.mode.Valid())
		})
	}
}

func TestEntryModeString(t *testing.T) {
	assert.Equal(t, "100644", gitobj.ModeFile.String())
	assert.Equal(t, "100755", gitobj.ModeExecutable.String())
	assert.Equal(t, "120000", gitobj.ModeSymlink.String())
	assert.Equal(t, "040000", gitobj.ModeTree.String())
	assert.Equal(t, "160000", gitobj.ModeGitlink.String())
}

func TestEntryModeWire(t *testing.T) {
	assert.Equal(t, "40000", gitobj.ModeTree.Wire())
	assert.Equal(t, "100644", gitobj.ModeFile.Wire())
}

func TestParseEntryMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected gitobj.EntryMode
		ok       bool
	}{
		{name: "file", input: "100644", expected: gitobj.ModeFile, ok: true},
		{name: "tree short form", input: "40000", expected: gitobj.ModeTree, ok: true},
		{name: "tree padded", input: "040000", expected: gitobj.ModeTree, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "non-octal", input: "10064x", ok: false},
		{name: "digit eight", input: "100648", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, ok := gitobj.ParseEntryMode([]byte(tt.input))

			require.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.expected, mode)
			}
		})
	}
}

func TestEntryModeValid(t *testing.T) {
	assert.False(t, gitobj.EntryMode(0).Valid())
	assert.False(t, gitobj.EntryMode(0o100600).Valid())
}
