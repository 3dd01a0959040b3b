package commands_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treediff/cmd/treediff/commands"
	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

func TestLsTreeCommand_Flat(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)

	blob := repo.writeBlob("content\n")
	sub := repo.writeTree(entry("x.txt", gitobj.ModeFile, blob))
	root := repo.writeTree(
		entry("a.txt", gitobj.ModeFile, blob),
		entry("sub", gitobj.ModeTree, sub),
	)

	out, err := runCommand(t, commands.NewLsTreeCommand(),
		"--git-dir", repo.gitDir, root.String())
	require.NoError(t, err)

	want := fmt.Sprintf("100644 blob %s\ta.txt\n040000 tree %s\tsub\n", blob, sub)
	assert.Equal(t, want, out)
}

func TestLsTreeCommand_Recursive(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)

	blob := repo.writeBlob("content\n")
	inner := repo.writeTree(entry("deep.txt", gitobj.ModeFile, blob))
	sub := repo.writeTree(entry("inner", gitobj.ModeTree, inner))
	root := repo.writeTree(entry("sub", gitobj.ModeTree, sub))

	out, err := runCommand(t, commands.NewLsTreeCommand(),
		"--git-dir", repo.gitDir, "-r", root.String())
	require.NoError(t, err)

	assert.Contains(t, out, "\tsub\n")
	assert.Contains(t, out, "\tsub/inner\n")
	assert.Contains(t, out, fmt.Sprintf("100644 blob %s\tsub/inner/deep.txt\n", blob))
}

func TestLsTreeCommand_Empty(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)

	out, err := runCommand(t, commands.NewLsTreeCommand(),
		"--git-dir", repo.gitDir, "empty")
	require.NoError(t, err)

	assert.Empty(t, out)
}

func TestLsTreeCommand_MissingTree(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)

	_, err := runCommand(t, commands.NewLsTreeCommand(),
		"--git-dir", repo.gitDir, "4b825dc642cb6eb9a060e54bf8d69288fbee4905")
	require.ErrorIs(t, err, commands.ErrTreeNotFound)
}
