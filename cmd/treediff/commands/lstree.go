package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treediff/pkg/config"
	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
	"github.com/Sumatoshi-tech/treediff/pkg/odb"
)

// LsTreeCommand holds configuration and dependencies for the ls-tree command.
type LsTreeCommand struct {
	configPath string
	gitDir     string
	recurse    bool
}

// NewLsTreeCommand creates the ls-tree command.
func NewLsTreeCommand() *cobra.Command {
	lc := &LsTreeCommand{}

	cmd := &cobra.Command{
		Use:   "ls-tree <tree>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE:  lc.run,
	}

	cmd.Flags().StringVar(&lc.configPath, "config", "", "Config file path (default: ./treediff.yaml)")
	cmd.Flags().StringVar(&lc.gitDir, "git-dir", "", "Repository metadata directory (default from config)")
	cmd.Flags().BoolVarP(&lc.recurse, "recurse", "r", false, "Recurse into sub-trees")

	return cmd
}

func (l *LsTreeCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(l.configPath)
	if err != nil {
		return err
	}

	store, _, err := openStore(cfg, l.gitDir)
	if err != nil {
		return err
	}

	var buf []byte

	tree, err := resolveTreeArg(store, args[0], &buf)
	if err != nil {
		return err
	}

	return l.list(cmd.OutOrStdout(), store, tree, "")
}

func (l *LsTreeCommand) list(out io.Writer, store odb.Store, tree *gitobj.Tree, prefix string) error {
	for _, entry := range tree.Entries {
		objectKind := odb.KindBlob

		switch {
		case entry.Mode.IsTree():
			objectKind = odb.KindTree
		case entry.Mode == gitobj.ModeGitlink:
			objectKind = odb.KindCommit
		}

		fmt.Fprintf(out, "%s %s %s\t%s%s\n", entry.Mode, objectKind, entry.Hash, prefix, entry.Name)

		if !l.recurse || !entry.Mode.IsTree() {
			continue
		}

		var buf []byte

		sub, err := resolveTreeArg(store, entry.Hash.String(), &buf)
		if err != nil {
			return fmt.Errorf("read sub-tree %s%s: %w", prefix, entry.Name, err)
		}

		if err := l.list(out, store, sub, prefix+string(entry.Name)+"/"); err != nil {
			return err
		}
	}

	return nil
}
