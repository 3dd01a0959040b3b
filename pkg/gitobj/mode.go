package gitobj

import (
	"strconv"
	"strings"
)

// EntryMode is the file-system kind of a tree entry, encoded the way git
// stores it inside tree objects.
type EntryMode uint32

// The modes git actually writes into tree objects.
const (
	// ModeFile is a regular, non-executable file.
	ModeFile EntryMode = 0o100644
	// ModeExecutable is a regular file with the executable bit set.
	ModeExecutable EntryMode = 0o100755
	// ModeSymlink is a symbolic link whose blob holds the target path.
	ModeSymlink EntryMode = 0o120000
	// ModeTree is a sub-directory.
	ModeTree EntryMode = 0o040000
	// ModeGitlink is a commit reference to another repository (submodule).
	ModeGitlink EntryMode = 0o160000
)

// IsTree returns true for sub-directory entries.
func (m EntryMode) IsTree() bool {
	return m == ModeTree
}

// IsNoTree returns true for every entry kind except sub-directories.
func (m EntryMode) IsNoTree() bool {
	return m != ModeTree
}

// IsBlob returns true for entries whose hash references a blob object.
func (m EntryMode) IsBlob() bool {
	return m == ModeFile || m == ModeExecutable || m == ModeSymlink
}

// Valid reports whether the mode is one git writes into tree objects.
func (m EntryMode) Valid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeSymlink, ModeTree, ModeGitlink:
		return true
	default:
		return false
	}
}

// Wire returns the octal form used in the tree encoding. Trees encode as
// "40000" with no leading zero.
func (m EntryMode) Wire() string {
	return strconv.FormatUint(uint64(m), 8)
}

// String returns the zero-padded octal form used for display, e.g. "040000".
func (m EntryMode) String() string {
	wire := m.Wire()
	if len(wire) < displayModeWidth {
		return strings.Repeat("0", displayModeWidth-len(wire)) + wire
	}

	return wire
}

const displayModeWidth = 6

// ParseEntryMode decodes the octal mode field of a tree entry.
func ParseEntryMode(octal []byte) (EntryMode, bool) {
	if len(octal) == 0 {
		return 0, false
	}

	var mode uint32

	for _, c := range octal {
		if c < '0' || c > '7' {
			return 0, false
		}

		mode = mode<<3 | uint32(c-'0')
	}

	return EntryMode(mode), true
}
