package treediff

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

// ErrCancelled is returned when the observer declines to continue. It is a
// deliberate short-circuit, not a defect; callers use it to tell "diff
// abandoned" apart from "diff complete".
var ErrCancelled = errors.New("diff cancelled by observer")

// ObjectNotFoundError reports a sub-tree referenced during recursion that the
// object store could not produce. A structural reference inside a tree must
// resolve, so this is always fatal to the in-flight call.
type ObjectNotFoundError struct {
	Hash gitobj.Hash
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object %s referenced by the tree was not found in the object store", e.Hash)
}
