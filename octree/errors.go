package octree

import (
	"errors"
	"fmt"
)

// ContractError is the panic payload raised when octant arithmetic is
// called outside its preconditions: a level beyond the configured
// maximum, a Morton index outside its level's range, or the parent of
// a root octant. These indicate programmer error and are never
// returned; no partial mutation occurs before the panic.
type ContractError struct {
	Msg string
}

func (e ContractError) Error() string { return e.Msg }

func contractf(format string, args ...interface{}) {
	panic(ContractError{Msg: fmt.Sprintf(format, args...)})
}

var (
	// ErrNotALeaf reports a refine or coarsen target that is not
	// present in the current leaf sequence.
	ErrNotALeaf = errors.New("target octant is not a current leaf")

	// ErrCoarsenRoot reports an attempt to coarsen a root leaf.
	ErrCoarsenRoot = errors.New("cannot coarsen a root leaf")

	// ErrIncompleteFamily reports a coarsen target whose sibling
	// window is not a complete, correctly aligned family.
	ErrIncompleteFamily = errors.New("sibling window is not a complete family")

	// ErrDimension reports an unsupported spatial dimension.
	ErrDimension = errors.New("dimension must be 2 or 3")

	// ErrMaxLevel reports a refinement that would exceed the maximum
	// level, or a configured maximum outside the representable range
	// for the dimension.
	ErrMaxLevel = errors.New("maximum refinement level exceeded")
)
