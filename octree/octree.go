/*
Package octree implements the per-macro-cell refinement tree of an
adaptive quad/hex forest mesh. A tree is stored linearized, as the
sorted sequence of its current leaves, each an Octant addressed by
level and integer anchor coordinates, with Morton (Z-order) keys
providing the total order for binary search, in-place refinement and
coarsening.
*/
package octree

import (
	"fmt"
	"sort"
)

/*
Octree is one macro cell's refinable tree. Leaves holds the current
partition of the lattice [0, 2^MaxLevel)^Dim, sorted ascending by
Morton key; every exported operation preserves sortedness and the
gap-free, overlap-free tiling. Verts records the macro cell's corner
node ids in the coarse mesh, Z-order, for use by the enclosing forest.
*/
type Octree struct {
	Leaves   []Octant
	Dim      int
	MaxLevel int
	Verts    []int
}

// New creates a tree holding the single root leaf. The dimension must
// be 2 or 3 and maxLevel within the representable range; verts may be
// nil for a standalone tree.
func New(dim, maxLevel int, verts []int) (*Octree, error) {
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("octree: %w: %d", ErrDimension, dim)
	}
	if maxLevel < 1 || maxLevel > MaxLevelBound(dim) {
		return nil, fmt.Errorf("octree: %w: %d for dim %d (max %d)",
			ErrMaxLevel, maxLevel, dim, MaxLevelBound(dim))
	}
	return &Octree{
		Leaves:   []Octant{{}},
		Dim:      dim,
		MaxLevel: maxLevel,
		Verts:    verts,
	}, nil
}

// Root returns the level-0 octant covering the whole lattice.
func (t *Octree) Root() Octant { return Octant{} }

// find locates o in the sorted leaf sequence.
func (t *Octree) find(o Octant) (int, bool) {
	i := sort.Search(len(t.Leaves), func(i int) bool {
		return !t.Leaves[i].Less(o, t.Dim, t.MaxLevel)
	})
	if i < len(t.Leaves) && t.Leaves[i] == o {
		return i, true
	}
	return i, false
}

// IsLeaf reports whether o is a current leaf.
func (t *Octree) IsLeaf(o Octant) bool {
	_, ok := t.find(o)
	return ok
}

/*
Refine replaces the leaf equal to target with its 2^Dim children in
place, preserving the sort order (the children occupy consecutive
Morton indices at the child level, so the sequence stays sorted without
re-sorting). Refining an octant already at MaxLevel returns ErrMaxLevel;
a target that is not a current leaf returns ErrNotALeaf.
*/
func (t *Octree) Refine(target Octant) error {
	i, ok := t.find(target)
	if !ok {
		return fmt.Errorf("refine %v: %w", target, ErrNotALeaf)
	}
	if int(target.Level) >= t.MaxLevel {
		return fmt.Errorf("refine %v: %w", target, ErrMaxLevel)
	}
	kids := target.Children(t.Dim, t.MaxLevel)
	out := make([]Octant, 0, len(t.Leaves)+len(kids)-1)
	out = append(out, t.Leaves[:i]...)
	out = append(out, kids...)
	out = append(out, t.Leaves[i+1:]...)
	t.Leaves = out
	return nil
}

/*
Coarsen replaces the complete sibling family containing target with
their common parent. The window is located from target's position using
its ChildID offset and verified to be exactly the parent's 2^Dim
children before anything is touched; a broken window returns
ErrIncompleteFamily and leaves the tree unchanged.
*/
func (t *Octree) Coarsen(target Octant) error {
	i, ok := t.find(target)
	if !ok {
		return fmt.Errorf("coarsen %v: %w", target, ErrNotALeaf)
	}
	if target.Level == 0 {
		return fmt.Errorf("coarsen %v: %w", target, ErrCoarsenRoot)
	}
	var (
		n  = NumChildren(t.Dim)
		lo = i - (target.ChildID(t.Dim, t.MaxLevel) - 1)
	)
	if lo < 0 || lo+n > len(t.Leaves) {
		return fmt.Errorf("coarsen %v: %w", target, ErrIncompleteFamily)
	}
	parent := target.Parent(t.Dim, t.MaxLevel)
	for j, want := range parent.Children(t.Dim, t.MaxLevel) {
		if t.Leaves[lo+j] != want {
			return fmt.Errorf("coarsen %v: %w", target, ErrIncompleteFamily)
		}
	}
	t.Leaves[lo] = parent
	t.Leaves = append(t.Leaves[:lo+1], t.Leaves[lo+n:]...)
	return nil
}

// Inside reports whether o lies within this tree's lattice.
func (t *Octree) Inside(o Octant) bool {
	return o.Inside(t.Dim, t.MaxLevel)
}

// LocateLeaf returns the index and value of the leaf whose region
// contains the lattice point p. The point must lie inside the lattice.
func (t *Octree) LocateLeaf(p [3]int32) (int, Octant) {
	u := Octant{Level: int32(t.MaxLevel), Coord: p}
	if !u.Inside(t.Dim, t.MaxLevel) {
		contractf("locateLeaf: point (%d,%d,%d) outside lattice", p[0], p[1], p[2])
	}
	i := sort.Search(len(t.Leaves), func(i int) bool {
		return u.Less(t.Leaves[i], t.Dim, t.MaxLevel)
	}) - 1
	return i, t.Leaves[i]
}

/*
SplitArray partitions a sorted leaf range lying under query into one
contiguous subrange per child branch of query, keyed on each leaf's
AncestorID at query's child level. The returned offsets have length
2^dim+1; branch i (0-based) occupies leaves[off[i]:off[i+1]]. Every
leaf must be a strict descendant of query.
*/
func SplitArray(leaves []Octant, query Octant, dim, b int) []int {
	var (
		n     = NumChildren(dim)
		level = int(query.Level) + 1
		off   = make([]int, n+1)
	)
	off[n] = len(leaves)
	for i := 1; i < n; i++ {
		off[i] = sort.Search(len(leaves), func(j int) bool {
			return leaves[j].AncestorID(dim, level, b) > i
		})
	}
	return off
}

/*
MatchFunc decides whether a candidate item remains relevant to the
subtree rooted at node while Search descends. isLeaf reports that the
branch under node has narrowed to a single leaf. Items discarded at a
node are not considered anywhere below it.
*/
type MatchFunc func(node Octant, isLeaf bool, item int, maxLevel int) bool

// MatchLeafDefault is the conservative default predicate: it discards
// candidates at every interior node, so only the exact single-leaf base
// case handled inside Search itself ever reports matches. Callers with
// real queries supply their own predicate.
func MatchLeafDefault(node Octant, isLeaf bool, item int, maxLevel int) bool {
	return false
}

/*
Search descends the sorted leaf range under query with an explicit work
stack, filtering the candidate item set by match at every branch. A
range that has narrowed to the single leaf equal to its branch octant
is the base case: the items that survived to it are reported without
consulting the predicate. Each item is reported at most once no matter
how many leaves it survives to.

Search is the forest's query extension point; the refinement and
balance passes locate leaves directly, while external consumers (point
location, dof scans) supply their own MatchFunc.
*/
func Search(leaves []Octant, query Octant, set []int, dim, b int, match MatchFunc) []int {
	type frame struct {
		lo, hi int
		node   Octant
		items  []int
	}
	var (
		out   []int
		seen  = make(map[int]bool)
		stack = []frame{{0, len(leaves), query, set}}
	)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.hi-f.lo == 1 && leaves[f.lo] == f.node {
			for _, it := range f.items {
				if !seen[it] {
					seen[it] = true
					out = append(out, it)
				}
			}
			continue
		}
		off := SplitArray(leaves[f.lo:f.hi], f.node, dim, b)
		for i, child := range f.node.Children(dim, b) {
			lo, hi := f.lo+off[i], f.lo+off[i+1]
			if lo == hi {
				continue
			}
			if hi-lo == 1 && leaves[lo] == child {
				// Base case next pop; keep the set intact.
				stack = append(stack, frame{lo, hi, child, f.items})
				continue
			}
			var kept []int
			for _, it := range f.items {
				if match(child, hi-lo == 1, it, b) {
					kept = append(kept, it)
				}
			}
			if len(kept) > 0 {
				stack = append(stack, frame{lo, hi, child, kept})
			}
		}
	}
	return out
}

// Search runs a candidate-set query over the whole tree, rooted at the
// tree's root octant.
func (t *Octree) Search(set []int, match MatchFunc) []int {
	return Search(t.Leaves, t.Root(), set, t.Dim, t.MaxLevel, match)
}

// Volume returns the number of lattice cells covered by an octant at
// level l, 2^(dim*(b-l)).
func Volume(dim, level, b int) uint64 {
	return uint64(1) << (uint(dim) * uint(b-level))
}

// CheckPartition verifies the leaf tiling invariant: each leaf's Morton
// key must continue exactly where the previous leaf's region ended, so
// the sequence covers the lattice without gap or overlap. Intended for
// tests and debugging sweeps rather than hot paths.
func (t *Octree) CheckPartition() error {
	expect := uint64(1)
	for i, lf := range t.Leaves {
		if !t.Inside(lf) {
			return fmt.Errorf("leaf %d = %v outside lattice", i, lf)
		}
		key := lf.Morton(t.Dim, t.MaxLevel, t.MaxLevel)
		if key != expect {
			return fmt.Errorf("leaf %d = %v has key %d, want %d (gap or overlap)",
				i, lf, key, expect)
		}
		expect = key + Volume(t.Dim, int(lf.Level), t.MaxLevel)
	}
	if want := Volume(t.Dim, 0, t.MaxLevel) + 1; expect != want {
		return fmt.Errorf("leaves cover %d lattice cells, want %d", expect-1, want-1)
	}
	return nil
}
