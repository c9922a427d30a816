package octree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, dim, b int) *Octree {
	t.Helper()
	tree, err := New(dim, b, nil)
	require.NoError(t, err)
	return tree
}

func TestNewValidation(t *testing.T) {
	if _, err := New(1, 2, nil); !errors.Is(err, ErrDimension) {
		t.Errorf("dim 1: got %v, want ErrDimension", err)
	}
	if _, err := New(4, 2, nil); !errors.Is(err, ErrDimension) {
		t.Errorf("dim 4: got %v, want ErrDimension", err)
	}
	if _, err := New(2, 31, nil); !errors.Is(err, ErrMaxLevel) {
		t.Errorf("2D maxLevel 31: got %v, want ErrMaxLevel", err)
	}
	if _, err := New(3, 20, nil); !errors.Is(err, ErrMaxLevel) {
		t.Errorf("3D maxLevel 20: got %v, want ErrMaxLevel", err)
	}
	if _, err := New(2, 0, nil); !errors.Is(err, ErrMaxLevel) {
		t.Errorf("maxLevel 0: got %v, want ErrMaxLevel", err)
	}
	tree := newTree(t, 2, MaxLevel2D)
	if len(tree.Leaves) != 1 || tree.Leaves[0] != (Octant{}) {
		t.Errorf("new tree should hold the single root leaf, got %v", tree.Leaves)
	}
}

func TestRefineCoarsenRoundTrip(t *testing.T) {
	// refine the root, then coarsening through any child restores the
	// single-root state
	for cid := 0; cid < 4; cid++ {
		tree := newTree(t, 2, 2)
		require.NoError(t, tree.Refine(tree.Root()))
		if len(tree.Leaves) != 4 {
			t.Fatalf("after refine: %d leaves, want 4", len(tree.Leaves))
		}
		require.NoError(t, tree.CheckPartition())
		require.NoError(t, tree.Coarsen(tree.Leaves[cid]))
		if len(tree.Leaves) != 1 || tree.Leaves[0] != tree.Root() {
			t.Fatalf("coarsen via child %d did not restore the root: %v", cid, tree.Leaves)
		}
		require.NoError(t, tree.CheckPartition())
	}
}

func TestRefineKeepsOrderAndPartition(t *testing.T) {
	var (
		tree = newTree(t, 2, 3)
		b    = tree.MaxLevel
	)
	steps := []Octant{
		tree.Root(),
		oct(1, 4, 0, 0),
		oct(2, 4, 2, 0),
		oct(1, 0, 4, 0),
	}
	for _, s := range steps {
		require.NoError(t, tree.Refine(s))
		if err := tree.CheckPartition(); err != nil {
			t.Fatalf("after refining %v: %v", s, err)
		}
		var sum uint64
		for _, lf := range tree.Leaves {
			sum += Volume(2, int(lf.Level), b)
		}
		if want := Volume(2, 0, b); sum != want {
			t.Errorf("leaf volumes sum to %d, want %d", sum, want)
		}
	}
	if len(tree.Leaves) != 13 {
		t.Errorf("got %d leaves, want 13", len(tree.Leaves))
	}
}

func TestRefineThenCoarsenRestoresSequence(t *testing.T) {
	tree := newTree(t, 3, 2)
	require.NoError(t, tree.Refine(tree.Root()))
	require.NoError(t, tree.Refine(tree.Leaves[5]))
	snapshot := append([]Octant(nil), tree.Leaves...)

	target := tree.Leaves[2]
	require.NoError(t, tree.Refine(target))
	require.NoError(t, tree.CheckPartition())
	require.NoError(t, tree.Coarsen(tree.Leaves[2])) // first child sits where target was
	assert.Equal(t, snapshot, tree.Leaves)
}

func TestRefineErrors(t *testing.T) {
	tree := newTree(t, 2, 2)
	if err := tree.Refine(oct(1, 2, 0, 0)); !errors.Is(err, ErrNotALeaf) {
		t.Errorf("refine non-leaf: got %v, want ErrNotALeaf", err)
	}
	// drill one branch to the bottom
	require.NoError(t, tree.Refine(tree.Root()))
	require.NoError(t, tree.Refine(oct(1, 0, 0, 0)))
	before := append([]Octant(nil), tree.Leaves...)
	if err := tree.Refine(oct(2, 0, 0, 0)); !errors.Is(err, ErrMaxLevel) {
		t.Errorf("refine at maxLevel: got %v, want ErrMaxLevel", err)
	}
	assert.Equal(t, before, tree.Leaves, "failed refine must not mutate the tree")
}

func TestCoarsenErrors(t *testing.T) {
	tree := newTree(t, 2, 2)
	if err := tree.Coarsen(tree.Root()); !errors.Is(err, ErrCoarsenRoot) {
		t.Errorf("coarsen root: got %v, want ErrCoarsenRoot", err)
	}
	if err := tree.Coarsen(oct(1, 0, 0, 0)); !errors.Is(err, ErrNotALeaf) {
		t.Errorf("coarsen absent target: got %v, want ErrNotALeaf", err)
	}

	// refining the first child leaves [c0 kids..., c1, c2, c3]; the
	// window located from c1 is then not a family
	require.NoError(t, tree.Refine(tree.Root()))
	require.NoError(t, tree.Refine(oct(1, 0, 0, 0)))
	before := append([]Octant(nil), tree.Leaves...)
	if err := tree.Coarsen(oct(1, 2, 0, 0)); !errors.Is(err, ErrIncompleteFamily) {
		t.Errorf("coarsen broken family: got %v, want ErrIncompleteFamily", err)
	}
	assert.Equal(t, before, tree.Leaves, "failed coarsen must not mutate the tree")

	// a complete family coarsens fine afterwards
	if err := tree.Coarsen(oct(2, 1, 1, 0)); err != nil {
		t.Errorf("coarsen intact family: %v", err)
	}
	require.NoError(t, tree.CheckPartition())
}

func TestSplitArray(t *testing.T) {
	var (
		tree = newTree(t, 2, 3)
		b    = tree.MaxLevel
	)
	require.NoError(t, tree.Refine(tree.Root()))
	require.NoError(t, tree.Refine(oct(1, 0, 0, 0)))
	require.NoError(t, tree.Refine(oct(1, 4, 4, 0)))
	// leaves: 4 under branch 1, one each under 2 and 3, 4 under 4
	off := SplitArray(tree.Leaves, tree.Root(), 2, b)
	assert.Equal(t, []int{0, 4, 5, 6, 10}, off)
	for i := 0; i < 4; i++ {
		branch := tree.Leaves[off[i]:off[i+1]]
		for _, lf := range branch {
			assert.Equal(t, i+1, lf.AncestorID(2, 1, b))
		}
	}
	// splitting one refined child buckets its leaves one per branch
	sub := tree.Leaves[off[0]:off[1]]
	off0 := SplitArray(sub, oct(1, 0, 0, 0), 2, b)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, off0)
}

func TestSearchMatchAll(t *testing.T) {
	var (
		tree = newTree(t, 2, 3)
		set  = []int{7, 11, 42}
		all  = func(Octant, bool, int, int) bool { return true }
	)
	require.NoError(t, tree.Refine(tree.Root()))
	require.NoError(t, tree.Refine(oct(1, 4, 0, 0)))
	require.NoError(t, tree.Refine(oct(2, 6, 2, 0)))

	got := tree.Search(set, all)
	assert.ElementsMatch(t, set, got,
		"an always-true predicate must return each candidate exactly once")

	// the same holds on an unrefined tree via the immediate base case
	assert.ElementsMatch(t, set, newTree(t, 2, 3).Search(set, all))
}

func TestSearchDefaultPredicate(t *testing.T) {
	set := []int{1, 2, 3}
	{ // single-leaf base case still matches
		tree := newTree(t, 2, 2)
		assert.ElementsMatch(t, set, tree.Search(set, MatchLeafDefault))
	}
	{ // anything deeper is discarded by the stub
		tree := newTree(t, 2, 2)
		require.NoError(t, tree.Refine(tree.Root()))
		assert.Empty(t, tree.Search(set, MatchLeafDefault))
	}
}

func TestSearchFiltering(t *testing.T) {
	// two uniform refinement sweeps leave no single-leaf shortcut at
	// level 1, so the predicate sees every candidate on every branch
	tree := newTree(t, 2, 3)
	require.NoError(t, tree.Refine(tree.Root()))
	for _, lf := range append([]Octant(nil), tree.Leaves...) {
		require.NoError(t, tree.Refine(lf))
	}
	var (
		set  = []int{0, 1, 2, 13}
		drop = func(node Octant, isLeaf bool, item int, b int) bool {
			return item != 13
		}
	)
	got := tree.Search(set, drop)
	assert.ElementsMatch(t, []int{0, 1, 2}, got)

	// on the unrefined tree the conservative base case keeps item 13
	assert.ElementsMatch(t, set, newTree(t, 2, 3).Search(set, drop))
}

func TestLocateLeaf(t *testing.T) {
	tree := newTree(t, 2, 3)
	require.NoError(t, tree.Refine(tree.Root()))
	require.NoError(t, tree.Refine(oct(1, 4, 0, 0)))

	for _, tc := range []struct {
		p    [3]int32
		want Octant
	}{
		{[3]int32{0, 0, 0}, oct(1, 0, 0, 0)},
		{[3]int32{3, 3, 0}, oct(1, 0, 0, 0)},
		{[3]int32{4, 0, 0}, oct(2, 4, 0, 0)},
		{[3]int32{7, 1, 0}, oct(2, 6, 0, 0)},
		{[3]int32{5, 3, 0}, oct(2, 4, 2, 0)},
		{[3]int32{7, 7, 0}, oct(1, 4, 4, 0)},
	} {
		i, lf := tree.LocateLeaf(tc.p)
		if lf != tc.want {
			t.Errorf("LocateLeaf(%v) = %v, want %v", tc.p, lf, tc.want)
		}
		if tree.Leaves[i] != lf {
			t.Errorf("LocateLeaf index %d disagrees with leaf %v", i, lf)
		}
	}
	assert.Panics(t, func() { tree.LocateLeaf([3]int32{8, 0, 0}) })
}
