package octree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func oct(l, x, y, z int32) Octant {
	return Octant{Level: l, Coord: [3]int32{x, y, z}}
}

func TestMortonRoundTrip(t *testing.T) {
	{ // decode anchors quoted from the 2x2 lattice, level 1, b=2
		assert.Equal(t, oct(1, 0, 0, 0), FromMorton(2, 1, 1, 2))
		assert.Equal(t, oct(1, 2, 0, 0), FromMorton(2, 1, 2, 2))
		assert.Equal(t, oct(1, 0, 2, 0), FromMorton(2, 1, 3, 2))
		assert.Equal(t, oct(1, 2, 2, 0), FromMorton(2, 1, 4, 2))
	}
	{ // every index at every level round-trips, 2D
		b := 3
		for level := 0; level <= b; level++ {
			n := uint64(1) << uint(2*level)
			for m := uint64(1); m <= n; m++ {
				o := FromMorton(2, level, m, b)
				assert.Equal(t, m, o.Morton(2, level, b))
				h := o.Size(b)
				assert.Zero(t, o.Coord[0]%h)
				assert.Zero(t, o.Coord[1]%h)
				assert.Zero(t, o.Coord[2])
			}
		}
	}
	{ // 3D
		b := 2
		for level := 0; level <= b; level++ {
			n := uint64(1) << uint(3*level)
			for m := uint64(1); m <= n; m++ {
				o := FromMorton(3, level, m, b)
				assert.Equal(t, m, o.Morton(3, level, b))
			}
		}
	}
	{ // x varies fastest in the interleave
		assert.Equal(t, oct(2, 1, 0, 0), FromMorton(2, 2, 2, 2))
		assert.Equal(t, oct(2, 0, 1, 0), FromMorton(2, 2, 3, 2))
		assert.Equal(t, oct(1, 2, 0, 0), FromMorton(3, 1, 2, 2))
		assert.Equal(t, oct(1, 0, 2, 0), FromMorton(3, 1, 3, 2))
		assert.Equal(t, oct(1, 0, 0, 2), FromMorton(3, 1, 5, 2))
	}
}

func TestChildrenAndParent(t *testing.T) {
	for _, dim := range []int{2, 3} {
		b := 3
		for level := 0; level < b; level++ {
			n := uint64(1) << uint(dim*level)
			for m := uint64(1); m <= n; m++ {
				o := FromMorton(dim, level, m, b)
				kids := o.Children(dim, b)
				assert.Len(t, kids, NumChildren(dim))
				for i, k := range kids {
					assert.Equal(t, o, k.Parent(dim, b))
					assert.Equal(t, i+1, k.ChildID(dim, b))
					assert.Equal(t, i+1, k.AncestorID(dim, level+1, b))
				}
				// consecutive Morton indices at the child level
				first := kids[0].Morton(dim, level+1, b)
				assert.Equal(t, o.Morton(dim, level+1, b), first)
				for i, k := range kids {
					assert.Equal(t, first+uint64(i), k.Morton(dim, level+1, b))
				}
			}
		}
	}
}

func TestAncestorID(t *testing.T) {
	// the deep octant's branch path reads off one id per level
	b := 3
	o := oct(3, 5, 6, 0) // x=101, y=110
	assert.Equal(t, 4, o.AncestorID(2, 1, b)) // top bits x=1,y=1
	assert.Equal(t, 3, o.AncestorID(2, 2, b)) // middle bits x=0,y=1
	assert.Equal(t, 2, o.ChildID(2, b))       // low bits x=1,y=0
	assert.Equal(t, o.ChildID(2, b), o.AncestorID(2, 3, b))
}

func TestVertexFaceEdgeCorner(t *testing.T) {
	{ // quad at level 1, b=2, anchor (2,0)
		o := oct(1, 2, 0, 0)
		assert.Equal(t, [3]int32{2, 0, 0}, o.Vertex(2, 0, 2))
		assert.Equal(t, [3]int32{4, 0, 0}, o.Vertex(2, 1, 2))
		assert.Equal(t, [3]int32{2, 2, 0}, o.Vertex(2, 2, 2))
		assert.Equal(t, [3]int32{4, 2, 0}, o.Vertex(2, 3, 2))

		assert.Equal(t, oct(1, 0, 0, 0), o.FaceNeighbor(0, 2))
		assert.Equal(t, oct(1, 4, 0, 0), o.FaceNeighbor(1, 2))
		assert.False(t, o.FaceNeighbor(1, 2).Inside(2, 2))
		assert.Equal(t, oct(1, 2, -2, 0), o.FaceNeighbor(2, 2))
		assert.Equal(t, oct(1, 2, 2, 0), o.FaceNeighbor(3, 2))

		assert.Equal(t, oct(1, 0, -2, 0), o.CornerNeighbor(2, 0, 2))
		assert.Equal(t, oct(1, 4, 2, 0), o.CornerNeighbor(2, 3, 2))
	}
	{ // hex at level 1, b=2, anchor (0,2,2)
		o := oct(1, 0, 2, 2)
		assert.Equal(t, [3]int32{2, 4, 4}, o.Vertex(3, 7, 2))
		assert.Equal(t, oct(1, 0, 2, 0), o.FaceNeighbor(4, 2))
		// edge 0 runs along x at the low-y low-z side
		assert.Equal(t, oct(1, 0, 0, 0), o.EdgeNeighbor(0, 2))
		// edge 11 runs along z at the high-x high-y side
		assert.Equal(t, oct(1, 2, 4, 2), o.EdgeNeighbor(11, 2))
		assert.Equal(t, oct(1, -2, 0, 0), o.CornerNeighbor(3, 0, 2))
	}
}

func TestConnectivityTables(t *testing.T) {
	{ // face corners sit on their face
		for _, dim := range []int{2, 3} {
			for f := 0; f < NumFaces(dim); f++ {
				a, side := FaceAxis(f)
				for _, c := range FaceCorners(dim, f) {
					assert.Equal(t, side, c>>a&1, "dim %d face %d corner %d", dim, f, c)
				}
			}
		}
	}
	{ // edge corners differ only along the edge axis
		for e := 0; e < 12; e++ {
			c0, c1 := EdgeCorners(e)
			a := EdgeAxis(e)
			assert.Equal(t, 0, c0>>a&1)
			assert.Equal(t, 1, c1>>a&1)
			q1, q2, s1, s2 := EdgeSides(e)
			for _, c := range []int{c0, c1} {
				assert.Equal(t, s1, c>>q1&1)
				assert.Equal(t, s2, c>>q2&1)
			}
		}
	}
	{ // each face's edges connect that face's corners
		for f := 0; f < 6; f++ {
			onFace := make(map[int]bool)
			for _, c := range FaceCorners(3, f) {
				onFace[c] = true
			}
			for _, e := range FaceEdges(f) {
				c0, c1 := EdgeCorners(e)
				assert.True(t, onFace[c0] && onFace[c1], "face %d edge %d", f, e)
			}
		}
	}
}

func TestOrdering(t *testing.T) {
	b := 2
	root := oct(0, 0, 0, 0)
	kids := root.Children(2, b)
	// ancestors precede descendants, siblings follow Z-order
	assert.True(t, root.Less(kids[0], 2, b))
	assert.False(t, kids[0].Less(root, 2, b))
	for i := 0; i+1 < len(kids); i++ {
		assert.True(t, kids[i].Less(kids[i+1], 2, b))
	}
	gk := kids[1].Children(2, b)
	assert.True(t, kids[0].Less(gk[0], 2, b))
	assert.True(t, gk[3].Less(kids[2], 2, b))
}

func TestContainsInside(t *testing.T) {
	b := 3
	o := oct(1, 4, 0, 0)
	assert.True(t, o.Contains(o, 2, b))
	assert.True(t, o.Contains(oct(2, 6, 2, 0), 2, b))
	assert.False(t, o.Contains(oct(2, 2, 2, 0), 2, b))
	assert.False(t, o.Contains(oct(0, 0, 0, 0), 2, b))
	assert.True(t, oct(0, 0, 0, 0).Contains(o, 2, b))
	assert.True(t, o.Inside(2, b))
	assert.False(t, oct(1, -4, 0, 0).Inside(2, b))
	assert.False(t, oct(1, 8, 0, 0).Inside(2, b))
}

func TestArithmeticContracts(t *testing.T) {
	asContract := func(fn func()) {
		defer func() {
			r := recover()
			assert.NotNil(t, r)
			_, ok := r.(ContractError)
			assert.True(t, ok, "panic value %v is not a ContractError", r)
		}()
		fn()
	}
	asContract(func() { FromMorton(2, 3, 1, 2) })       // level beyond max
	asContract(func() { FromMorton(2, 1, 0, 2) })       // index below range
	asContract(func() { FromMorton(2, 1, 5, 2) })       // index above range
	asContract(func() { oct(0, 0, 0, 0).Parent(2, 2) }) // root parent
	asContract(func() { oct(0, 0, 0, 0).Morton(2, 3, 2) })
	asContract(func() { oct(2, 1, 1, 0).AncestorID(2, 0, 2) })
	asContract(func() { oct(1, 2, 0, 0).AncestorID(2, 2, 2) })
}
