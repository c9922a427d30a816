package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goamr/mesh"
	"github.com/notargets/goamr/octree"
)

func oct(l, x, y, z int32) octree.Octant {
	return octree.Octant{Level: l, Coord: [3]int32{x, y, z}}
}

func TestTransformFaceAligned(t *testing.T) {
	frst, err := NewForest(mesh.GenerateQuadMesh(2, 1, 0, 2, 0, 1), 2)
	require.NoError(t, err)

	{ // Depth beyond the face becomes depth inside the neighbor
		r, nbr, err := frst.TransformFace(0, 1, oct(2, 4, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, 1, nbr)
		assert.Equal(t, oct(2, 0, 0, 0), r)

		r, _, err = frst.TransformFace(0, 1, oct(1, 4, 2, 0))
		require.NoError(t, err)
		assert.Equal(t, oct(1, 0, 2, 0), r)
	}
	{ // Crossing back the other way, one lattice step deep
		r, nbr, err := frst.TransformFace(1, 0, oct(2, -1, 3, 0))
		require.NoError(t, err)
		assert.Equal(t, 0, nbr)
		assert.Equal(t, oct(2, 3, 3, 0), r)
	}
	{ // Domain boundary
		_, _, err := frst.TransformFace(0, 0, oct(2, -1, 0, 0))
		assert.ErrorIs(t, err, ErrBoundary)
	}
	{ // An octant inside its own cell does not cross the face
		assert.Panics(t, func() {
			frst.TransformFace(0, 1, oct(2, 0, 0, 0))
		})
	}
}

func TestTransformFaceRotated(t *testing.T) {
	frst, err := NewForest(twoQuadRotated(), 2)
	require.NoError(t, err)

	r, nbr, err := frst.TransformFace(0, 1, oct(2, 4, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, nbr)
	assert.Equal(t, oct(2, 3, 3, 0), r)

	// Same crossing from the right cube's side lands mirrored
	r, nbr, err = frst.TransformFace(1, 1, oct(2, 4, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, nbr)
	assert.Equal(t, oct(2, 3, 3, 0), r)

	// The two maps invert each other on face points
	p, cell, ok := frst.facePointMap(0, 1, [3]int32{4, 1, 0})
	require.True(t, ok)
	assert.Equal(t, 1, cell)
	assert.Equal(t, [3]int32{4, 3, 0}, p)
	q, cell, ok := frst.facePointMap(1, 1, p)
	require.True(t, ok)
	assert.Equal(t, 0, cell)
	assert.Equal(t, [3]int32{4, 1, 0}, q)
}

func TestTransformFaceRotatedHex(t *testing.T) {
	frst, err := NewForest(twoHexRotated(), 2)
	require.NoError(t, err)

	{ // Lower-left octant beyond +x lands against the -z face with the
		// tangentials swapped and one reflected
		r, nbr, err := frst.TransformFace(0, 1, oct(1, 4, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, 1, nbr)
		assert.Equal(t, oct(1, 0, 2, 0), r)
	}
	{ // Face point: global (1, 1/4, 3/4)
		p, cell, ok := frst.facePointMap(0, 1, [3]int32{4, 1, 3})
		require.True(t, ok)
		assert.Equal(t, 1, cell)
		assert.Equal(t, [3]int32{3, 3, 0}, p)
	}
	{ // Octant crossing at depth
		r, _, err := frst.TransformFace(0, 1, oct(2, 5, 2, 1))
		require.NoError(t, err)
		// Global x in [1.25,1.5) puts it one step inside the -z face
		assert.Equal(t, int32(1), r.Coord[2])
		// Global z in [0.25,0.5) maps to the local x axis
		assert.Equal(t, int32(1), r.Coord[0])
		// Global y in [0.5,0.75) reflects to local y in [0.25,0.5)
		assert.Equal(t, int32(1), r.Coord[1])
	}
}

func TestTransformEdge(t *testing.T) {
	frst, err := NewForest(mesh.GenerateHexMesh(2, 2, 1, 0, 2, 0, 2, 0, 1), 2)
	require.NoError(t, err)

	conns := frst.topo.edges[0][11]
	require.Len(t, conns, 3)
	diag := conns[2]
	require.Equal(t, EdgeConn{3, 8, false}, diag)

	// An octant diagonally beyond the central line lands pressed
	// against the diagonal cell's matching edge
	r := frst.TransformEdge(0, 11, diag, oct(1, 4, 4, 0))
	assert.Equal(t, oct(1, 0, 0, 0), r)
	r = frst.TransformEdge(0, 11, diag, oct(1, 4, 4, 2))
	assert.Equal(t, oct(1, 0, 0, 2), r)

	// A reversed connection runs the tangential the other way
	r = frst.TransformEdge(0, 11, EdgeConn{3, 8, true}, oct(1, 4, 4, 0))
	assert.Equal(t, oct(1, 0, 0, 2), r)

	assert.Panics(t, func() { // Not hugging the edge
		frst.TransformEdge(0, 11, diag, oct(1, 4, 0, 0))
	})
	assert.Panics(t, func() { // Overhangs the edge tangentially
		frst.TransformEdge(0, 11, diag, oct(1, 4, 4, 3))
	})
}

func TestTransformCorner(t *testing.T) {
	frst, err := NewForest(mesh.GenerateQuadMesh(2, 2, 0, 1, 0, 1), 2)
	require.NoError(t, err)

	ring := frst.topo.corners[0][3]
	require.Equal(t, []CornerConn{{1, 2}, {2, 1}, {3, 0}}, ring)

	r := frst.TransformCorner(0, 3, CornerConn{3, 0}, oct(2, 4, 4, 0))
	assert.Equal(t, oct(2, 0, 0, 0), r)

	assert.Panics(t, func() {
		frst.TransformCorner(0, 3, CornerConn{3, 0}, oct(2, 4, 2, 0))
	})
}

func TestTransformCornerHex(t *testing.T) {
	frst, err := NewForest(mesh.GenerateHexMesh(2, 2, 2, 0, 1, 0, 1, 0, 1), 3)
	require.NoError(t, err)

	ring := frst.topo.corners[0][7]
	require.Len(t, ring, 7)
	diag := ring[len(ring)-1]
	require.Equal(t, CornerConn{7, 0}, diag)

	r := frst.TransformCorner(0, 7, diag, oct(1, 8, 8, 8))
	assert.Equal(t, oct(1, 0, 0, 0), r)
}
