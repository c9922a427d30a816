package mesh

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadSU2Quad(t *testing.T) {
	{ // Test reading the file structure
		reader := bufio.NewReader(bytes.NewReader(su2QuadFile))

		dim := readNumber(reader)
		assert.Equal(t, 2, dim)
		nelem := readNumber(reader)
		assert.Equal(t, 4, nelem)
		skipLines(4, reader)
		npts := readNumber(reader)
		assert.Equal(t, 9, npts)
		skipLines(9, reader)
		nmark := readNumber(reader)
		assert.Equal(t, 2, nmark)
		labels := []string{"bottom", "Left"}
		nFacesBC := []int{2, 2}
		for n := 0; n < nmark; n++ {
			mark := readLabel(reader)
			assert.Equal(t, labels[n], mark)
			nm := readNumber(reader)
			assert.Equal(t, nFacesBC[n], nm)
			skipLines(nm, reader)
		}
	}
	{ // Test read cells and vertices
		reader := bufio.NewReader(bytes.NewReader(su2QuadFile))
		_ = readNumber(reader)
		K, EToV := readSU2Cells(2, reader)
		assert.Equal(t, 4, K)
		assert.Equal(t, []int{0, 1, 4, 3}, EToV[0])
		assert.Equal(t, []int{4, 5, 8, 7}, EToV[3])
	}
	{ // Test the full read with marker resolution
		reader := bufio.NewReader(bytes.NewReader(su2QuadFile))
		msh := readSU2(reader, false)
		assert.Equal(t, 2, msh.Dim)
		assert.Equal(t, Quad, msh.Type)
		assert.Equal(t, 9, msh.Nv)
		assert.Equal(t, 0.5, msh.VX.AtVec(4))
		assert.Equal(t, 0.5, msh.VY.AtVec(4))

		// Markers resolve to (cell, face) pairs and keys are lowercased
		assert.Equal(t, []FaceIndex{{0, 0}, {1, 0}}, msh.FaceSets["bottom"])
		assert.Equal(t, []FaceIndex{{0, 3}, {2, 3}}, msh.FaceSets["left"])
	}
}

func TestReadSU2Hex(t *testing.T) {
	reader := bufio.NewReader(bytes.NewReader(su2HexFile))
	msh := readSU2(reader, false)
	assert.Equal(t, 3, msh.Dim)
	assert.Equal(t, Hex, msh.Type)
	assert.Equal(t, 1, msh.K)
	assert.Equal(t, 8, msh.Nv)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, msh.EToV[0])
	assert.Equal(t, 1.0, msh.VZ.AtVec(4))
	assert.Equal(t, []FaceIndex{{0, 0}}, msh.FaceSets["floor"])
}

func TestReadSU2BadMarker(t *testing.T) {
	// A marker naming vertices that do not form a cell face must panic
	bad := bytes.Replace(su2QuadFile, []byte("3 0 1\n"), []byte("3 0 4\n"), 1)
	reader := bufio.NewReader(bytes.NewReader(bad))
	assert.Panics(t, func() { readSU2(reader, false) })
}

var (
	su2QuadFile = []byte(`% 2x2 quad test mesh in SU2 format
NDIME= 2
NELEM= 4
9 0 1 4 3 0
9 1 2 5 4 1
9 3 4 7 6 2
9 4 5 8 7 3
NPOIN= 9
0.0 0.0 0
0.5 0.0 1
1.0 0.0 2
0.0 0.5 3
0.5 0.5 4
1.0 0.5 5
0.0 1.0 6
0.5 1.0 7
1.0 1.0 8
NMARK= 2
% Comments can appear outside of data areas
MARKER_TAG= bottom
MARKER_ELEMS= 2
3 0 1
3 1 2
MARKER_TAG= Left
MARKER_ELEMS= 2
3 0 3
3 3 6
`)

	su2HexFile = []byte(`% single hex test mesh in SU2 format
NDIME= 3
NELEM= 1
12 0 1 2 3 4 5 6 7 0
NPOIN= 8
0.0 0.0 0.0
1.0 0.0 0.0
1.0 1.0 0.0
0.0 1.0 0.0
0.0 0.0 1.0
1.0 0.0 1.0
1.0 1.0 1.0
0.0 1.0 1.0
NMARK= 1
MARKER_TAG= floor
MARKER_ELEMS= 1
9 0 1 2 3
`)
)
