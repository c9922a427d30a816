package forest

import (
	"fmt"

	"github.com/james-bowman/sparse"

	"github.com/notargets/goamr/mesh"
	"github.com/notargets/goamr/octree"
	"github.com/notargets/goamr/types"
)

/*
Mesh files carry cell vertices in the usual CFD ordering: quads
counterclockwise, hexes as a counterclockwise bottom ring 0-3 under a
top ring 4-7. The octree package numbers corners and faces in Z-order.
The tables below translate between the two; indexed by file position,
they give the Z-order equivalent.
*/
var (
	// quadVertToZ[i] is the Z-order corner of file vertex i
	quadVertToZ = [4]int{0, 1, 3, 2}
	// hexVertToZ[i] is the Z-order corner of file vertex i
	hexVertToZ = [8]int{0, 1, 3, 2, 4, 5, 7, 6}
	// quadFaceToZ[i] is the Z-order face of file face i (bottom, right,
	// top, left)
	quadFaceToZ = [4]int{2, 1, 3, 0}
	// hexFaceToZ[i] is the Z-order face of file face i (bottom, top,
	// front, right, back, left)
	hexFaceToZ = [6]int{4, 5, 2, 1, 3, 0}
)

// zOrderVerts converts the mesh EToV table from file vertex ordering to
// Z-order corner ordering
func zOrderVerts(msh *mesh.Mesh) (zVerts [][]int) {
	zVerts = make([][]int, msh.K)
	for k := 0; k < msh.K; k++ {
		verts := msh.EToV[k]
		zv := make([]int, len(verts))
		for i, v := range verts {
			if msh.Type == mesh.Hex {
				zv[hexVertToZ[i]] = v
			} else {
				zv[quadVertToZ[i]] = v
			}
		}
		zVerts[k] = zv
	}
	return
}

// faceToZ converts a file face index to its Z-order face index
func faceToZ(cellType mesh.CellType, f int) int {
	if cellType == mesh.Hex {
		return hexFaceToZ[f]
	}
	return quadFaceToZ[f]
}

// FaceConn records the macro cell on the far side of a face. Perm maps
// face corner positions: our face corner i coincides with the
// neighbor's face corner Perm[i], both counted in the Z-order corner
// listing of the respective face. Cell is -1 on the domain boundary.
type FaceConn struct {
	Cell int
	Face int
	Perm []int
}

// EdgeConn records one macro cell sharing a hex edge. Reversed is true
// when the neighbor's edge runs opposite to ours along the shared line.
type EdgeConn struct {
	Cell     int
	Edge     int
	Reversed bool
}

// CornerConn records one macro cell sharing a vertex
type CornerConn struct {
	Cell   int
	Corner int
}

// topology holds the complete macro cell adjacency, all features in
// Z-order numbering. Edge and corner rings list every other incident
// cell, whether it touches through a face, an edge or just the feature
// itself.
type topology struct {
	faces   [][]FaceConn
	edges   [][][]EdgeConn
	corners [][][]CornerConn
}

/*
buildTopology derives the macro adjacency from shared vertex ids. Face
pairing uses the sparse face-to-vertex incidence product: entry (i, j)
of SpFToF counts the vertices faces i and j share, so off-diagonal
entries equal to the per-face vertex count identify coincident faces.
Edges and vertices are then grouped directly by their vertex keys.
*/
func buildTopology(msh *mesh.Mesh, zVerts [][]int) (topo *topology, err error) {
	var (
		dim          = msh.Type.Dimension()
		K            = msh.K
		Nv           = msh.Nv
		NFaces       = octree.NumFaces(dim)
		vertsPerFace = len(octree.FaceCorners(dim, 0))
		TotalFaces   = NFaces * K
	)
	for k := 0; k < K; k++ {
		for i, v := range zVerts[k] {
			for j := 0; j < i; j++ {
				if zVerts[k][j] == v {
					err = fmt.Errorf("%w: cell %d repeats vertex %d", ErrConfiguration, k, v)
					return
				}
			}
		}
	}

	topo = &topology{faces: make([][]FaceConn, K)}
	for k := 0; k < K; k++ {
		topo.faces[k] = make([]FaceConn, NFaces)
		for f := 0; f < NFaces; f++ {
			topo.faces[k][f] = FaceConn{Cell: -1}
		}
	}

	SpFToV_Tmp := sparse.NewDOK(TotalFaces, Nv)
	var sk int
	for k := 0; k < K; k++ {
		for f := 0; f < NFaces; f++ {
			for _, c := range octree.FaceCorners(dim, f) {
				SpFToV_Tmp.Set(sk, zVerts[k][c], 1)
			}
			sk++
		}
	}
	SpFToF := sparse.NewCSR(TotalFaces, TotalFaces, nil, nil, nil)
	SpFToV := SpFToV_Tmp.ToCSR()
	SpFToF.Mul(SpFToV, SpFToV.T())
	SpFToF.DoNonZero(func(i, j int, v float64) {
		if err != nil || i == j || v != float64(vertsPerFace) {
			return
		}
		var (
			k1, f1 = i / NFaces, i % NFaces
			k2, f2 = j / NFaces, j % NFaces
		)
		if k1 == k2 {
			err = fmt.Errorf("%w: faces %d and %d of cell %d share all vertices", ErrConfiguration, f1, f2, k1)
			return
		}
		prev := topo.faces[k1][f1]
		if prev.Cell >= 0 && (prev.Cell != k2 || prev.Face != f2) {
			err = fmt.Errorf("%w: face %d of cell %d matches both cell %d and cell %d", ErrConfiguration, f1, k1, prev.Cell, k2)
			return
		}
		perm, ok := facePerm(dim, zVerts[k1], f1, zVerts[k2], f2)
		if !ok {
			err = fmt.Errorf("%w: cells %d and %d share face vertices without a corner match", ErrConfiguration, k1, k2)
			return
		}
		topo.faces[k1][f1] = FaceConn{Cell: k2, Face: f2, Perm: perm}
	})
	if err != nil {
		topo = nil
		return
	}

	if dim == 3 {
		buildEdgeRings(topo, K, zVerts)
	}
	buildCornerRings(topo, dim, K, zVerts)
	return
}

// facePerm matches the Z-order corner listings of two coincident faces
// by vertex id
func facePerm(dim int, verts1 []int, f1 int, verts2 []int, f2 int) (perm []int, ok bool) {
	var (
		fc1 = octree.FaceCorners(dim, f1)
		fc2 = octree.FaceCorners(dim, f2)
	)
	perm = make([]int, len(fc1))
	for i, c1 := range fc1 {
		perm[i] = -1
		for j, c2 := range fc2 {
			if verts1[c1] == verts2[c2] {
				perm[i] = j
				break
			}
		}
		if perm[i] < 0 {
			return nil, false
		}
	}
	return perm, true
}

type edgeRef struct {
	cell, edge int
}

func buildEdgeRings(topo *topology, K int, zVerts [][]int) {
	var (
		NEdges = octree.NumEdges(3)
		groups = make(map[types.EdgeKey][]edgeRef)
	)
	for k := 0; k < K; k++ {
		for e := 0; e < NEdges; e++ {
			a, b := octree.EdgeCorners(e)
			en := types.NewEdgeKey([2]int{zVerts[k][a], zVerts[k][b]})
			groups[en] = append(groups[en], edgeRef{k, e})
		}
	}
	topo.edges = make([][][]EdgeConn, K)
	for k := 0; k < K; k++ {
		topo.edges[k] = make([][]EdgeConn, NEdges)
		for e := 0; e < NEdges; e++ {
			a, b := octree.EdgeCorners(e)
			tail := zVerts[k][a]
			for _, ref := range groups[types.NewEdgeKey([2]int{tail, zVerts[k][b]})] {
				if ref.cell == k && ref.edge == e {
					continue
				}
				a2, _ := octree.EdgeCorners(ref.edge)
				topo.edges[k][e] = append(topo.edges[k][e], EdgeConn{
					Cell:     ref.cell,
					Edge:     ref.edge,
					Reversed: zVerts[ref.cell][a2] != tail,
				})
			}
		}
	}
}

func buildCornerRings(topo *topology, dim, K int, zVerts [][]int) {
	var (
		NCorners = octree.NumCorners(dim)
		groups   = make(map[int][]CornerConn)
	)
	for k := 0; k < K; k++ {
		for c := 0; c < NCorners; c++ {
			vid := zVerts[k][c]
			groups[vid] = append(groups[vid], CornerConn{Cell: k, Corner: c})
		}
	}
	topo.corners = make([][][]CornerConn, K)
	for k := 0; k < K; k++ {
		topo.corners[k] = make([][]CornerConn, NCorners)
		for c := 0; c < NCorners; c++ {
			for _, conn := range groups[zVerts[k][c]] {
				if conn.Cell == k && conn.Corner == c {
					continue
				}
				topo.corners[k][c] = append(topo.corners[k][c], conn)
			}
		}
	}
}
