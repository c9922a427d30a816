package forest

import (
	"runtime"
	"sync"

	"github.com/notargets/goamr/mesh"
	"github.com/notargets/goamr/octree"
	"github.com/notargets/goamr/utils"
)

/*
Global node numbering. Every leaf corner is a lattice point of its tree;
points on a macro cell boundary also exist in the frames of the cells
sharing that face, edge or vertex. Each physical point gets exactly one
id by keying it canonically: among all frames containing the point, the
lowest macro cell index wins, ties broken by lattice coordinate. The
incidence rings recorded in the topology supply every containing frame
directly, so no transitive closure is needed. Hanging vertices are
ordinary points here and receive ids like any other.
*/

// nodeKey is the canonical identity of a global node
type nodeKey struct {
	tree  int
	coord [3]int32
}

// Grid is the flattened leaf-level view of a forest: deduplicated
// global nodes with physical coordinates, per-cell corner node ids in
// Z-order, and the macro mesh's named sets carried down to leaf cells.
// Faces in FaceSets use Z-order face numbering.
type Grid struct {
	Dim  int
	Type mesh.CellType
	K    int

	VX, VY, VZ utils.Vector
	EToV       [][]int

	CellSets map[string][]int
	FaceSets map[string][]mesh.FaceIndex
	NodeSets map[string][]int
}

func lexLess(a, b [3]int32) bool {
	for d := 0; d < 3; d++ {
		if a[d] != b[d] {
			return a[d] < b[d]
		}
	}
	return false
}

/*
canonicalNodeKey reduces lattice point p of tree k to its canonical
frame. The point's position against the cell boundary decides which
incidence ring applies: a point interior to the cell is already
canonical, a face point has at most one partner image, an edge or
corner point one per ring member. Ring membership is closed under the
meshes accepted here, so the minimum over the listed images is global.
*/
func (frst *Forest) canonicalNodeKey(k int, p [3]int32) (key nodeKey) {
	var (
		L    = int32(1) << uint(frst.MaxLevel)
		dim  = frst.Dim
		nb   int
		side [3]int
	)
	for d := 0; d < dim; d++ {
		switch p[d] {
		case 0:
			side[d] = 0
			nb++
		case L:
			side[d] = 1
			nb++
		default:
			side[d] = -1
		}
	}
	key = nodeKey{k, p}
	consider := func(tree int, q [3]int32) {
		if tree < key.tree || (tree == key.tree && lexLess(q, key.coord)) {
			key = nodeKey{tree, q}
		}
	}
	switch {
	case nb == 0:
		// Interior point, already canonical
	case nb == 1:
		var f int
		for d := 0; d < dim; d++ {
			if side[d] >= 0 {
				f = 2*d + side[d]
			}
		}
		if q, cell, ok := frst.facePointMap(k, f, p); ok {
			consider(cell, q)
		}
	case nb == 2 && dim == 3:
		// Interior to a hex edge
		var a int
		for d := 0; d < dim; d++ {
			if side[d] < 0 {
				a = d
			}
		}
		e := edgeIndex(a, side)
		for _, conn := range frst.topo.edges[k][e] {
			consider(conn.Cell, frst.edgePointMap(conn, p[a]))
		}
	default:
		// Macro cell corner
		var c int
		for d := 0; d < dim; d++ {
			c |= side[d] << uint(d)
		}
		for _, conn := range frst.topo.corners[k][c] {
			consider(conn.Cell, frst.cornerPointMap(conn))
		}
	}
	return
}

// edgeIndex recovers the Z-order edge index from its axis and the two
// transverse side bits
func edgeIndex(axis int, side [3]int) int {
	i := 0
	shift := uint(0)
	for d := 0; d < 3; d++ {
		if d == axis {
			continue
		}
		i |= side[d] << shift
		shift++
	}
	return axis*4 + i
}

// buildNodes walks leaves in (tree, Morton) order and corners in
// Z-order, assigning global node ids on first encounter of each
// canonical key
func (frst *Forest) buildNodes() (keys []nodeKey, ids map[nodeKey]int, etov [][]int) {
	var (
		dim = frst.Dim
		b   = frst.MaxLevel
		nc  = octree.NumCorners(dim)
	)
	ids = make(map[nodeKey]int)
	etov = make([][]int, 0, frst.GetNCells())
	for k, t := range frst.Trees {
		for _, leaf := range t.Leaves {
			cell := make([]int, nc)
			for c := 0; c < nc; c++ {
				key := frst.canonicalNodeKey(k, leaf.Vertex(dim, c, b))
				id, ok := ids[key]
				if !ok {
					id = len(keys)
					ids[key] = id
					keys = append(keys, key)
				}
				cell[c] = id
			}
			etov = append(etov, cell)
		}
	}
	return
}

// nodePosition interpolates the physical position of a canonical node
// from its macro cell's corner coordinates
func (frst *Forest) nodePosition(key nodeKey) (x, y, z float64) {
	var (
		dim = frst.Dim
		nc  = octree.NumCorners(dim)
		L   = float64(int64(1) << uint(frst.MaxLevel))
		cD  = frst.corners[key.tree].DataP
	)
	for c := 0; c < nc; c++ {
		w := 1.0
		for d := 0; d < dim; d++ {
			xi := float64(key.coord[d]) / L
			if c>>uint(d)&1 == 1 {
				w *= xi
			} else {
				w *= 1 - xi
			}
		}
		x += w * cD[0*nc+c]
		y += w * cD[1*nc+c]
		z += w * cD[2*nc+c]
	}
	return
}

// nodeCoordinates fills the node coordinate vectors, partitioned over
// the available cores
func (frst *Forest) nodeCoordinates(keys []nodeKey) (VX, VY, VZ utils.Vector) {
	var (
		NP = len(keys)
		wg = sync.WaitGroup{}
		pm = utils.NewPartitionMap(runtime.NumCPU(), NP)
	)
	VX, VY, VZ = utils.NewVector(NP), utils.NewVector(NP), utils.NewVector(NP)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			ind, end := pm.GetBucketRange(np)
			for i := ind; i < end; i++ {
				VX.DataP[i], VY.DataP[i], VZ.DataP[i] = frst.nodePosition(keys[i])
			}
			wg.Done()
		}(np)
	}
	wg.Wait()
	return
}

// GetNodes returns the physical coordinates of the deduplicated global
// nodes in id order
func (frst *Forest) GetNodes() (VX, VY, VZ utils.Vector) {
	keys, _, _ := frst.buildNodes()
	return frst.nodeCoordinates(keys)
}

// ExtractGrid flattens the forest into a leaf-level grid: global nodes,
// per-leaf corner node ids and the carried-over named sets
func (frst *Forest) ExtractGrid() (g *Grid) {
	keys, ids, etov := frst.buildNodes()
	VX, VY, VZ := frst.nodeCoordinates(keys)
	g = &Grid{
		Dim:      frst.Dim,
		Type:     frst.Type,
		K:        len(etov),
		VX:       VX,
		VY:       VY,
		VZ:       VZ,
		EToV:     etov,
		CellSets: make(map[string][]int),
		FaceSets: make(map[string][]mesh.FaceIndex),
		NodeSets: make(map[string][]int),
	}
	p := frst.leafPrefix()
	for name, cells := range frst.Mesh.CellSets {
		var gids []int
		for _, k := range cells {
			for i := p[k]; i < p[k+1]; i++ {
				gids = append(gids, i)
			}
		}
		g.CellSets[name] = gids
	}
	for name, faces := range frst.Mesh.FaceSets {
		var lfaces []mesh.FaceIndex
		for _, fi := range faces {
			zf := faceToZ(frst.Type, fi.Face)
			for i, leaf := range frst.Trees[fi.Cell].Leaves {
				if leafTouchesFace(leaf, zf, frst.MaxLevel) {
					lfaces = append(lfaces, mesh.FaceIndex{Cell: p[fi.Cell] + i, Face: zf})
				}
			}
		}
		g.FaceSets[name] = lfaces
	}
	for name, verts := range frst.Mesh.NodeSets {
		var nids []int
		for _, vid := range verts {
			if id, ok := frst.vertexNode(ids, vid); ok {
				nids = append(nids, id)
			}
		}
		g.NodeSets[name] = nids
	}
	return
}

// vertexNode resolves a macro mesh vertex id to its global node id
func (frst *Forest) vertexNode(ids map[nodeKey]int, vid int) (int, bool) {
	L := int32(1) << uint(frst.MaxLevel)
	for k := range frst.Trees {
		for c, v := range frst.zVerts[k] {
			if v != vid {
				continue
			}
			var p [3]int32
			for d := 0; d < frst.Dim; d++ {
				if c>>uint(d)&1 == 1 {
					p[d] = L
				}
			}
			id, ok := ids[frst.canonicalNodeKey(k, p)]
			return id, ok
		}
	}
	return 0, false
}
