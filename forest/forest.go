/*
Package forest manages a forest of adaptive octrees built over a coarse
conforming mesh. Each macro cell of the mesh carries one octree whose
leaves subdivide it, and the macro topology (face, edge and vertex
adjacency with relative orientation) lets octants and lattice points be
re-expressed across macro cell boundaries, so that neighborhood queries,
2:1 balancing and global node numbering work on the whole domain as if
it were a single tree.
*/
package forest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/notargets/goamr/mesh"
	"github.com/notargets/goamr/octree"
	"github.com/notargets/goamr/utils"
)

var (
	ErrConfiguration = errors.New("forest configuration")
	ErrBoundary      = errors.New("feature is on the domain boundary")
	ErrCellID        = errors.New("global cell id out of range")
	ErrUnknownSet    = errors.New("unknown named set")
)

func contractf(format string, args ...interface{}) {
	panic(octree.ContractError{Msg: fmt.Sprintf(format, args...)})
}

// FeatureKind selects which kind of macro cell feature a FeatureIndex
// refers to
type FeatureKind int

const (
	FaceFeature FeatureKind = iota
	EdgeFeature
	VertexFeature
)

func (k FeatureKind) String() string {
	return [...]string{"Face", "Edge", "Vertex"}[k]
}

// FeatureIndex names one feature (face, edge or vertex) of one macro
// cell, features numbered in the octree package's z-order conventions
type FeatureIndex struct {
	Kind    FeatureKind
	Cell    int
	Feature int
}

// Forest is a collection of octrees, one per macro cell of a coarse
// conforming mesh of uniform cell type.
//
// Octree mutation is single threaded: Refine, Coarsen, RefineAll,
// RefineSet and Balance must not run concurrently with each other or
// with the read side (GetCells, GetNodes, ExtractGrid, transforms). The
// macro topology is immutable after NewForest.
type Forest struct {
	Dim      int
	MaxLevel int
	Type     mesh.CellType

	Mesh  *mesh.Mesh
	Trees []*octree.Octree

	topo    *topology
	zVerts  [][]int        // z-order corner vertex ids per macro cell
	corners []utils.Matrix // per-cell corner coordinates, 3 x 2^Dim

	prefix []int // cumulative leaf counts, rebuilt lazily after mutation
}

// NewForest builds a forest of root-leaf octrees over msh. Every cell
// becomes one octree refinable down to maxLevel, and the macro topology
// is computed once from the coarse connectivity.
func NewForest(msh *mesh.Mesh, maxLevel int) (frst *Forest, err error) {
	var (
		dim = msh.Type.Dimension()
	)
	if dim == 0 {
		err = fmt.Errorf("%w: unsupported cell type %v", ErrConfiguration, msh.Type)
		return
	}
	if msh.Dim != dim {
		err = fmt.Errorf("%w: mesh dimension %d does not match cell type %v", ErrConfiguration, msh.Dim, msh.Type)
		return
	}
	if maxLevel < 1 || maxLevel > octree.MaxLevelBound(dim) {
		err = fmt.Errorf("%w: max level %d outside [1,%d]", ErrConfiguration, maxLevel, octree.MaxLevelBound(dim))
		return
	}
	if msh.K < 1 {
		err = fmt.Errorf("%w: mesh has no cells", ErrConfiguration)
		return
	}
	nVerts := msh.Type.NumVerts()
	for k := 0; k < msh.K; k++ {
		if len(msh.EToV[k]) != nVerts {
			err = fmt.Errorf("%w: cell %d has %d vertices, want %d", ErrConfiguration, k, len(msh.EToV[k]), nVerts)
			return
		}
		for _, v := range msh.EToV[k] {
			if v < 0 || v >= msh.Nv {
				err = fmt.Errorf("%w: cell %d references vertex %d outside [0,%d)", ErrConfiguration, k, v, msh.Nv)
				return
			}
		}
	}

	frst = &Forest{
		Dim:      dim,
		MaxLevel: maxLevel,
		Type:     msh.Type,
		Mesh:     msh,
	}
	frst.zVerts = zOrderVerts(msh)
	if frst.topo, err = buildTopology(msh, frst.zVerts); err != nil {
		frst = nil
		return
	}

	frst.Trees = make([]*octree.Octree, msh.K)
	for k := 0; k < msh.K; k++ {
		if frst.Trees[k], err = octree.New(dim, maxLevel, frst.zVerts[k]); err != nil {
			frst = nil
			return
		}
	}

	// Corner coordinates per macro cell, one column per z-order corner
	nc := 1 << uint(dim)
	vxD, vyD, vzD := msh.VX.Data(), msh.VY.Data(), msh.VZ.Data()
	frst.corners = make([]utils.Matrix, msh.K)
	for k := 0; k < msh.K; k++ {
		C := utils.NewMatrix(3, nc)
		for c := 0; c < nc; c++ {
			vid := frst.zVerts[k][c]
			C.DataP[0*nc+c] = vxD[vid]
			C.DataP[1*nc+c] = vyD[vid]
			C.DataP[2*nc+c] = vzD[vid]
		}
		frst.corners[k] = C
	}
	return
}

// GetCellType reports the uniform macro cell type
func (frst *Forest) GetCellType() mesh.CellType {
	return frst.Type
}

func (frst *Forest) leafPrefix() []int {
	if frst.prefix == nil {
		p := make([]int, len(frst.Trees)+1)
		for i, t := range frst.Trees {
			p[i+1] = p[i] + len(t.Leaves)
		}
		frst.prefix = p
	}
	return frst.prefix
}

func (frst *Forest) invalidate() {
	frst.prefix = nil
}

// GetNCells reports the current number of leaf cells over all trees
func (frst *Forest) GetNCells() int {
	p := frst.leafPrefix()
	return p[len(p)-1]
}

// GetCells returns the leaves of all trees in (tree, Morton) order. The
// slice is freshly allocated and safe for the caller to keep.
func (frst *Forest) GetCells() (cells []octree.Octant) {
	cells = make([]octree.Octant, 0, frst.GetNCells())
	for _, t := range frst.Trees {
		cells = append(cells, t.Leaves...)
	}
	return
}

// CellTree resolves a global cell id to its (tree, leaf index) pair
func (frst *Forest) CellTree(gid int) (tree, leaf int, err error) {
	p := frst.leafPrefix()
	if gid < 0 || gid >= p[len(p)-1] {
		err = fmt.Errorf("%w: %d", ErrCellID, gid)
		return
	}
	// First tree whose prefix exceeds gid
	tree = sort.Search(len(p)-1, func(i int) bool { return p[i+1] > gid })
	leaf = gid - p[tree]
	return
}

// GlobalID is the inverse of CellTree
func (frst *Forest) GlobalID(tree, leaf int) int {
	p := frst.leafPrefix()
	return p[tree] + leaf
}

// Refine subdivides the leaf cell with global id gid
func (frst *Forest) Refine(gid int) (err error) {
	var (
		tree, leaf int
	)
	if tree, leaf, err = frst.CellTree(gid); err != nil {
		return
	}
	o := frst.Trees[tree].Leaves[leaf]
	if err = frst.Trees[tree].Refine(o); err != nil {
		return
	}
	frst.invalidate()
	return
}

// Coarsen replaces the complete sibling family containing the leaf cell
// with global id gid by its parent
func (frst *Forest) Coarsen(gid int) (err error) {
	var (
		tree, leaf int
	)
	if tree, leaf, err = frst.CellTree(gid); err != nil {
		return
	}
	o := frst.Trees[tree].Leaves[leaf]
	if err = frst.Trees[tree].Coarsen(o); err != nil {
		return
	}
	frst.invalidate()
	return
}

// RefineAll refines every current leaf once. Leaves already at the
// maximum level are left alone.
func (frst *Forest) RefineAll() {
	for _, t := range frst.Trees {
		leaves := make([]octree.Octant, len(t.Leaves))
		copy(leaves, t.Leaves)
		for _, o := range leaves {
			if int(o.Level) >= frst.MaxLevel {
				continue
			}
			if err := t.Refine(o); err != nil {
				// The snapshot contains only current leaves
				panic(err)
			}
		}
	}
	frst.invalidate()
}

// RefineSet refines toward the named set until every leaf touching it
// is at least at the target level. The name is resolved against the
// mesh cell sets (all leaves of the named macro cells), then face sets
// (leaves touching the named macro faces), then node sets (leaves
// touching the named macro vertices).
func (frst *Forest) RefineSet(name string, level int) (err error) {
	if level < 0 || level > frst.MaxLevel {
		err = fmt.Errorf("%w: target level %d outside [0,%d]", octree.ErrMaxLevel, level, frst.MaxLevel)
		return
	}
	if cells, ok := frst.Mesh.CellSets[name]; ok {
		for _, k := range cells {
			frst.refineTree(k, level, func(o octree.Octant) bool { return true })
		}
		return
	}
	if faces, ok := frst.Mesh.FaceSets[name]; ok {
		for _, fi := range faces {
			zf := faceToZ(frst.Type, fi.Face)
			frst.refineTree(fi.Cell, level, func(o octree.Octant) bool {
				return leafTouchesFace(o, zf, frst.MaxLevel)
			})
		}
		return
	}
	if nodes, ok := frst.Mesh.NodeSets[name]; ok {
		for _, vid := range nodes {
			for k := 0; k < len(frst.Trees); k++ {
				for c, v := range frst.zVerts[k] {
					if v != vid {
						continue
					}
					p := octree.Octant{}.Vertex(frst.Dim, c, frst.MaxLevel)
					frst.refineTree(k, level, func(o octree.Octant) bool {
						return leafTouchesPoint(o, p, frst.MaxLevel)
					})
				}
			}
		}
		return
	}
	err = fmt.Errorf("%w: %s", ErrUnknownSet, name)
	return
}

// refineTree refines the leaves of tree k selected by touch until every
// selected leaf reaches the target level
func (frst *Forest) refineTree(k, level int, touch func(octree.Octant) bool) {
	t := frst.Trees[k]
	for {
		var work []octree.Octant
		for _, o := range t.Leaves {
			if int(o.Level) < level && touch(o) {
				work = append(work, o)
			}
		}
		if len(work) == 0 {
			break
		}
		for _, o := range work {
			if err := t.Refine(o); err != nil {
				panic(err)
			}
		}
	}
	frst.invalidate()
}

// leafTouchesFace reports whether leaf o touches face f of its tree
func leafTouchesFace(o octree.Octant, f, maxLevel int) bool {
	var (
		axis, side = octree.FaceAxis(f)
		h          = o.Size(maxLevel)
		L          = int32(1) << uint(maxLevel)
	)
	if side == 1 {
		return o.Coord[axis]+h == L
	}
	return o.Coord[axis] == 0
}

// leafTouchesPoint reports whether the lattice point p lies on the
// closure of leaf o
func leafTouchesPoint(o octree.Octant, p [3]int32, maxLevel int) bool {
	h := o.Size(maxLevel)
	for d := 0; d < 3; d++ {
		if p[d] < o.Coord[d] || p[d] > o.Coord[d]+h {
			return false
		}
	}
	return true
}

// GetNeighborhood returns the features of other macro cells coincident
// with the given feature. A face has at most one partner, edges and
// vertices return their full incident rings. The receiver's own feature
// is not included.
func (frst *Forest) GetNeighborhood(fi FeatureIndex) (nbrs []FeatureIndex) {
	if fi.Cell < 0 || fi.Cell >= len(frst.Trees) {
		contractf("cell %d outside [0,%d)", fi.Cell, len(frst.Trees))
	}
	switch fi.Kind {
	case FaceFeature:
		if fi.Feature < 0 || fi.Feature >= octree.NumFaces(frst.Dim) {
			contractf("face %d outside [0,%d)", fi.Feature, octree.NumFaces(frst.Dim))
		}
		conn := frst.topo.faces[fi.Cell][fi.Feature]
		if conn.Cell >= 0 {
			nbrs = append(nbrs, FeatureIndex{FaceFeature, conn.Cell, conn.Face})
		}
	case EdgeFeature:
		if frst.Dim != 3 {
			contractf("edge features only exist in 3D")
		}
		if fi.Feature < 0 || fi.Feature >= octree.NumEdges(frst.Dim) {
			contractf("edge %d outside [0,%d)", fi.Feature, octree.NumEdges(frst.Dim))
		}
		for _, conn := range frst.topo.edges[fi.Cell][fi.Feature] {
			nbrs = append(nbrs, FeatureIndex{EdgeFeature, conn.Cell, conn.Edge})
		}
	case VertexFeature:
		if fi.Feature < 0 || fi.Feature >= octree.NumCorners(frst.Dim) {
			contractf("vertex %d outside [0,%d)", fi.Feature, octree.NumCorners(frst.Dim))
		}
		for _, conn := range frst.topo.corners[fi.Cell][fi.Feature] {
			nbrs = append(nbrs, FeatureIndex{VertexFeature, conn.Cell, conn.Corner})
		}
	default:
		contractf("unknown feature kind %d", fi.Kind)
	}
	return
}

// FaceConnection reports the gluing across face f of macro cell k: the
// partner cell, its local face and the face corner permutation.
// Boundary faces return ok false.
func (frst *Forest) FaceConnection(k, f int) (conn FaceConn, ok bool) {
	if k < 0 || k >= len(frst.Trees) {
		contractf("cell %d outside [0,%d)", k, len(frst.Trees))
	}
	if f < 0 || f >= octree.NumFaces(frst.Dim) {
		contractf("face %d outside [0,%d)", f, octree.NumFaces(frst.Dim))
	}
	c := frst.topo.faces[k][f]
	if c.Cell < 0 {
		return
	}
	conn = FaceConn{Cell: c.Cell, Face: c.Face, Perm: append([]int(nil), c.Perm...)}
	ok = true
	return
}

// EdgeConnections returns the ring of macro cells sharing edge e of
// cell k, the cell itself excluded. Edges exist in 3D only.
func (frst *Forest) EdgeConnections(k, e int) []EdgeConn {
	if frst.Dim != 3 {
		contractf("edge features only exist in 3D")
	}
	if k < 0 || k >= len(frst.Trees) {
		contractf("cell %d outside [0,%d)", k, len(frst.Trees))
	}
	if e < 0 || e >= octree.NumEdges(frst.Dim) {
		contractf("edge %d outside [0,%d)", e, octree.NumEdges(frst.Dim))
	}
	return append([]EdgeConn(nil), frst.topo.edges[k][e]...)
}

// CornerConnections returns the ring of macro cells sharing corner c of
// cell k, the cell itself excluded
func (frst *Forest) CornerConnections(k, c int) []CornerConn {
	if k < 0 || k >= len(frst.Trees) {
		contractf("cell %d outside [0,%d)", k, len(frst.Trees))
	}
	if c < 0 || c >= octree.NumCorners(frst.Dim) {
		contractf("corner %d outside [0,%d)", c, octree.NumCorners(frst.Dim))
	}
	return append([]CornerConn(nil), frst.topo.corners[k][c]...)
}

// PrintStatistics prints per-forest refinement statistics
func (frst *Forest) PrintStatistics() {
	var (
		histo = make(map[int32]int)
	)
	for _, t := range frst.Trees {
		for _, o := range t.Leaves {
			histo[o.Level]++
		}
	}
	fmt.Printf("Forest Statistics:\n")
	fmt.Printf("  Macro cells: %d (%s)\n", len(frst.Trees), frst.Type)
	fmt.Printf("  Leaf cells: %d\n", frst.GetNCells())
	fmt.Printf("  Max level: %d\n", frst.MaxLevel)
	levels := make([]int, 0, len(histo))
	for l := range histo {
		levels = append(levels, int(l))
	}
	sort.Ints(levels)
	for _, l := range levels {
		fmt.Printf("    level %d: %d\n", l, histo[int32(l)])
	}
}
