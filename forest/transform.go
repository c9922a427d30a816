package forest

import (
	"github.com/notargets/goamr/octree"
)

/*
Cross-tree coordinate transforms. Macro cells are unit cubes of equal
lattice resolution, so an octant poking beyond a face, edge or corner of
its own cell maps to an octant of the same level in the adjacent cell's
frame. The maps below are lattice isometries built from the stored
connection data; they apply equally to octants (with their lattice
extent h) and to bare lattice points (h = 0).
*/

// TransformFace re-expresses an octant lying beyond face f of macro
// cell k in the frame of the cell across that face. Returns ErrBoundary
// when the face has no neighbor. The octant must lie exactly in the
// first cell width beyond the face; anything else panics with a
// ContractError.
func (frst *Forest) TransformFace(k, f int, o octree.Octant) (r octree.Octant, nbr int, err error) {
	var (
		conn = frst.topo.faces[k][f]
		b    = frst.MaxLevel
	)
	if conn.Cell < 0 {
		err = ErrBoundary
		return
	}
	r = octree.Octant{
		Level: o.Level,
		Coord: faceCoordMap(conn, f, frst.Dim, b, o.Coord, o.Size(b)),
	}
	if !r.Inside(frst.Dim, b) {
		contractf("transformFace: octant %v does not lie across face %d of cell %d", o, f, k)
	}
	nbr = conn.Cell
	return
}

// TransformEdge re-expresses an octant hugging hex edge e of macro cell
// k from outside in the frame of the connected cell conn, a member of
// the EdgeConnections(k, e) ring. The octant's
// transverse coordinates must sit exactly on the far side of the edge;
// anything else panics with a ContractError. conn must name a cell
// lying diagonally across the edge: ring members reachable through one
// of the two bounding faces are face neighbors, and octants map into
// them with TransformFace instead.
func (frst *Forest) TransformEdge(k, e int, conn EdgeConn, o octree.Octant) (r octree.Octant) {
	if frst.Dim != 3 {
		contractf("transformEdge: edges only exist in 3D")
	}
	var (
		b              = frst.MaxLevel
		L              = int32(1) << uint(b)
		h              = o.Size(b)
		a              = octree.EdgeAxis(e)
		q1, q2, s1, s2 = octree.EdgeSides(e)
	)
	if o.Coord[q1] != hugCoord(s1, L, h) || o.Coord[q2] != hugCoord(s2, L, h) {
		contractf("transformEdge: octant %v does not hug edge %d of cell %d", o, e, k)
	}
	if o.Coord[a] < 0 || o.Coord[a]+h > L {
		contractf("transformEdge: octant %v overhangs edge %d of cell %d", o, e, k)
	}
	var (
		a2             = octree.EdgeAxis(conn.Edge)
		p1, p2, r1, r2 = octree.EdgeSides(conn.Edge)
		out            [3]int32
	)
	out[p1] = insideCoord(r1, L, h)
	out[p2] = insideCoord(r2, L, h)
	if conn.Reversed {
		out[a2] = L - h - o.Coord[a]
	} else {
		out[a2] = o.Coord[a]
	}
	return octree.Octant{Level: o.Level, Coord: out}
}

// TransformCorner re-expresses an octant hugging corner c of macro cell
// k from outside in the frame of the connected cell conn, a member of
// the CornerConnections(k, c) ring sitting diagonally across the
// corner. All coordinates must press exactly
// against the far side of the corner; anything else panics with a
// ContractError.
func (frst *Forest) TransformCorner(k, c int, conn CornerConn, o octree.Octant) (r octree.Octant) {
	var (
		b   = frst.MaxLevel
		L   = int32(1) << uint(b)
		h   = o.Size(b)
		out [3]int32
	)
	for d := 0; d < frst.Dim; d++ {
		if o.Coord[d] != hugCoord(c>>uint(d)&1, L, h) {
			contractf("transformCorner: octant %v does not hug corner %d of cell %d", o, c, k)
		}
		out[d] = insideCoord(conn.Corner>>uint(d)&1, L, h)
	}
	return octree.Octant{Level: o.Level, Coord: out}
}

// edgeDiagonal reports whether ring member conn sits diagonally across
// edge e of cell k, as opposed to across one of the edge's two bounding
// faces
func (frst *Forest) edgeDiagonal(k, e int, conn EdgeConn) bool {
	q1, q2, s1, s2 := octree.EdgeSides(e)
	if frst.topo.faces[k][q1*2+s1].Cell == conn.Cell {
		return false
	}
	if frst.topo.faces[k][q2*2+s2].Cell == conn.Cell {
		return false
	}
	return true
}

// hugCoord is the anchor coordinate of a size-h octant pressed against
// a cell boundary from outside, insideCoord the same from inside
func hugCoord(side int, L, h int32) int32 {
	if side == 1 {
		return L
	}
	return -h
}

func insideCoord(side int, L, h int32) int32 {
	if side == 1 {
		return L - h
	}
	return 0
}

/*
faceCoordMap carries a coordinate triple through a face connection. The
normal axis maps by signed depth beyond the source face; the tangential
axes follow the face corner permutation, inverted so that it reads
"neighbor corner j sits at our corner ip[j]". h is the lattice extent
of the object being mapped, zero for bare points.
*/
func faceCoordMap(conn FaceConn, f, dim, b int, p [3]int32, h int32) (out [3]int32) {
	var (
		L      = int32(1) << uint(b)
		aS, sS = octree.FaceAxis(f)
		aR, sR = octree.FaceAxis(conn.Face)
	)
	var d int32
	if sS == 0 {
		d = p[aS]
	} else {
		d = L - h - p[aS]
	}
	if sR == 0 {
		out[aR] = -d - h
	} else {
		out[aR] = L + d
	}
	ip := invertPerm(conn.Perm)
	if dim == 2 {
		t, _ := octree.FaceTangents(dim, f)
		r, _ := octree.FaceTangents(dim, conn.Face)
		if ip[0] == 0 {
			out[r] = p[t]
		} else {
			out[r] = L - h - p[t]
		}
		return
	}
	var (
		t1, t2 = octree.FaceTangents(dim, f)
		r1, r2 = octree.FaceTangents(dim, conn.Face)
		u      = [2]int32{p[t1], p[t2]}
	)
	out[r1] = tangentialMap(u, ip[0], ip[1], L, h)
	out[r2] = tangentialMap(u, ip[0], ip[2], L, h)
	return
}

// tangentialMap evaluates one receiver tangential coordinate. j0 and j1
// locate the receiver axis in the source face's corner square: the axis
// runs from source face corner j0 to source face corner j1, corners
// numbered with the lower tangential axis varying fastest.
func tangentialMap(u [2]int32, j0, j1 int, L, h int32) int32 {
	if (j0^j1)&1 == 1 {
		if j0&1 == 0 {
			return u[0]
		}
		return L - h - u[0]
	}
	if j0>>1&1 == 0 {
		return u[1]
	}
	return L - h - u[1]
}

func invertPerm(perm []int) (ip []int) {
	ip = make([]int, len(perm))
	for i, j := range perm {
		ip[j] = i
	}
	return
}

// facePointMap carries a lattice point lying on face f of cell k to the
// adjacent cell's frame. ok is false on the domain boundary.
func (frst *Forest) facePointMap(k, f int, p [3]int32) (out [3]int32, cell int, ok bool) {
	conn := frst.topo.faces[k][f]
	if conn.Cell < 0 {
		return
	}
	return faceCoordMap(conn, f, frst.Dim, frst.MaxLevel, p, 0), conn.Cell, true
}

// edgePointMap carries a tangential position t along hex edge e to the
// connected cell's frame
func (frst *Forest) edgePointMap(conn EdgeConn, t int32) (out [3]int32) {
	var (
		L              = int32(1) << uint(frst.MaxLevel)
		a2             = octree.EdgeAxis(conn.Edge)
		p1, p2, r1, r2 = octree.EdgeSides(conn.Edge)
	)
	out[p1] = hugCoord(r1, L, 0)
	out[p2] = hugCoord(r2, L, 0)
	if conn.Reversed {
		out[a2] = L - t
	} else {
		out[a2] = t
	}
	return
}

// cornerPointMap gives the lattice point of the connected cell's corner
func (frst *Forest) cornerPointMap(conn CornerConn) (out [3]int32) {
	L := int32(1) << uint(frst.MaxLevel)
	for d := 0; d < frst.Dim; d++ {
		if conn.Corner>>uint(d)&1 == 1 {
			out[d] = L
		}
	}
	return
}
