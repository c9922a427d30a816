package forest

import (
	"github.com/notargets/goamr/octree"
)

/*
2:1 balance. A leaf is deficient when some leaf sharing one of its faces
(or, in 3D, one of its edges) is more than one level deeper. The sweep
detects deficits exactly: for the equal-size neighbor region across each
face or edge, only its children pressed against the shared feature can
host offending leaves, and such a child hosts one exactly when the leaf
containing its anchor point is deeper than the region's child level.
Neighbor regions beyond the macro cell are carried into the adjacent
tree through the face and edge transforms before probing.
*/

type markKey struct {
	tree int
	o    octree.Octant
}

// Balance refines deficient leaves until the 2:1 rule holds across all
// faces and hex edges of the forest. Only refinement is applied, so the
// sweep reaches a fixed point.
func (frst *Forest) Balance() {
	for {
		marks := frst.balanceSweep()
		if len(marks) == 0 {
			break
		}
		for _, m := range marks {
			if err := frst.Trees[m.tree].Refine(m.o); err != nil {
				panic(err)
			}
		}
		frst.invalidate()
	}
}

func (frst *Forest) balanceSweep() (marks []markKey) {
	seen := make(map[markKey]bool)
	for k, t := range frst.Trees {
		for _, leaf := range t.Leaves {
			// Leaves within one level of the bottom cannot be deficient
			if int(leaf.Level) >= frst.MaxLevel-1 {
				continue
			}
			if frst.faceDeficit(k, leaf) || (frst.Dim == 3 && frst.edgeDeficit(k, leaf)) {
				key := markKey{k, leaf}
				if !seen[key] {
					seen[key] = true
					marks = append(marks, key)
				}
			}
		}
	}
	return
}

// deeperThan reports whether the leaf containing lattice point p of the
// given tree sits below the given level
func (frst *Forest) deeperThan(tree int, p [3]int32, level int32) bool {
	_, leaf := frst.Trees[tree].LocateLeaf(p)
	return leaf.Level > level
}

func (frst *Forest) faceDeficit(k int, leaf octree.Octant) bool {
	var (
		b   = frst.MaxLevel
		dim = frst.Dim
	)
	for f := 0; f < octree.NumFaces(dim); f++ {
		var (
			n        = leaf.FaceNeighbor(f, b)
			aS, _    = octree.FaceAxis(f)
			backBit  = f&1 ^ 1
			crossing = !n.Inside(dim, b)
		)
		if crossing && frst.topo.faces[k][f].Cell < 0 {
			continue
		}
		for i, child := range n.Children(dim, b) {
			if i>>uint(aS)&1 != backBit {
				continue
			}
			tree, p := k, child.Coord
			if crossing {
				rc, nbr, _ := frst.TransformFace(k, f, child)
				tree, p = nbr, rc.Coord
			}
			if frst.deeperThan(tree, p, n.Level+1) {
				return true
			}
		}
	}
	return false
}

func (frst *Forest) edgeDeficit(k int, leaf octree.Octant) bool {
	var (
		b = frst.MaxLevel
		L = int32(1) << uint(b)
	)
	for e := 0; e < octree.NumEdges(3); e++ {
		var (
			n              = leaf.EdgeNeighbor(e, b)
			q1, q2, s1, s2 = octree.EdgeSides(e)
			out1           = n.Coord[q1] < 0 || n.Coord[q1] >= L
			out2           = n.Coord[q2] < 0 || n.Coord[q2] >= L
		)
		nearChild := func(i int) bool {
			return i>>uint(q1)&1 == s1^1 && i>>uint(q2)&1 == s2^1
		}
		switch {
		case !out1 && !out2:
			for i, child := range n.Children(3, b) {
				if nearChild(i) && frst.deeperThan(k, child.Coord, n.Level+1) {
					return true
				}
			}
		case out1 != out2:
			// Reachable through one macro face
			var f int
			if out1 {
				f = q1*2 + s1
			} else {
				f = q2*2 + s2
			}
			if frst.topo.faces[k][f].Cell < 0 {
				continue
			}
			for i, child := range n.Children(3, b) {
				if !nearChild(i) {
					continue
				}
				rc, nbr, _ := frst.TransformFace(k, f, child)
				if frst.deeperThan(nbr, rc.Coord, n.Level+1) {
					return true
				}
			}
		default:
			// Diagonally across the macro edge itself. Ring members
			// sitting across a bounding face are already covered by the
			// face probes.
			for _, conn := range frst.topo.edges[k][e] {
				if !frst.edgeDiagonal(k, e, conn) {
					continue
				}
				for i, child := range n.Children(3, b) {
					if !nearChild(i) {
						continue
					}
					rc := frst.TransformEdge(k, e, conn, child)
					if frst.deeperThan(conn.Cell, rc.Coord, n.Level+1) {
						return true
					}
				}
			}
		}
	}
	return false
}
