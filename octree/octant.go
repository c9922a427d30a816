package octree

import "fmt"

/*
Octant is one node of an octree: a refinement level plus the integer
anchor (lowest corner) of an axis-aligned cell. Anchors live on the
lattice [0, 2^maxLevel)^dim and are multiples of the cell size
2^(maxLevel-level). Neighbor computations may step outside the lattice;
the out-of-bounds value is legitimate data describing a cell in an
adjacent tree's territory and is resolved by the forest transforms.

Octants are immutable values, compared with ==. The third coordinate is
zero in 2D.
*/
type Octant struct {
	Level int32
	Coord [3]int32
}

// Maximum refinement levels per dimension. The bound keeps the full
// interleaved Morton key (dim*maxLevel bits) inside a uint64 with room
// for the lattice coordinates in an int32.
const (
	MaxLevel2D = 30
	MaxLevel3D = 19
)

// MaxLevelBound returns the largest usable maxLevel for dim.
func MaxLevelBound(dim int) int {
	if dim == 3 {
		return MaxLevel3D
	}
	return MaxLevel2D
}

func (o Octant) String() string {
	return fmt.Sprintf("L%d(%d,%d,%d)", o.Level, o.Coord[0], o.Coord[1], o.Coord[2])
}

// Size returns the edge length of o on the level-maxLevel lattice.
func (o Octant) Size(b int) int32 {
	return int32(1) << (int32(b) - o.Level)
}

// Morton-order bit spreading, 64-bit magic-mask form. part1By1 spreads
// 32 bits into the even positions, part1By2 spreads 21 bits into every
// third position; the compact functions invert them.

func part1By1(x uint64) uint64 {
	x &= 0x00000000FFFFFFFF
	x = (x | x<<16) & 0x0000FFFF0000FFFF
	x = (x | x<<8) & 0x00FF00FF00FF00FF
	x = (x | x<<4) & 0x0F0F0F0F0F0F0F0F
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return x
}

func compact1By1(x uint64) uint64 {
	x &= 0x5555555555555555
	x = (x | x>>1) & 0x3333333333333333
	x = (x | x>>2) & 0x0F0F0F0F0F0F0F0F
	x = (x | x>>4) & 0x00FF00FF00FF00FF
	x = (x | x>>8) & 0x0000FFFF0000FFFF
	x = (x | x>>16) & 0x00000000FFFFFFFF
	return x
}

func part1By2(x uint64) uint64 {
	x &= 0x00000000001FFFFF
	x = (x | x<<32) & 0x001F00000000FFFF
	x = (x | x<<16) & 0x001F0000FF0000FF
	x = (x | x<<8) & 0x100F00F00F00F00F
	x = (x | x<<4) & 0x10C30C30C30C30C3
	x = (x | x<<2) & 0x1249249249249249
	return x
}

func compact1By2(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x | x>>2) & 0x10C30C30C30C30C3
	x = (x | x>>4) & 0x100F00F00F00F00F
	x = (x | x>>8) & 0x001F0000FF0000FF
	x = (x | x>>16) & 0x001F00000000FFFF
	x = (x | x>>32) & 0x00000000001FFFFF
	return x
}

/*
Morton returns the 1-based Morton (Z-order) index of o evaluated at
level: the coordinate bits interleaved x first, truncated below level.
At a fixed level the index totally orders all octants and is the sort
key of the leaf sequence. Evaluating a parent at level+1 yields the
index of its first child.
*/
func (o Octant) Morton(dim, level, b int) uint64 {
	if level < 0 || level > b {
		contractf("morton: level %d outside [0,%d]", level, b)
	}
	var id uint64
	switch dim {
	case 2:
		id = part1By1(uint64(uint32(o.Coord[0]))) |
			part1By1(uint64(uint32(o.Coord[1])))<<1
	case 3:
		id = part1By2(uint64(uint32(o.Coord[0]))) |
			part1By2(uint64(uint32(o.Coord[1])))<<1 |
			part1By2(uint64(uint32(o.Coord[2])))<<2
	default:
		contractf("morton: dimension %d", dim)
	}
	return id>>(uint(dim)*uint(b-level)) + 1
}

/*
FromMorton decodes a 1-based Morton index at level into an Octant by
bit-deinterleaving. The index must lie in [1, 2^(dim*level)] and level
in [0, maxLevel]; violations panic with a ContractError.
*/
func FromMorton(dim, level int, m uint64, b int) Octant {
	if level < 0 || level > b {
		contractf("fromMorton: level %d outside [0,%d]", level, b)
	}
	if m < 1 || m > uint64(1)<<(uint(dim)*uint(level)) {
		contractf("fromMorton: index %d outside [1,2^%d]", m, dim*level)
	}
	id := (m - 1) << (uint(dim) * uint(b-level))
	var c [3]int32
	switch dim {
	case 2:
		c[0] = int32(compact1By1(id))
		c[1] = int32(compact1By1(id >> 1))
	case 3:
		c[0] = int32(compact1By2(id))
		c[1] = int32(compact1By2(id >> 1))
		c[2] = int32(compact1By2(id >> 2))
	default:
		contractf("fromMorton: dimension %d", dim)
	}
	return Octant{Level: int32(level), Coord: c}
}

// ChildID returns the 1-based branch index of o within its immediate
// parent, read off the coordinate bits at o's own size. Not meaningful
// for the root.
func (o Octant) ChildID(dim, b int) int {
	var (
		h  = o.Size(b)
		id = 0
	)
	for d := 0; d < dim; d++ {
		if o.Coord[d]&h != 0 {
			id |= 1 << d
		}
	}
	return id + 1
}

// AncestorID returns the branch index of o's ancestor at the given
// level within that ancestor's parent, generalizing ChildID. Requires
// 1 <= level <= o.Level.
func (o Octant) AncestorID(dim, level, b int) int {
	if level < 1 || int32(level) > o.Level {
		contractf("ancestorID: level %d outside [1,%d]", level, o.Level)
	}
	var (
		h  = int32(1) << (int32(b) - int32(level))
		id = 0
	)
	for d := 0; d < dim; d++ {
		if o.Coord[d]&h != 0 {
			id |= 1 << d
		}
	}
	return id + 1
}

// Children returns the 2^dim octants one level deeper, in canonical
// Z-order (x fastest). Their Morton indices are consecutive starting at
// o's index evaluated at the child level.
func (o Octant) Children(dim, b int) []Octant {
	var (
		n     = NumChildren(dim)
		level = int(o.Level) + 1
		first = o.Morton(dim, level, b)
		out   = make([]Octant, n)
	)
	for i := 0; i < n; i++ {
		out[i] = FromMorton(dim, level, first+uint64(i), b)
	}
	return out
}

// Parent clears the level bit of each coordinate and backs up one
// level. The root has no parent; asking for it panics.
func (o Octant) Parent(dim, b int) Octant {
	if o.Level == 0 {
		contractf("parent: root octant has no parent")
	}
	var (
		h = o.Size(b)
		c [3]int32
	)
	for d := 0; d < dim; d++ {
		c[d] = o.Coord[d] &^ h
	}
	return Octant{Level: o.Level - 1, Coord: c}
}

// Vertex returns the lattice coordinate of corner c of o.
func (o Octant) Vertex(dim, c, b int) [3]int32 {
	var (
		h = o.Size(b)
		p [3]int32
	)
	for d := 0; d < dim; d++ {
		p[d] = o.Coord[d]
		if c>>d&1 == 1 {
			p[d] += h
		}
	}
	return p
}

// FaceNeighbor returns the equal-size octant across face f. The result
// may lie outside the lattice.
func (o Octant) FaceNeighbor(f, b int) Octant {
	var (
		h       = o.Size(b)
		c       = o.Coord
		a, side = FaceAxis(f)
	)
	if side == 0 {
		c[a] -= h
	} else {
		c[a] += h
	}
	return Octant{Level: o.Level, Coord: c}
}

// EdgeNeighbor returns the equal-size octant diagonally across hex
// edge e (3D only). The result may lie outside the lattice.
func (o Octant) EdgeNeighbor(e, b int) Octant {
	var (
		h              = o.Size(b)
		c              = o.Coord
		q1, q2, s1, s2 = EdgeSides(e)
	)
	if s1 == 0 {
		c[q1] -= h
	} else {
		c[q1] += h
	}
	if s2 == 0 {
		c[q2] -= h
	} else {
		c[q2] += h
	}
	return Octant{Level: o.Level, Coord: c}
}

// CornerNeighbor returns the equal-size octant diagonally across
// corner cr. The result may lie outside the lattice.
func (o Octant) CornerNeighbor(dim, cr, b int) Octant {
	var (
		h = o.Size(b)
		c = o.Coord
	)
	for d := 0; d < dim; d++ {
		if cr>>d&1 == 1 {
			c[d] += h
		} else {
			c[d] -= h
		}
	}
	return Octant{Level: o.Level, Coord: c}
}

// Inside reports whether o lies entirely within the lattice
// [0, 2^b)^dim.
func (o Octant) Inside(dim, b int) bool {
	L := int32(1) << b
	for d := 0; d < dim; d++ {
		if o.Coord[d] < 0 || o.Coord[d] >= L {
			return false
		}
	}
	return true
}

// Contains reports whether the region of o contains the region of p
// (including p == o).
func (o Octant) Contains(p Octant, dim, b int) bool {
	if p.Level < o.Level {
		return false
	}
	var (
		ho = o.Size(b)
		hp = p.Size(b)
	)
	for d := 0; d < dim; d++ {
		if p.Coord[d] < o.Coord[d] || p.Coord[d]+hp > o.Coord[d]+ho {
			return false
		}
	}
	return true
}

// Less orders octants by Morton key on the full lattice, ancestors
// before descendants, matching the leaf sequence sort order.
func (o Octant) Less(p Octant, dim, b int) bool {
	mo, mp := o.Morton(dim, b, b), p.Morton(dim, b, b)
	if mo != mp {
		return mo < mp
	}
	return o.Level < p.Level
}
