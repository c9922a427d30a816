package octree

// Corner, face and edge numbering of the reference quad/hex cell follow
// the Z-order (Morton) convention: corner c sits at offset
// ((c>>0)&1, (c>>1)&1, (c>>2)&1) in units of the cell size. Faces are
// numbered -x,+x,-y,+y,-z,+z, so the face axis is f/2 and the side f&1.
// Edges (3D only) come four per axis: 0-3 run along x, 4-7 along y,
// 8-11 along z.

// faceCorners2D lists the two corners of each quad face in increasing
// tangential order.
var faceCorners2D = [4][2]int{
	{0, 2}, // -x
	{1, 3}, // +x
	{0, 1}, // -y
	{2, 3}, // +y
}

// faceCorners3D lists the four corners of each hex face in Z-order of
// the two tangential axes, lower axis varying fastest.
var faceCorners3D = [6][4]int{
	{0, 2, 4, 6}, // -x
	{1, 3, 5, 7}, // +x
	{0, 1, 4, 5}, // -y
	{2, 3, 6, 7}, // +y
	{0, 1, 2, 3}, // -z
	{4, 5, 6, 7}, // +z
}

// edgeCorners3D lists the two corners of each hex edge, tail before
// head along the edge axis.
var edgeCorners3D = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // x-aligned
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // y-aligned
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // z-aligned
}

// faceEdges3D lists the four edges bounding each hex face.
var faceEdges3D = [6][4]int{
	{4, 6, 8, 10},  // -x
	{5, 7, 9, 11},  // +x
	{0, 2, 8, 9},   // -y
	{1, 3, 10, 11}, // +y
	{0, 1, 4, 5},   // -z
	{2, 3, 6, 7},   // +z
}

func NumChildren(dim int) int { return 1 << dim }

func NumCorners(dim int) int { return 1 << dim }

func NumFaces(dim int) int { return 2 * dim }

func NumEdges(dim int) int {
	if dim == 3 {
		return 12
	}
	return 0
}

// FaceCorners returns the corner indices of face f.
func FaceCorners(dim, f int) []int {
	if dim == 2 {
		fc := faceCorners2D[f]
		return []int{fc[0], fc[1]}
	}
	fc := faceCorners3D[f]
	return []int{fc[0], fc[1], fc[2], fc[3]}
}

// EdgeCorners returns the two corner indices of hex edge e.
func EdgeCorners(e int) (int, int) {
	ec := edgeCorners3D[e]
	return ec[0], ec[1]
}

// FaceEdges returns the four edge indices bounding hex face f.
func FaceEdges(f int) []int {
	fe := faceEdges3D[f]
	return []int{fe[0], fe[1], fe[2], fe[3]}
}

// FaceAxis splits a face index into its normal axis and side
// (0 = low, 1 = high).
func FaceAxis(f int) (axis, side int) {
	return f / 2, f & 1
}

// FaceTangents returns the tangential axes of face f in ascending
// order; the second return is -1 in 2D.
func FaceTangents(dim, f int) (int, int) {
	a := f / 2
	if dim == 2 {
		return 1 - a, -1
	}
	switch a {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// EdgeAxis returns the axis a hex edge runs along.
func EdgeAxis(e int) int { return e / 4 }

// EdgeSides returns the two transverse axes of hex edge e in ascending
// order together with the side of the cell the edge sits on along each
// (0 = low, 1 = high).
func EdgeSides(e int) (q1, q2, s1, s2 int) {
	i := e % 4
	switch e / 4 {
	case 0:
		q1, q2 = 1, 2
	case 1:
		q1, q2 = 0, 2
	default:
		q1, q2 = 0, 1
	}
	return q1, q2, i & 1, i >> 1 & 1
}
