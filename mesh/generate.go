package mesh

import (
	"github.com/notargets/goamr/utils"
)

// GenerateQuadMesh builds a structured nx x ny quadrilateral mesh on the
// rectangle [xmin,xmax] x [ymin,ymax]. The boundary faces form the face
// sets left, right, bottom and top, and every cell is in the cell set
// fluid.
func GenerateQuadMesh(nx, ny int, xmin, xmax, ymin, ymax float64) (msh *Mesh) {
	var (
		dx = (xmax - xmin) / float64(nx)
		dy = (ymax - ymin) / float64(ny)
	)
	msh = NewMesh()
	msh.Dim = 2
	msh.Type = Quad
	msh.Nv = (nx + 1) * (ny + 1)
	msh.K = nx * ny
	msh.VX, msh.VY, msh.VZ = utils.NewVector(msh.Nv), utils.NewVector(msh.Nv), utils.NewVector(msh.Nv)
	vxD, vyD := msh.VX.Data(), msh.VY.Data()
	vid := func(i, j int) int { return i + j*(nx+1) }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			vxD[vid(i, j)] = xmin + dx*float64(i)
			vyD[vid(i, j)] = ymin + dy*float64(j)
		}
	}
	msh.EToV = make([][]int, msh.K)
	fluid := make([]int, msh.K)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			k := i + j*nx
			msh.EToV[k] = []int{vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1)}
			fluid[k] = k
			if j == 0 {
				msh.FaceSets["bottom"] = append(msh.FaceSets["bottom"], FaceIndex{k, 0})
			}
			if i == nx-1 {
				msh.FaceSets["right"] = append(msh.FaceSets["right"], FaceIndex{k, 1})
			}
			if j == ny-1 {
				msh.FaceSets["top"] = append(msh.FaceSets["top"], FaceIndex{k, 2})
			}
			if i == 0 {
				msh.FaceSets["left"] = append(msh.FaceSets["left"], FaceIndex{k, 3})
			}
		}
	}
	msh.CellSets["fluid"] = fluid
	return
}

// GenerateHexMesh builds a structured nx x ny x nz hexahedral mesh on
// the box [xmin,xmax] x [ymin,ymax] x [zmin,zmax]. The boundary faces
// form the face sets left, right, front, back, bottom and top, and
// every cell is in the cell set fluid.
func GenerateHexMesh(nx, ny, nz int, xmin, xmax, ymin, ymax, zmin, zmax float64) (msh *Mesh) {
	var (
		dx = (xmax - xmin) / float64(nx)
		dy = (ymax - ymin) / float64(ny)
		dz = (zmax - zmin) / float64(nz)
	)
	msh = NewMesh()
	msh.Dim = 3
	msh.Type = Hex
	msh.Nv = (nx + 1) * (ny + 1) * (nz + 1)
	msh.K = nx * ny * nz
	msh.VX, msh.VY, msh.VZ = utils.NewVector(msh.Nv), utils.NewVector(msh.Nv), utils.NewVector(msh.Nv)
	vxD, vyD, vzD := msh.VX.Data(), msh.VY.Data(), msh.VZ.Data()
	vid := func(i, j, k int) int { return i + j*(nx+1) + k*(nx+1)*(ny+1) }
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				vxD[vid(i, j, k)] = xmin + dx*float64(i)
				vyD[vid(i, j, k)] = ymin + dy*float64(j)
				vzD[vid(i, j, k)] = zmin + dz*float64(k)
			}
		}
	}
	msh.EToV = make([][]int, msh.K)
	fluid := make([]int, msh.K)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := i + j*nx + k*nx*ny
				msh.EToV[c] = []int{
					vid(i, j, k), vid(i+1, j, k), vid(i+1, j+1, k), vid(i, j+1, k),
					vid(i, j, k+1), vid(i+1, j, k+1), vid(i+1, j+1, k+1), vid(i, j+1, k+1),
				}
				fluid[c] = c
				if k == 0 {
					msh.FaceSets["bottom"] = append(msh.FaceSets["bottom"], FaceIndex{c, 0})
				}
				if k == nz-1 {
					msh.FaceSets["top"] = append(msh.FaceSets["top"], FaceIndex{c, 1})
				}
				if j == 0 {
					msh.FaceSets["front"] = append(msh.FaceSets["front"], FaceIndex{c, 2})
				}
				if i == nx-1 {
					msh.FaceSets["right"] = append(msh.FaceSets["right"], FaceIndex{c, 3})
				}
				if j == ny-1 {
					msh.FaceSets["back"] = append(msh.FaceSets["back"], FaceIndex{c, 4})
				}
				if i == 0 {
					msh.FaceSets["left"] = append(msh.FaceSets["left"], FaceIndex{c, 5})
				}
			}
		}
	}
	msh.CellSets["fluid"] = fluid
	return
}
