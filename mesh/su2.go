package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/notargets/goamr/utils"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle                     = 5
	ELType_Quadrilateral                = 9
	ELType_Tetrahedral                  = 10
	ELType_Hexahedral                   = 12
	ELType_Prism                        = 13
	ELType_Pyramid                      = 14
)

// ReadSU2 reads an SU2 mesh file (.su2) of quadrilateral (VTK type 9) or
// hexahedral (VTK type 12) cells. Boundary markers become face sets,
// keyed by their lowercased labels.
func ReadSU2(filename string, verbose bool) (msh *Mesh) {
	var (
		file   *os.File
		err    error
		reader *bufio.Reader
	)
	if verbose {
		fmt.Printf("Reading SU2 file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		panic(fmt.Errorf("unable to open file %s\n %s", filename, err))
	}
	defer file.Close()
	reader = bufio.NewReader(file)
	msh = readSU2(reader, verbose)
	return
}

func readSU2(reader *bufio.Reader, verbose bool) (msh *Mesh) {
	msh = NewMesh()

	dimensionality := readNumber(reader)
	if verbose {
		fmt.Printf("Read file with %d dimensional data...\n", dimensionality)
	}
	if dimensionality > 3 || dimensionality < 2 {
		panic("space dimensions not 2 or 3")
	}
	msh.Dim = dimensionality
	if msh.Dim == 3 {
		msh.Type = Hex
	} else {
		msh.Type = Quad
	}

	msh.K, msh.EToV = readSU2Cells(msh.Dim, reader)
	readSU2Vertices(msh, reader)
	readSU2Markers(msh, reader)

	if verbose {
		msh.PrintStatistics()
	}
	return
}

func readSU2Cells(dim int, reader *bufio.Reader) (K int, EToV [][]int) {
	var (
		n     int
		nType int
		err   error
	)
	K = readNumber(reader)
	EToV = make([][]int, K)
	for k := 0; k < K; k++ {
		line := getLine(reader)
		if dim == 2 {
			var v1, v2, v3, v4 int
			if n, err = fmt.Sscanf(line, "%d %d %d %d %d", &nType, &v1, &v2, &v3, &v4); err != nil {
				panic(err)
			}
			if n != 5 {
				panic("unable to read vertices")
			}
			if SU2ElementType(nType) != ELType_Quadrilateral {
				panic("only quadrilateral cells are supported in 2D")
			}
			EToV[k] = []int{v1, v2, v3, v4}
		} else {
			nn := make([]int, 8)
			if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d %d %d %d", &nType,
				&nn[0], &nn[1], &nn[2], &nn[3], &nn[4], &nn[5], &nn[6], &nn[7]); err != nil {
				panic(err)
			}
			if n != 9 {
				panic("unable to read vertices")
			}
			if SU2ElementType(nType) != ELType_Hexahedral {
				panic("only hexahedral cells are supported in 3D")
			}
			EToV[k] = nn
		}
	}
	return
}

func readSU2Vertices(msh *Mesh, reader *bufio.Reader) {
	var (
		n       int
		x, y, z float64
		err     error
	)
	Nv := readNumber(reader)
	msh.Nv = Nv
	msh.VX, msh.VY, msh.VZ = utils.NewVector(Nv), utils.NewVector(Nv), utils.NewVector(Nv)
	vxD, vyD, vzD := msh.VX.Data(), msh.VY.Data(), msh.VZ.Data()
	for i := 0; i < Nv; i++ {
		line := getLine(reader)
		if msh.Dim == 3 {
			if n, err = fmt.Sscanf(line, "%f %f %f", &x, &y, &z); err != nil {
				panic(err)
			}
			if n != 3 {
				panic("unable to read coordinates")
			}
			vxD[i], vyD[i], vzD[i] = x, y, z
		} else {
			if n, err = fmt.Sscanf(line, "%f %f", &x, &y); err != nil {
				panic(err)
			}
			if n != 2 {
				panic("unable to read coordinates")
			}
			vxD[i], vyD[i] = x, y
		}
	}
	return
}

// readSU2Markers resolves each marker element, given as a vertex tuple,
// to the (cell, face) containing it
func readSU2Markers(msh *Mesh, reader *bufio.Reader) {
	var (
		nType int
		err   error
	)
	faceMap := msh.buildFaceMap()
	NMarkers := readNumber(reader)
	for m := 0; m < NMarkers; m++ {
		label := readLabel(reader)
		nFaces := readNumber(reader)
		faces := make([]FaceIndex, nFaces)
		for i := 0; i < nFaces; i++ {
			line := getLine(reader)
			var verts []int
			if msh.Dim == 2 {
				var v1, v2 int
				if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
					panic(err)
				}
				if SU2ElementType(nType) != ELType_LINE {
					panic("markers should only contain line elements in 2D")
				}
				verts = []int{v1, v2}
			} else {
				var v1, v2, v3, v4 int
				if _, err = fmt.Sscanf(line, "%d %d %d %d %d", &nType, &v1, &v2, &v3, &v4); err != nil {
					panic(err)
				}
				if SU2ElementType(nType) != ELType_Quadrilateral {
					panic("markers should only contain quadrilateral elements in 3D")
				}
				verts = []int{v1, v2, v3, v4}
			}
			fi, ok := faceMap[faceKey(verts)]
			if !ok {
				panic(fmt.Errorf("marker %s face %v not found in the mesh", label, verts))
			}
			faces[i] = fi
		}
		key := strings.ToLower(label)
		msh.FaceSets[key] = append(msh.FaceSets[key], faces...)
	}
	return
}

func getToken(reader *bufio.Reader) (token string) {
	var (
		line string
		err  error
	)
	line = getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("badly formed input line [%s], should have an =", line)
		panic(err)
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		err = fmt.Errorf("unable to read label from token: [%s]", token)
		panic(err)
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader) (num int) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
		panic(err)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.Trim(getLine(reader), " ")
		ind := strings.Index(line, "%")
		if ind < 0 || ind != 0 {
			return
		}
	}
}
