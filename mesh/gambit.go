package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/goamr/utils"
)

// ReadGambit reads a Gambit neutral file (.neu) of quadrilateral (NTYPE
// 2) or hexahedral (NTYPE 4) cells. Material groups become cell sets and
// boundary condition sets become face or node sets, keyed by their
// lowercased names.
func ReadGambit(filename string, verbose bool) (msh *Mesh) {
	var (
		file   *os.File
		err    error
		reader *bufio.Reader
	)
	if verbose {
		fmt.Printf("Reading Gambit Neutral file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		panic(fmt.Errorf("unable to open file %s\n %s", filename, err))
	}
	defer file.Close()
	reader = bufio.NewReader(file)
	msh = readGambit(reader, verbose)
	return
}

func readGambit(reader *bufio.Reader, verbose bool) (msh *Mesh) {
	msh = NewMesh()

	// Skip first six lines
	skipLines(6, reader)

	// Get dimensions
	Nv, K, Nmats, Nbcs, Nsd := readGambitHeader(reader)
	skipLines(2, reader)

	if verbose {
		fmt.Printf("Nv = %d, K = %d\n", Nv, K)
		fmt.Printf("Nmats = %d, Nbcs = %d\n%d space dimensions\n", Nmats, Nbcs, Nsd)
	}
	if Nsd > 3 || Nsd < 2 {
		panic("space dimensions not 2 or 3")
	}

	msh.Dim = Nsd
	msh.Nv, msh.K = Nv, K

	if Nsd == 3 {
		msh.Type = Hex
		msh.VX, msh.VY, msh.VZ = read3DVertices(Nv, reader)
	} else {
		msh.Type = Quad
		msh.VX, msh.VY = read2DVertices(Nv, reader)
		msh.VZ = utils.NewVector(Nv)
	}
	skipLines(2, reader)

	// Read cells
	if msh.Type == Hex {
		msh.EToV = readHexes(K, reader)
	} else {
		msh.EToV = readQuads(K, reader)
	}
	skipLines(2, reader)

	// Read material groups as named cell sets
	for i := 0; i < Nmats; i++ {
		name, cells := readCellGroup(reader)
		msh.CellSets[name] = append(msh.CellSets[name], cells...)
		skipLines(2, reader)
	}

	// Read BCs as named face and node sets
	readGambitBCs(Nbcs, reader, msh)

	if verbose {
		msh.PrintStatistics()
	}
	return
}

func readGambitHeader(reader *bufio.Reader) (Nv, K, Nmats, Nbcs, Nsd int) {
	/*
		Nv      // num nodes in mesh
		K       // num elements
		Nmats   // num material groups
		Nbcs    // num boundary groups
		Nsd;    // num space dimensions
	*/
	var (
		line   = getLine(reader)
		n, dum int
		err    error
	)
	nargs := 6
	if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d", &Nv, &K, &Nmats, &Nbcs, &Nsd, &dum); err != nil || n < nargs {
		if err == nil && n < nargs {
			err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
		}
		panic(err)
	}
	return
}

func read2DVertices(Nv int, reader *bufio.Reader) (VX, VY utils.Vector) {
	var (
		line   string
		err    error
		n, ind int
	)
	nargs := 3
	VX, VY = utils.NewVector(Nv), utils.NewVector(Nv)
	vx, vy := VX.Data(), VY.Data()
	for i := 0; i < Nv; i++ {
		line = getLine(reader)
		if n, err = fmt.Sscanf(line, "%d", &ind); err != nil || n < 1 {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
			}
			panic(err)
		}
		if n, err = fmt.Sscanf(line, "%d %f %f", &ind, &vx[ind-1], &vy[ind-1]); err != nil || n < nargs {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
			}
			panic(err)
		}
	}
	return
}

func read3DVertices(Nv int, reader *bufio.Reader) (VX, VY, VZ utils.Vector) {
	var (
		line   string
		err    error
		n, ind int
	)
	nargs := 4
	VX, VY, VZ = utils.NewVector(Nv), utils.NewVector(Nv), utils.NewVector(Nv)
	vx, vy, vz := VX.Data(), VY.Data(), VZ.Data()
	for i := 0; i < Nv; i++ {
		line = getLine(reader)
		if n, err = fmt.Sscanf(line, "%d", &ind); err != nil || n < 1 {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
			}
			panic(err)
		}
		if n, err = fmt.Sscanf(line, "%d %f %f %f", &ind, &vx[ind-1], &vy[ind-1], &vz[ind-1]); err != nil || n < nargs {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
			}
			panic(err)
		}
	}
	return
}

func readQuads(K int, reader *bufio.Reader) (EToV [][]int) {
	//---------------------------------------------
	// Quadrilaterals in 2D:
	//---------------------------------------------
	// ENDOFSECTION
	//    ELEMENTS/CELLS 1.3.0
	//      1  2  4        1       2       7       6
	//      2  2  4        2       3       8       7
	var (
		line                    string
		err                     error
		n, ind, typ, ndp, nargs int
	)
	EToV = make([][]int, K)
	for i := 0; i < K; i++ {
		line = getLine(reader)
		nargs = 7
		var n1, n2, n3, n4 int
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d %d", &ind, &typ, &ndp, &n1, &n2, &n3, &n4); err != nil || n < nargs {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
			}
			panic(err)
		}
		if typ != 2 {
			panic(fmt.Errorf("expected quadrilateral cells (NTYPE 2), got NTYPE %d, line: %s", typ, line))
		}
		EToV[ind-1] = []int{n1 - 1, n2 - 1, n3 - 1, n4 - 1}
	}
	return
}

func readHexes(K int, reader *bufio.Reader) (EToV [][]int) {
	//---------------------------------------------
	// Hexahedra in 3D:
	//---------------------------------------------
	// ENDOFSECTION
	//    ELEMENTS/CELLS 1.3.0
	//      1  4  8        1       2       5       4      10      11      14      13
	var (
		line               string
		err                error
		n, ind, typ, nargs int
		ndp                int
	)
	EToV = make([][]int, K)
	nn := make([]int, 8)
	for i := 0; i < K; i++ {
		line = getLine(reader)
		nargs = 11
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d %d %d %d %d %d", &ind, &typ, &ndp,
			&nn[0], &nn[1], &nn[2], &nn[3], &nn[4], &nn[5], &nn[6], &nn[7]); err != nil || n < nargs {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
			}
			panic(err)
		}
		if typ != 4 {
			panic(fmt.Errorf("expected hexahedral cells (NTYPE 4), got NTYPE %d, line: %s", typ, line))
		}
		verts := make([]int, 8)
		for j := 0; j < 8; j++ {
			verts[j] = nn[j] - 1
		}
		EToV[ind-1] = verts
	}
	return
}

func readCellGroup(reader *bufio.Reader) (name string, cells []int) {
	/*
	   GROUP:           1 ELEMENTS:        977 MATERIAL:      1.000 NFLAGS:          0
	                              fluid
	          0
	*/
	var (
		line      = getLine(reader)
		n, gn     int
		elnum     int
		matval    float64
		err       error
	)
	nargs := 3
	if n, err = fmt.Sscanf(line, "GROUP: %11d ELEMENTS:%11d MATERIAL:%11f", &gn, &elnum, &matval); err != nil || n < nargs {
		if err == nil && n < nargs {
			err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
		}
		panic(err)
	}
	name = strings.ToLower(strings.TrimSpace(getLine(reader)))
	skipLines(1, reader)

	// Cell ids are listed ten per line, 1-based
	var added int
	if elnum%10 != 0 {
		added = 1
	}
	numLines := elnum/10 + added
	nn := make([]int, 10)
	cells = make([]int, 0, elnum)
	for i := 0; i < numLines; i++ {
		line = getLine(reader)
		nargs := 10
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d %d %d %d %d",
			&nn[0], &nn[1], &nn[2], &nn[3], &nn[4], &nn[5], &nn[6], &nn[7], &nn[8], &nn[9]); err != nil || n < nargs {
			if !(n < nargs && i == numLines-1) {
				if err == nil && n < nargs {
					err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
				}
				panic(err)
			}
		}
		for j := 0; j < n; j++ {
			cells = append(cells, nn[j]-1)
		}
	}
	return
}

func readGambitBCs(Nbcs int, reader *bufio.Reader, msh *Mesh) {
	var (
		line, name string
		err        error
		n          int
	)
	for i := 0; i < Nbcs; i++ {
		// BC set header: NAME ITYPE NENTRY NVALUES, ITYPE 0 is a node
		// list, 1 is a cell/face list
		if i != 0 {
			skipLines(1, reader)
		}
		line = getLine(reader)
		var itype, nentry int
		nargs := 3
		if n, err = fmt.Sscanf(line, "%32s%8d%8d", &name, &itype, &nentry); err != nil || n < nargs {
			if err == nil && n < nargs {
				err = fmt.Errorf("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
			}
			panic(err)
		}
		name = strings.ToLower(strings.Trim(name, " "))
		switch itype {
		case 0:
			nodes := make([]int, nentry)
			for j := 0; j < nentry; j++ {
				line = getLine(reader)
				var nd int
				if n, err = fmt.Sscanf(line, "%d", &nd); err != nil || n < 1 {
					if err == nil {
						err = fmt.Errorf("unable to read node id, line: %s", line)
					}
					panic(err)
				}
				nodes[j] = nd - 1
			}
			msh.NodeSets[name] = append(msh.NodeSets[name], nodes...)
		case 1:
			faces := make([]FaceIndex, nentry)
			for j := 0; j < nentry; j++ {
				line = getLine(reader)
				nargs = 3
				var kp1, typ, fp1 int
				if n, err = fmt.Sscanf(line, "%d %d %d", &kp1, &typ, &fp1); err != nil || n < nargs {
					if err == nil && n < nargs {
						err = fmt.Errorf("read fewer than required dimensions, read %d, need %d\n, line: %s", n, nargs, line)
					}
					panic(err)
				}
				faces[j] = FaceIndex{Cell: kp1 - 1, Face: fp1 - 1}
			}
			msh.FaceSets[name] = append(msh.FaceSets[name], faces...)
		default:
			panic(fmt.Errorf("unknown boundary condition type %d, line: %s", itype, line))
		}
		skipLines(1, reader)
	}
	return
}

func getLine(reader *bufio.Reader) (line string) {
	var (
		err error
	)
	line, err = reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("early end of file")
		}
		panic(err)
	}
	line = line[:len(line)-1] // Strip away the newline
	return
}

func skipLines(n int, reader *bufio.Reader) {
	for i := 0; i < n; i++ {
		getLine(reader)
	}
}
