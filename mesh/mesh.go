package mesh

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notargets/goamr/utils"
)

// CellType represents the cell types usable as forest macro cells
type CellType int

const (
	None CellType = iota
	Quad
	Hex
)

func (c CellType) String() string {
	return [...]string{"None", "Quad", "Hex"}[c]
}

func (c CellType) Dimension() int {
	switch c {
	case Quad:
		return 2
	case Hex:
		return 3
	}
	return 0
}

func (c CellType) NumVerts() int {
	switch c {
	case Quad:
		return 4
	case Hex:
		return 8
	}
	return 0
}

func (c CellType) NumFaces() int {
	switch c {
	case Quad:
		return 4
	case Hex:
		return 6
	}
	return 0
}

// FaceIndex identifies one face of one cell, both zero based, face
// numbers in the file-order convention of GetCellFaces
type FaceIndex struct {
	Cell int
	Face int
}

// Mesh represents a conforming coarse mesh of a single cell type, with
// vertex coordinates and the named entity sets carried by the input file
type Mesh struct {
	Dim  int
	Type CellType

	K  int // Number of cells
	Nv int // Number of vertices

	VX, VY, VZ utils.Vector // Vertex coordinates, VZ all zero for 2D

	EToV [][]int // Cell to vertex connectivity [K][NumVerts], file vertex order

	CellSets map[string][]int
	FaceSets map[string][]FaceIndex
	NodeSets map[string][]int
}

func NewMesh() *Mesh {
	return &Mesh{
		CellSets: make(map[string][]int),
		FaceSets: make(map[string][]FaceIndex),
		NodeSets: make(map[string][]int),
	}
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string, verbose bool) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".neu":
		return ReadGambit(filename, verbose), nil
	case ".su2":
		return ReadSU2(filename, verbose), nil
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// GetCellFaces returns the face vertices for each cell type in file
// vertex order. Quad vertices run counterclockwise, hex vertices number
// the bottom ring counterclockwise then the top ring above it.
func GetCellFaces(cellType CellType, vertices []int) [][]int {
	switch cellType {
	case Quad:
		return [][]int{
			{vertices[0], vertices[1]}, // Face 0 (bottom)
			{vertices[1], vertices[2]}, // Face 1 (right)
			{vertices[2], vertices[3]}, // Face 2 (top)
			{vertices[3], vertices[0]}, // Face 3 (left)
		}
	case Hex:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (bottom)
			{vertices[4], vertices[5], vertices[6], vertices[7]}, // Face 1 (top)
			{vertices[0], vertices[1], vertices[5], vertices[4]}, // Face 2
			{vertices[1], vertices[2], vertices[6], vertices[5]}, // Face 3
			{vertices[2], vertices[3], vertices[7], vertices[6]}, // Face 4
			{vertices[3], vertices[0], vertices[4], vertices[7]}, // Face 5
		}
	default:
		return [][]int{}
	}
}

// faceKey builds a cell-order independent lookup key from the vertices
// of a face
func faceKey(verts []int) string {
	sorted := make([]int, len(verts))
	copy(sorted, verts)
	sort.Ints(sorted)
	return fmt.Sprintf("%v", sorted)
}

// buildFaceMap maps each face, keyed on its sorted vertices, to the
// lowest numbered cell containing it
func (m *Mesh) buildFaceMap() (faceMap map[string]FaceIndex) {
	faceMap = make(map[string]FaceIndex)
	for k := 0; k < m.K; k++ {
		for f, faceVerts := range GetCellFaces(m.Type, m.EToV[k]) {
			key := faceKey(faceVerts)
			if _, exists := faceMap[key]; !exists {
				faceMap[key] = FaceIndex{Cell: k, Face: f}
			}
		}
	}
	return
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Vertices: %d\n", m.Nv)
	fmt.Printf("  Cells: %d (%s)\n", m.K, m.Type)
	switch m.Dim {
	case 2:
		fmt.Printf("Bounding Box:\nXMin/XMax = %5.3f, %5.3f\nYMin/YMax = %5.3f, %5.3f\n",
			m.VX.Min(), m.VX.Max(), m.VY.Min(), m.VY.Max())
	case 3:
		fmt.Printf("Bounding Box:\nXMin/XMax = %5.3f, %5.3f\nYMin/YMax = %5.3f, %5.3f\nZMin/ZMax = %5.3f, %5.3f\n",
			m.VX.Min(), m.VX.Max(), m.VY.Min(), m.VY.Max(), m.VZ.Min(), m.VZ.Max())
	}
	printSetSizes := func(label string, sizes map[string]int) {
		if len(sizes) == 0 {
			return
		}
		names := make([]string, 0, len(sizes))
		for name := range sizes {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("  %s:\n", label)
		for _, name := range names {
			fmt.Printf("    %s: %d\n", name, sizes[name])
		}
	}
	cellSizes := make(map[string]int)
	for name, cells := range m.CellSets {
		cellSizes[name] = len(cells)
	}
	faceSizes := make(map[string]int)
	for name, faces := range m.FaceSets {
		faceSizes[name] = len(faces)
	}
	nodeSizes := make(map[string]int)
	for name, nodes := range m.NodeSets {
		nodeSizes[name] = len(nodes)
	}
	printSetSizes("Cell sets", cellSizes)
	printSetSizes("Face sets", faceSizes)
	printSetSizes("Node sets", nodeSizes)
}
