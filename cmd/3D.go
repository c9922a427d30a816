/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/notargets/goamr/InputParameters"
	"github.com/notargets/goamr/forest"
	"github.com/notargets/goamr/mesh"

	"github.com/spf13/cobra"
)

type Model3D struct {
	GridFile   string
	ICFile     string
	Nx, Ny, Nz int
	Verbose    bool
}

// ThreeDCmd represents the 3D command
var ThreeDCmd = &cobra.Command{
	Use:   "3D",
	Short: "Three dimensional forest refinement, able to read grid files and output statistics",
	Long:  `Three dimensional forest refinement, able to read grid files and output statistics`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("3D called")
		m3d := &Model3D{}
		if m3d.GridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
			panic(err)
		}
		if m3d.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		m3d.Nx, _ = cmd.Flags().GetInt("nx")
		m3d.Ny, _ = cmd.Flags().GetInt("ny")
		m3d.Nz, _ = cmd.Flags().GetInt("nz")
		m3d.Verbose, _ = cmd.Flags().GetBool("verbose")
		ip := processInput(m3d.ICFile)
		Run3D(m3d, ip)
	},
}

func init() {
	rootCmd.AddCommand(ThreeDCmd)
	ThreeDCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in Gambit (.neu) or SU2 (.su2) format")
	ThreeDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- MaxLevel\n\t- RefineSets (named set to target level)")
	ThreeDCmd.Flags().IntP("nx", "x", 2, "number of cells in x for a generated grid when no grid file is given")
	ThreeDCmd.Flags().IntP("ny", "y", 2, "number of cells in y for a generated grid when no grid file is given")
	ThreeDCmd.Flags().IntP("nz", "z", 2, "number of cells in z for a generated grid when no grid file is given")
	ThreeDCmd.Flags().BoolP("verbose", "v", false, "print detailed mesh information while reading")
}

func Run3D(m3d *Model3D, ip *InputParameters.RefinementParameters) {
	var (
		msh *mesh.Mesh
		err error
	)
	ip.Print()
	if len(m3d.GridFile) != 0 {
		if msh, err = mesh.ReadMeshFile(m3d.GridFile, m3d.Verbose); err != nil {
			panic(err)
		}
	} else {
		fmt.Printf("no grid file given, generating a %d x %d x %d hex grid\n", m3d.Nx, m3d.Ny, m3d.Nz)
		msh = mesh.GenerateHexMesh(m3d.Nx, m3d.Ny, m3d.Nz, 0, 1, 0, 1, 0, 1)
	}
	msh.PrintStatistics()

	frst, err := forest.NewForest(msh, ip.EffectiveMaxLevel())
	if err != nil {
		panic(err)
	}
	start := time.Now()
	applyProgram(frst, ip)
	fmt.Printf("refinement program applied in %v\n", time.Since(start))
	frst.PrintStatistics()

	start = time.Now()
	g := frst.ExtractGrid()
	fmt.Printf("extracted %d cells and %d unique nodes in %v\n",
		g.K, g.VX.Len(), time.Since(start))
}
