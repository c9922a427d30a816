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
	"io/ioutil"
	"os"
	"sort"
	"time"

	"github.com/notargets/goamr/InputParameters"
	"github.com/notargets/goamr/forest"
	"github.com/notargets/goamr/mesh"

	"github.com/spf13/cobra"
)

type Model2D struct {
	GridFile string
	ICFile   string
	Nx, Ny   int
	Verbose  bool
}

// TwoDCmd represents the 2D command
var TwoDCmd = &cobra.Command{
	Use:   "2D",
	Short: "Two dimensional forest refinement, able to read grid files and output statistics",
	Long:  `Two dimensional forest refinement, able to read grid files and output statistics`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("2D called")
		m2d := &Model2D{}
		if m2d.GridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
			panic(err)
		}
		if m2d.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		m2d.Nx, _ = cmd.Flags().GetInt("nx")
		m2d.Ny, _ = cmd.Flags().GetInt("ny")
		m2d.Verbose, _ = cmd.Flags().GetBool("verbose")
		ip := processInput(m2d.ICFile)
		Run2D(m2d, ip)
	},
}

func processInput(icFile string) (ip *InputParameters.RefinementParameters) {
	var (
		err error
	)
	if len(icFile) == 0 {
		err := fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Test Case"
MaxLevel: 4
UniformRefine: 1
RefineSets:
  inlet: 3
Balance: true
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = ioutil.ReadFile(icFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.RefinementParameters{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	return
}

// applyProgram runs the refinement program described by the input
// parameters: uniform sweeps first, then the named sets in sorted
// order, then balancing
func applyProgram(frst *forest.Forest, ip *InputParameters.RefinementParameters) {
	for i := 0; i < ip.UniformRefine; i++ {
		frst.RefineAll()
	}
	keys := make([]string, len(ip.RefineSets))
	i := 0
	for k := range ip.RefineSets {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := frst.RefineSet(key, ip.RefineSets[key]); err != nil {
			panic(err)
		}
	}
	if ip.Balance {
		frst.Balance()
	}
}

func init() {
	rootCmd.AddCommand(TwoDCmd)
	TwoDCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in Gambit (.neu) or SU2 (.su2) format")
	TwoDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- MaxLevel\n\t- RefineSets (named set to target level)")
	TwoDCmd.Flags().IntP("nx", "x", 2, "number of cells in x for a generated grid when no grid file is given")
	TwoDCmd.Flags().IntP("ny", "y", 2, "number of cells in y for a generated grid when no grid file is given")
	TwoDCmd.Flags().BoolP("verbose", "v", false, "print detailed mesh information while reading")
}

func Run2D(m2d *Model2D, ip *InputParameters.RefinementParameters) {
	var (
		msh *mesh.Mesh
		err error
	)
	ip.Print()
	if len(m2d.GridFile) != 0 {
		if msh, err = mesh.ReadMeshFile(m2d.GridFile, m2d.Verbose); err != nil {
			panic(err)
		}
	} else {
		fmt.Printf("no grid file given, generating a %d x %d quad grid\n", m2d.Nx, m2d.Ny)
		msh = mesh.GenerateQuadMesh(m2d.Nx, m2d.Ny, 0, 1, 0, 1)
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
