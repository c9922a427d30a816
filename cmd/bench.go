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

	"github.com/notargets/goamr/forest"
	"github.com/notargets/goamr/mesh"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// BenchCmd represents the bench command
var BenchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Synthetic refinement and node numbering benchmark",
	Long: `
Refines a generated grid toward one corner of the domain, balances and
extracts the global grid, reporting wall times per phase,

goamr bench -m 3 -k 4 -l 5 --profile cpu`,
	Run: func(cmd *cobra.Command, args []string) {
		dim, _ := cmd.Flags().GetInt("dim")
		n, _ := cmd.Flags().GetInt("size")
		maxLevel, _ := cmd.Flags().GetInt("maxLevel")
		prof, _ := cmd.Flags().GetString("profile")
		counters, _ := cmd.Flags().GetBool("perf")
		RunBench(dim, n, maxLevel, prof, counters)
	},
}

func init() {
	rootCmd.AddCommand(BenchCmd)
	BenchCmd.Flags().IntP("dim", "m", 2, "benchmark dimension: 2 or 3")
	BenchCmd.Flags().IntP("size", "k", 4, "cells per side of the generated coarse grid")
	BenchCmd.Flags().IntP("maxLevel", "l", 5, "refinement depth of the benchmark program")
	BenchCmd.Flags().StringP("profile", "p", "", "write a pprof profile to the working directory: cpu or mem")
	BenchCmd.Flags().Bool("perf", false, "report hardware counters for the refinement phase (linux only)")
}

func RunBench(dim, n, maxLevel int, prof string, counters bool) {
	switch prof {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}
	var msh *mesh.Mesh
	switch dim {
	case 3:
		msh = mesh.GenerateHexMesh(n, n, n, 0, 1, 0, 1, 0, 1)
	default:
		msh = mesh.GenerateQuadMesh(n, n, 0, 1, 0, 1)
	}
	// Chase the origin corner down to maxLevel, then balance, a worst
	// case for cascading 2:1 propagation
	msh.NodeSets["bench"] = []int{0}
	frst, err := forest.NewForest(msh, maxLevel)
	if err != nil {
		panic(err)
	}
	workload := func() {
		if err := frst.RefineSet("bench", maxLevel); err != nil {
			panic(err)
		}
		frst.Balance()
	}
	start := time.Now()
	if counters {
		benchCounters(workload)
	} else {
		workload()
	}
	fmt.Printf("refined and balanced in %v\n", time.Since(start))
	frst.PrintStatistics()

	start = time.Now()
	g := frst.ExtractGrid()
	fmt.Printf("extracted %d cells and %d unique nodes in %v\n",
		g.K, g.VX.Len(), time.Since(start))
}
