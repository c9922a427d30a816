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

//go:build linux

package cmd

import (
	"fmt"

	perf "github.com/hodgesds/perf-utils"
)

// benchCounters runs f under the kernel's instruction counter. The
// counter may be unavailable depending on perf_event_paranoid, in which
// case f still runs once.
func benchCounters(f func()) {
	pv, err := perf.CPUInstructions(f)
	if err != nil {
		fmt.Printf("perf counters unavailable: %s\n", err)
		f()
		return
	}
	fmt.Printf("%d CPU instructions retired\n", pv.Value)
}
