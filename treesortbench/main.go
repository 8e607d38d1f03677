// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Program treesortbench sorts one generated input with one tree sort variant
// and reports elapsed time, data accesses and the package statistics.
package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/NVIDIA/treesort/bucketstats"
	"github.com/NVIDIA/treesort/conf"
	"github.com/NVIDIA/treesort/patterns"
	"github.com/NVIDIA/treesort/sortctx"
	"github.com/NVIDIA/treesort/transitions"
	"github.com/NVIDIA/treesort/treesort"
	"github.com/NVIDIA/treesort/utils"
)

const defaultSeed = 1

func usage(file *os.File) {
	fmt.Fprintf(file, "Usage:\n")
	fmt.Fprintf(file, "    %v variant pattern n conf-file [section.option=value]*\n", os.Args[0])
	fmt.Fprintf(file, "  where:\n")
	fmt.Fprintf(file, "    variant                 one of: %s\n", strings.Join(treesort.Variants(), ", "))
	fmt.Fprintf(file, "    pattern                 one of: %s\n", strings.Join(patterns.Names(), ", "))
	fmt.Fprintf(file, "    n                       number of elements to sort\n")
	fmt.Fprintf(file, "    conf-file               input to conf.MakeConfMapFromFile() (\"-\" reads stdin)\n")
	fmt.Fprintf(file, "    [section.option=value]* optional input to conf.UpdateFromStrings()\n")
	fmt.Fprintf(file, "\n")
	fmt.Fprintf(file, "Note: TreeSortBench.Seed selects the stream of the seeded patterns (default %d)\n", defaultSeed)
}

func main() {
	var (
		confMap  conf.ConfMap
		counters sortctx.Counters
		err      error
		n        uint64
		seed     uint64
	)

	// Parse arguments

	if 5 > len(os.Args) {
		usage(os.Stderr)
		os.Exit(1)
	}

	variant := os.Args[1]
	if !slices.Contains(treesort.Variants(), variant) {
		fmt.Fprintf(os.Stderr, "os.Args[1] ('%v') must be one of: %s\n", variant, strings.Join(treesort.Variants(), ", "))
		os.Exit(1)
	}

	pattern := os.Args[2]

	n, err = strconv.ParseUint(os.Args[3], 10, 31)
	if nil != err {
		fmt.Fprintf(os.Stderr, "strconv.ParseUint(\"%v\", 10, 31) of n failed: %v\n", os.Args[3], err)
		os.Exit(1)
	}

	confMap, err = conf.MakeConfMapFromFile(os.Args[4])
	if nil != err {
		fmt.Fprintf(os.Stderr, "conf.MakeConfMapFromFile(\"%v\") failed: %v\n", os.Args[4], err)
		os.Exit(1)
	}

	if 5 < len(os.Args) {
		err = confMap.UpdateFromStrings(os.Args[5:])
		if nil != err {
			fmt.Fprintf(os.Stderr, "confMap.UpdateFromStrings(%#v) failed: %v\n", os.Args[5:], err)
			os.Exit(1)
		}
	}

	seed = defaultSeed
	if confMap.HasOption("TreeSortBench", "Seed") {
		seed, err = confMap.FetchOptionValueUint64("TreeSortBench", "Seed")
		if nil != err {
			fmt.Fprintf(os.Stderr, "confMap.FetchOptionValueUint64(\"TreeSortBench\", \"Seed\") failed: %v\n", err)
			os.Exit(1)
		}
	}

	data, err := patterns.ByName(pattern, int(n), seed)
	if nil != err {
		fmt.Fprintf(os.Stderr, "patterns.ByName(\"%v\",,) failed: %v\n", pattern, err)
		os.Exit(1)
	}
	expected := slices.Clone(data)
	slices.Sort(expected)

	// Start up needed packages

	err = transitions.Up(confMap)
	if nil != err {
		fmt.Fprintf(os.Stderr, "transitions.Up() failed: %v\n", err)
		os.Exit(1)
	}

	counters.Register(variant)

	// Run the sort

	sw := utils.NewStopwatch()
	err = treesort.SortByName(variant, data, sortctx.Ordered[int64](), &counters)
	elapsed := sw.Stop()

	exitCode := 0
	if nil != err {
		fmt.Fprintf(os.Stderr, "treesort.SortByName(\"%v\",,,) failed: %v\n", variant, err)
		exitCode = 1
	} else if !slices.Equal(expected, data) {
		fmt.Fprintf(os.Stderr, "%v sort of %v input left data out of order\n", variant, pattern)
		exitCode = 1
	} else {
		counts := counters.Snapshot()
		fmt.Printf("%s %s n=%d elapsed=%s reads=%d writes=%d compares=%d\n",
			variant, pattern, n, sw.ElapsedString(), counts.Reads, counts.Writes, counts.Compares)
		if 0 < n {
			fmt.Printf("%.1f ns/element\n", float64(elapsed.Nanoseconds())/float64(n))
		}
	}

	fmt.Print(bucketstats.SprintStats(bucketstats.StatFormatParsable1, "*", "*"))

	// Stop packages

	counters.UnRegister(variant)

	err = transitions.Down(confMap)
	if nil != err {
		fmt.Fprintf(os.Stderr, "transitions.Down() failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(exitCode)
}
