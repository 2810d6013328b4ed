// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vzhangmeng726/CNNScore/cmd/cnnscore/config"
	"github.com/vzhangmeng726/CNNScore/pkg/dataset"
	"github.com/vzhangmeng726/CNNScore/pkg/ux"
)

// runPartition writes the per-fold train/test data files beside the
// input data file, splitting whole targets so no target spans folds.
func runPartition(cmd *cobra.Command, args []string) {
	dataFile := args[0]
	k := partitionFolds
	if k == 0 {
		k = config.Global.Folds
	}

	ux.Title("Partition Dataset")
	ux.Detail("data:  %s", dataFile)
	ux.Detail("folds: %d", k)

	if err := dataset.WriteFoldFiles(dataFile, k, newRand()); err != nil {
		fail(err)
	}

	ux.Success("fold files written")
	for fold := 1; fold <= k; fold++ {
		train, test := dataset.FoldDataFiles(dataFile, fold)
		ux.Detail("%s / %s", train, test)
	}
}

// runReduce writes a downsampled copy of a data file, keeping roughly
// 1/factor of each target's rows so the target balance is preserved.
func runReduce(cmd *cobra.Command, args []string) {
	dataFile := args[0]
	factor, err := strconv.Atoi(args[1])
	if err != nil || factor < 2 {
		fail(fmt.Errorf("factor must be an integer >= 2, got %q", args[1]))
	}

	ux.Title("Reduce Dataset")
	ux.Detail("data:   %s", dataFile)
	ux.Detail("factor: %d", factor)

	examples, err := dataset.ReadExamples(dataFile)
	if err != nil {
		fail(err)
	}
	rng := newRand()
	groups := dataset.Reduce(dataset.GroupByTarget(examples), factor, rng)
	reduced := dataset.Collect(groups, dataset.Targets(groups))
	dataset.Shuffle(reduced, rng)

	ext := filepath.Ext(dataFile)
	outFile := strings.TrimSuffix(dataFile, ext) + "_reduce" + args[1] + ext
	if err := dataset.WriteExamples(outFile, reduced); err != nil {
		fail(err)
	}
	ux.Success("%d of %d rows kept", len(reduced), len(examples))
	ux.Detail("written to %s", outFile)
}
