// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vzhangmeng726/CNNScore/cmd/cnnscore/config"
	"github.com/vzhangmeng726/CNNScore/pkg/ux"
)

// runCrossval drives the full pipeline: per-fold configs, training,
// snapshot scoring, and figure rendering.
func runCrossval(cmd *cobra.Command, args []string) {
	dataFile, modelFile, solverFile := args[0], args[1], args[2]
	cfg := &config.Global

	ux.Title("Cross-Validation")
	ux.Detail("data:   %s", dataFile)
	ux.Detail("model:  %s", modelFile)
	ux.Detail("solver: %s", solverFile)
	ux.Detail("folds:  %d  gpus: %s  output: %s", cfg.Folds, cfg.Gpus, cfg.OutputDir)

	p := newPipeline()
	result, err := p.CrossVal(cmd.Context(), dataFile, modelFile, solverFile)
	if err != nil {
		fail(err)
	}

	ux.Success("cross-validation finished")
	for j, iter := range result.Plan.Iters {
		ux.Metric(fmt.Sprintf("iter %d", iter), "test-on-train AUC %.3f | crossval AUC %.3f",
			result.TestOnTrainAUC[j], result.CrossvalAUC[j])
	}
	ux.Detail("figures written to %s", cfg.OutputDir)
}
