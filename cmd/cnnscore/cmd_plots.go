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

// runPlots re-renders every figure of a finished run from the score
// files it left behind, without retraining or rescoring.
func runPlots(cmd *cobra.Command, args []string) {
	dataFile, modelFile, solverFile := args[0], args[1], args[2]

	ux.Title("Render Figures")
	ux.Detail("data:   %s", dataFile)
	ux.Detail("model:  %s", modelFile)
	ux.Detail("solver: %s", solverFile)
	if plotsLogFile != "" {
		ux.Detail("log:    %s", plotsLogFile)
	}

	p := newPipeline()
	result, err := p.Plots(dataFile, modelFile, solverFile, plotsLogFile)
	if err != nil {
		fail(err)
	}

	ux.Success("figures rendered")
	for j, iter := range result.Plan.Iters {
		ux.Metric(fmt.Sprintf("iter %d", iter), "test-on-train AUC %.3f | crossval AUC %.3f",
			result.TestOnTrainAUC[j], result.CrossvalAUC[j])
	}
	ux.Detail("figures written to %s", config.Global.OutputDir)
}
