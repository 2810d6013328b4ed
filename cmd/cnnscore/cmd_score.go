// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/vzhangmeng726/CNNScore/pkg/ux"
)

// runTestModel scores one dataset with one trained weights file, with
// no training and no figures.
func runTestModel(cmd *cobra.Command, args []string) {
	dataFile, modelFile, weightFile := args[0], args[1], args[2]

	ux.Title("Score Dataset")
	ux.Detail("data:    %s", dataFile)
	ux.Detail("model:   %s", modelFile)
	ux.Detail("weights: %s", weightFile)

	p := newPipeline()
	scoreFile, err := p.Test(cmd.Context(), dataFile, modelFile, weightFile)
	if err != nil {
		fail(err)
	}
	ux.Success("scores written to %s", scoreFile)
}
