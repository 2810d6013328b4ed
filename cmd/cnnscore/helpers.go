// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"math/rand/v2"
	"os"
	"time"

	"github.com/vzhangmeng726/CNNScore/cmd/cnnscore/config"
	"github.com/vzhangmeng726/CNNScore/pkg/caffe"
	"github.com/vzhangmeng726/CNNScore/pkg/crossval"
	"github.com/vzhangmeng726/CNNScore/pkg/ux"
)

// newPipeline assembles a pipeline from the effective config. Flag
// overrides have already been folded into config.Global by the root
// command's PersistentPreRunE.
func newPipeline() *crossval.Pipeline {
	cfg := &config.Global
	log := logger.With("run_id", runID)
	return &crossval.Pipeline{
		OutputDir:  cfg.OutputDir,
		BinmapRoot: cfg.BinmapRoot,
		K:          cfg.Folds,
		Trainer: &caffe.Trainer{
			Binary: cfg.Trainer.Binary,
			Scorer: cfg.Trainer.Scorer,
			GPUs:   cfg.Gpus,
			Log:    log,
		},
		Log:  log,
		Rand: newRand(),
	}
}

func newRand() *rand.Rand {
	now := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(now, now>>32))
}

// fail reports a fatal command error and exits.
func fail(err error) {
	if logger != nil {
		logger.Error("command failed", "run_id", runID, "error", err)
		_ = logger.Close()
	}
	ux.Error("%v", err)
	os.Exit(1)
}
