// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package crossval plans and runs the k-fold cross-validation pipeline.
//
// A run touches a lot of files: per-fold data splits, generated model
// and solver configs, snapshot weights, score files, and plots. The
// Plan type computes every path up front from the input file names, so
// the generate, train, score, and plot stages all agree on where things
// live and a finished run can be re-plotted without retraining.
package crossval

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vzhangmeng726/CNNScore/pkg/dataset"
)

// FoldFiles lists every file belonging to one fold of a run.
//
// Fold 0 is the train-on-full fold: it trains and tests on the complete
// data file, giving the test-on-train upper bound. Folds 1..k are the
// cross-validation folds proper.
type FoldFiles struct {
	// Fold is the fold index, 0 for the train-on-full fold.
	Fold int

	// Part is the naming component: "full", "part1", "part2", ...
	Part string

	// TrainData and TestData are the fold's data files, beside the
	// input data file.
	TrainData string
	TestData  string

	// TrainModel, TestModel, and Solver are the generated configs in
	// the output directory.
	TrainModel string
	TestModel  string
	Solver     string

	// TrainLog captures the trainer's output for this fold.
	TrainLog string

	// Weights and Scores hold one path per snapshot iteration, in
	// iteration order.
	Weights []string
	Scores  []string
}

// Plan is the complete file layout of one cross-validation run.
type Plan struct {
	OutputDir string
	DataFile  string

	// ModelName and SolverName are the prototype file basenames up to
	// the first dot, used as filename stems for generated files.
	ModelName  string
	SolverName string

	// K is the number of cross-validation folds (not counting fold 0).
	K int

	// Iters is the snapshot iteration schedule shared by all folds.
	Iters []int

	// Folds has K+1 entries; Folds[0] is the train-on-full fold.
	Folds []FoldFiles
}

// stem returns a file's basename up to the first dot, so
// "csar.model.prototxt" becomes "csar".
func stem(file string) string {
	base := filepath.Base(file)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// NewPlan lays out all files of a k-fold run with the given snapshot
// iteration schedule.
func NewPlan(outputDir, dataFile, modelFile, solverFile string, k int, iters []int) *Plan {
	p := &Plan{
		OutputDir:  outputDir,
		DataFile:   dataFile,
		ModelName:  stem(modelFile),
		SolverName: stem(solverFile),
		K:          k,
		Iters:      iters,
	}

	for fold := 0; fold <= k; fold++ {
		part := "full"
		if fold > 0 {
			part = fmt.Sprintf("part%d", fold)
		}
		trainData, testData := dataset.FoldDataFiles(dataFile, fold)

		f := FoldFiles{
			Fold:       fold,
			Part:       part,
			TrainData:  trainData,
			TestData:   testData,
			TrainModel: filepath.Join(outputDir, p.ModelName+"_"+part+"_train.model.prototxt"),
			TestModel:  filepath.Join(outputDir, p.ModelName+"_"+part+"_test.model.prototxt"),
			Solver:     filepath.Join(outputDir, p.SolverName+"_"+part+".solver.prototxt"),
			TrainLog:   filepath.Join(outputDir, p.SolverName+"_"+part+".train.log"),
		}
		for _, iter := range iters {
			base := fmt.Sprintf("%s_%s_iter_%d", p.ModelName, part, iter)
			f.Weights = append(f.Weights, filepath.Join(outputDir, base+".caffemodel"))
			f.Scores = append(f.Scores, filepath.Join(outputDir, base+".scores"))
		}
		p.Folds = append(p.Folds, f)
	}
	return p
}

// IterROCPlot returns the path of the per-iteration ROC figure.
func (p *Plan) IterROCPlot(iter int) string {
	return filepath.Join(p.OutputDir, fmt.Sprintf("%s_iter_%d.roc.png", p.ModelName, iter))
}

// TestOnTrainROCPlot returns the path of the test-on-train ROC figure.
func (p *Plan) TestOnTrainROCPlot() string {
	return filepath.Join(p.OutputDir, p.ModelName+"_testontrain.roc.png")
}

// CrossvalROCPlot returns the path of the cross-validation ROC figure.
func (p *Plan) CrossvalROCPlot() string {
	return filepath.Join(p.OutputDir, p.ModelName+"_crossval.roc.png")
}

// TrainProgressPlot returns the path of the training progress figure.
func (p *Plan) TrainProgressPlot() string {
	return filepath.Join(p.OutputDir, p.ModelName+".train_progress.png")
}

// TestPlan is the file layout of a standalone `test` run: one dataset
// scored by one weights file.
type TestPlan struct {
	TestData  string
	TestModel string
	Score     string
}

// NewTestPlan lays out the generated files of a standalone test run.
// The score file name combines the weights stem and the data stem so
// scoring several snapshots into one directory cannot collide.
func NewTestPlan(outputDir, dataFile, modelFile, weightFile string) *TestPlan {
	dataName := stem(dataFile)
	weightName := strings.TrimSuffix(filepath.Base(weightFile), filepath.Ext(weightFile))
	return &TestPlan{
		TestData:  dataFile,
		TestModel: filepath.Join(outputDir, stem(modelFile)+"_"+dataName+".model.prototxt"),
		Score:     filepath.Join(outputDir, weightName+"_"+dataName+".scores"),
	}
}
