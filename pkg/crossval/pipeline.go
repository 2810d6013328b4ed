// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package crossval

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/vzhangmeng726/CNNScore/pkg/caffe"
	"github.com/vzhangmeng726/CNNScore/pkg/charts"
	"github.com/vzhangmeng726/CNNScore/pkg/dataset"
	"github.com/vzhangmeng726/CNNScore/pkg/logging"
	"github.com/vzhangmeng726/CNNScore/pkg/metrics"
	"github.com/vzhangmeng726/CNNScore/pkg/prototxt"
)

// Pipeline runs the cross-validation stages end to end. All stages are
// sequential; the only parallelism in a run is whatever the external
// trainer does internally.
type Pipeline struct {
	OutputDir  string
	BinmapRoot string

	// K is the number of cross-validation folds, not counting the
	// train-on-full fold.
	K int

	Trainer *caffe.Trainer
	Log     *logging.Logger

	// Rand drives fold partitioning and row shuffling when the fold
	// data files need to be generated.
	Rand *rand.Rand
}

// Result summarizes a finished crossval or plots run.
type Result struct {
	Plan *Plan

	// TestOnTrainAUC and CrossvalAUC hold one AUC per snapshot
	// iteration, in schedule order.
	TestOnTrainAUC []float64
	CrossvalAUC    []float64
}

// CrossVal trains and evaluates one model configuration with k-fold
// cross-validation: generate per-fold configs, train each fold, score
// every snapshot, write score files, and render the ROC figures.
func (p *Pipeline) CrossVal(ctx context.Context, dataFile, modelFile, solverFile string) (*Result, error) {
	modelProto, err := caffe.ReadNet(modelFile)
	if err != nil {
		return nil, err
	}
	solverProto, err := caffe.ReadSolver(solverFile)
	if err != nil {
		return nil, err
	}
	iters, err := caffe.SnapshotIters(solverProto)
	if err != nil {
		return nil, err
	}

	plan := NewPlan(p.OutputDir, dataFile, modelFile, solverFile, p.K, iters)

	if err := p.ensureFoldData(dataFile); err != nil {
		return nil, err
	}
	if err := p.writeConfigs(plan, modelProto, solverProto); err != nil {
		return nil, err
	}

	for _, fold := range plan.Folds {
		p.Log.Info("training fold", "fold", fold.Fold, "part", fold.Part, "solver", fold.Solver)
		if err := p.Trainer.Train(ctx, fold.Solver, fold.TrainLog); err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Fold, err)
		}
	}

	agg := NewAggregate(iters)
	batchSize := caffe.BatchSize(modelProto)
	for _, fold := range plan.Folds {
		examples, err := dataset.ReadExamples(fold.TestData)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Fold, err)
		}
		for j, weightFile := range fold.Weights {
			scores, err := p.Trainer.Score(ctx, fold.TestModel, weightFile, examples, batchSize)
			if err != nil {
				return nil, fmt.Errorf("fold %d iter %d: %w", fold.Fold, iters[j], err)
			}
			if err := dataset.WriteScores(fold.Scores[j], scores); err != nil {
				return nil, err
			}
			p.Log.Info("scores written", "file", fold.Scores[j], "rows", len(scores))
			if err := agg.Add(fold.Fold, j, fold.Scores[j], scores); err != nil {
				return nil, err
			}
		}
	}

	return p.render(plan, agg, nil)
}

// Test scores one dataset with one weights file and writes a score
// file. Returns the score file path.
func (p *Pipeline) Test(ctx context.Context, dataFile, modelFile, weightFile string) (string, error) {
	modelProto, err := caffe.ReadNet(modelFile)
	if err != nil {
		return "", err
	}

	plan := NewTestPlan(p.OutputDir, dataFile, modelFile, weightFile)
	if err := caffe.WriteModel(plan.TestModel, modelProto, plan.TestData, p.BinmapRoot, caffe.ModeTest); err != nil {
		return "", err
	}

	examples, err := dataset.ReadExamples(plan.TestData)
	if err != nil {
		return "", err
	}
	scores, err := p.Trainer.Score(ctx, plan.TestModel, weightFile, examples, caffe.BatchSize(modelProto))
	if err != nil {
		return "", err
	}
	if err := dataset.WriteScores(plan.Score, scores); err != nil {
		return "", err
	}
	p.Log.Info("scores written", "file", plan.Score, "rows", len(scores))
	return plan.Score, nil
}

// Plots re-renders every figure of a finished run from its score files,
// without retraining or rescoring. A trainer log adds the training
// progress figure; a Vina-annotated data file adds the baseline curve
// to the per-iteration figures.
func (p *Pipeline) Plots(dataFile, modelFile, solverFile, logFile string) (*Result, error) {
	solverProto, err := caffe.ReadSolver(solverFile)
	if err != nil {
		return nil, err
	}
	iters, err := caffe.SnapshotIters(solverProto)
	if err != nil {
		return nil, err
	}

	plan := NewPlan(p.OutputDir, dataFile, modelFile, solverFile, p.K, iters)

	agg := NewAggregate(iters)
	for _, fold := range plan.Folds {
		for j, scoreFile := range fold.Scores {
			rows, err := dataset.ReadScores(scoreFile)
			if err != nil {
				return nil, fmt.Errorf("fold %d iter %d: %w", fold.Fold, iters[j], err)
			}
			if err := agg.Add(fold.Fold, j, scoreFile, rows); err != nil {
				return nil, err
			}
		}
	}

	var vina *charts.ROCSeries
	vinaScores, err := dataset.ReadVinaScores(dataFile)
	if err != nil {
		// baseline column is optional; most data files don't carry it
		p.Log.Warn("no vina baseline", "error", err)
	} else if curve, err := metrics.ROC(vinaScores); err != nil {
		p.Log.Warn("vina baseline skipped", "error", err)
	} else {
		vina = &charts.ROCSeries{Name: "AutoDock Vina", Curve: curve}
	}

	result, err := p.render(plan, agg, vina)
	if err != nil {
		return nil, err
	}

	if logFile != "" {
		if err := p.renderProgress(plan, logFile, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ensureFoldData generates the per-fold data files if any are missing.
// A run re-using an earlier partition keeps it, so fold membership
// stays comparable across solver tweaks.
func (p *Pipeline) ensureFoldData(dataFile string) error {
	missing := false
	for fold := 1; fold <= p.K; fold++ {
		train, test := dataset.FoldDataFiles(dataFile, fold)
		for _, f := range []string{train, test} {
			if _, err := os.Stat(f); err != nil {
				missing = true
			}
		}
	}
	if !missing {
		return nil
	}
	p.Log.Info("partitioning data", "file", dataFile, "folds", p.K)
	return dataset.WriteFoldFiles(dataFile, p.K, p.Rand)
}

// writeConfigs writes the train model, test model, and solver prototxt
// of every fold.
func (p *Pipeline) writeConfigs(plan *Plan, modelProto, solverProto *prototxt.Message) error {
	for _, fold := range plan.Folds {
		if err := caffe.WriteModel(fold.TrainModel, modelProto, fold.TrainData, p.BinmapRoot, caffe.ModeTrain); err != nil {
			return fmt.Errorf("fold %d: %w", fold.Fold, err)
		}
		if err := caffe.WriteModel(fold.TestModel, modelProto, fold.TestData, p.BinmapRoot, caffe.ModeTest); err != nil {
			return fmt.Errorf("fold %d: %w", fold.Fold, err)
		}
		if err := caffe.WriteSolver(fold.Solver, solverProto, fold.TrainModel); err != nil {
			return fmt.Errorf("fold %d: %w", fold.Fold, err)
		}
		p.Log.Debug("configs written", "fold", fold.Fold, "solver", fold.Solver)
	}
	return nil
}

// render draws the test-on-train, cross-validation, and per-iteration
// ROC figures and returns the per-snapshot AUCs.
func (p *Pipeline) render(plan *Plan, agg *Aggregate, vina *charts.ROCSeries) (*Result, error) {
	curves := func(series []*Series) ([]charts.ROCSeries, []float64, error) {
		var out []charts.ROCSeries
		var aucs []float64
		for i, s := range series {
			if s == nil {
				return nil, nil, fmt.Errorf("no scores for snapshot %d", plan.Iters[i])
			}
			curve, err := metrics.ROC(s.Rows)
			if err != nil {
				return nil, nil, fmt.Errorf("series %s: %w", s.Name, err)
			}
			out = append(out, charts.ROCSeries{Name: s.Name, Curve: curve})
			aucs = append(aucs, curve.AUC)
		}
		return out, aucs, nil
	}

	totSeries, totAUCs, err := curves(agg.TestOnTrain)
	if err != nil {
		return nil, err
	}
	cvSeries, cvAUCs, err := curves(agg.Crossval)
	if err != nil {
		return nil, err
	}

	if err := charts.SaveROC(plan.TestOnTrainROCPlot(), totSeries); err != nil {
		return nil, err
	}
	if err := charts.SaveROC(plan.CrossvalROCPlot(), cvSeries); err != nil {
		return nil, err
	}
	for i, iter := range plan.Iters {
		series := []charts.ROCSeries{totSeries[i], cvSeries[i]}
		if vina != nil {
			series = append(series, *vina)
		}
		if err := charts.SaveROC(plan.IterROCPlot(iter), series); err != nil {
			return nil, err
		}
	}

	p.Log.Info("roc figures rendered",
		"testontrain", plan.TestOnTrainROCPlot(),
		"crossval", plan.CrossvalROCPlot(),
		"iterations", len(plan.Iters))

	return &Result{Plan: plan, TestOnTrainAUC: totAUCs, CrossvalAUC: cvAUCs}, nil
}

// renderProgress draws the training progress figure from a trainer log
// and the AUCs already computed for this run. The AUROC series are
// anchored at (0, 0.5): an untrained classifier is chance level.
func (p *Pipeline) renderProgress(plan *Plan, logFile string, result *Result) error {
	samples, err := caffe.ParseTrainingLog(logFile)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.New("trainer log has no loss samples")
	}

	loss := make([]charts.ProgressPoint, len(samples))
	for i, s := range samples {
		loss[i] = charts.ProgressPoint{Iter: s.Iter, Value: s.Loss}
	}
	anchor := func(aucs []float64) []charts.ProgressPoint {
		points := []charts.ProgressPoint{{Iter: 0, Value: 0.5}}
		for i, auc := range aucs {
			points = append(points, charts.ProgressPoint{Iter: plan.Iters[i], Value: auc})
		}
		return points
	}

	path := plan.TrainProgressPlot()
	if err := charts.SaveTrainingProgress(path, loss,
		anchor(result.TestOnTrainAUC), anchor(result.CrossvalAUC)); err != nil {
		return err
	}
	p.Log.Info("training progress rendered", "file", path)
	return nil
}
