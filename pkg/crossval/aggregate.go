// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package crossval

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vzhangmeng726/CNNScore/pkg/dataset"
)

// Series is one labeled score set destined for a ROC curve.
type Series struct {
	Name string
	Rows []dataset.Score
}

// Aggregate pools per-fold score sets into the two families of curves
// the run reports: test-on-train (fold 0, one series per snapshot) and
// cross-validation (folds 1..k merged, one series per snapshot).
//
// Fold 1 starts each cross-validation series; later folds append their
// rows, because the held-out targets of folds 1..k together cover the
// whole dataset exactly once.
type Aggregate struct {
	Iters       []int
	TestOnTrain []*Series
	Crossval    []*Series
}

// NewAggregate prepares an aggregate for the given snapshot schedule.
func NewAggregate(iters []int) *Aggregate {
	return &Aggregate{
		Iters:       iters,
		TestOnTrain: make([]*Series, len(iters)),
		Crossval:    make([]*Series, len(iters)),
	}
}

// seriesName derives a curve label from a score file path, replacing
// the fold component with the family it represents.
func seriesName(scoreFile string) string {
	name := strings.TrimSuffix(filepath.Base(scoreFile), ".scores")
	name = strings.Replace(name, "_full_", "_testontrain_", 1)
	name = strings.Replace(name, "_part1_", "_crossval_", 1)
	return name
}

// Add records the score rows of one (fold, snapshot) pair.
func (a *Aggregate) Add(fold, iterIdx int, scoreFile string, rows []dataset.Score) error {
	if iterIdx < 0 || iterIdx >= len(a.Iters) {
		return fmt.Errorf("snapshot index %d out of range (have %d)", iterIdx, len(a.Iters))
	}
	switch {
	case fold == 0:
		a.TestOnTrain[iterIdx] = &Series{Name: seriesName(scoreFile), Rows: rows}
	case fold == 1:
		a.Crossval[iterIdx] = &Series{Name: seriesName(scoreFile), Rows: rows}
	default:
		if a.Crossval[iterIdx] == nil {
			return fmt.Errorf("fold %d scored before fold 1 for snapshot %d", fold, a.Iters[iterIdx])
		}
		a.Crossval[iterIdx].Rows = append(a.Crossval[iterIdx].Rows, rows...)
	}
	return nil
}
