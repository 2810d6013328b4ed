// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package metrics computes classifier evaluation metrics.
//
// The numerical work is delegated to gonum: stat.ROC for the curve and
// integrate.Trapezoidal for the area under it.
package metrics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/vzhangmeng726/CNNScore/pkg/dataset"
)

// ErrSingleClass is returned when a score set contains only positives
// or only negatives, for which a ROC curve is undefined.
var ErrSingleClass = errors.New("metrics: scores contain a single class")

// ROCResult holds one receiver operating characteristic curve.
type ROCResult struct {
	// FPR and TPR are the curve coordinates, ordered by increasing
	// false positive rate.
	FPR []float64
	TPR []float64

	// AUC is the area under the curve.
	AUC float64
}

// ROC computes the ROC curve and AUC for a set of scored examples.
//
// Labels must be binary. Scores are higher-is-better: a perfect
// classifier scores every positive above every negative and gets
// AUC 1.0.
func ROC(scores []dataset.Score) (*ROCResult, error) {
	if len(scores) == 0 {
		return nil, errors.New("metrics: no scores")
	}

	y := make([]float64, len(scores))
	classes := make([]bool, len(scores))
	pos := 0
	for i, s := range scores {
		if s.Label != 0 && s.Label != 1 {
			return nil, fmt.Errorf("metrics: non-binary label %d for %s", s.Label, s.Path)
		}
		y[i] = s.Value
		classes[i] = s.Label == 1
		if classes[i] {
			pos++
		}
	}
	if pos == 0 || pos == len(scores) {
		return nil, ErrSingleClass
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)

	return &ROCResult{
		FPR: fpr,
		TPR: tpr,
		AUC: integrate.Trapezoidal(fpr, tpr),
	}, nil
}
