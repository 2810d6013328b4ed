// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzhangmeng726/CNNScore/pkg/dataset"
)

func scored(labels []int, values []float64) []dataset.Score {
	scores := make([]dataset.Score, len(labels))
	for i := range labels {
		scores[i] = dataset.Score{Label: labels[i], Target: "t", Path: "p", Value: values[i]}
	}
	return scores
}

func TestROCPerfectClassifier(t *testing.T) {
	res, err := ROC(scored(
		[]int{1, 1, 0, 0},
		[]float64{0.9, 0.8, 0.2, 0.1},
	))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.AUC, 1e-9)
}

func TestROCWorstClassifier(t *testing.T) {
	res, err := ROC(scored(
		[]int{0, 0, 1, 1},
		[]float64{0.9, 0.8, 0.2, 0.1},
	))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.AUC, 1e-9)
}

func TestROCChanceLevel(t *testing.T) {
	// identical scores for both classes carry no information
	res, err := ROC(scored(
		[]int{1, 0, 1, 0},
		[]float64{0.5, 0.5, 0.5, 0.5},
	))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.AUC, 1e-9)
}

func TestROCCurveShape(t *testing.T) {
	res, err := ROC(scored(
		[]int{1, 0, 1, 0, 1, 0},
		[]float64{0.9, 0.6, 0.7, 0.4, 0.3, 0.1},
	))
	require.NoError(t, err)
	require.Equal(t, len(res.FPR), len(res.TPR))

	// curve spans the unit square corner to corner
	assert.Equal(t, 0.0, res.FPR[0])
	assert.Equal(t, 0.0, res.TPR[0])
	assert.Equal(t, 1.0, res.FPR[len(res.FPR)-1])
	assert.Equal(t, 1.0, res.TPR[len(res.TPR)-1])

	// FPR is nondecreasing
	for i := 1; i < len(res.FPR); i++ {
		assert.LessOrEqual(t, res.FPR[i-1], res.FPR[i])
	}
	// 2 of 3 pairs ranked correctly plus the tie-free ordering above
	assert.Greater(t, res.AUC, 0.5)
}

func TestROCErrors(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		values []float64
	}{
		{"empty", nil, nil},
		{"all positive", []int{1, 1}, []float64{0.5, 0.6}},
		{"all negative", []int{0, 0}, []float64{0.5, 0.6}},
		{"non-binary label", []int{1, 2}, []float64{0.5, 0.6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ROC(scored(tt.labels, tt.values))
			assert.Error(t, err)
		})
	}
}
