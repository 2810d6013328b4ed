// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package crossval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzhangmeng726/CNNScore/pkg/dataset"
)

func rows(target string, n int) []dataset.Score {
	out := make([]dataset.Score, n)
	for i := range out {
		out[i] = dataset.Score{Label: i % 2, Target: target, Path: "p", Value: 0.5}
	}
	return out
}

func TestAggregateFamilies(t *testing.T) {
	agg := NewAggregate([]int{100, 200})

	require.NoError(t, agg.Add(0, 0, "/out/csar_full_iter_100.scores", rows("t1", 4)))
	require.NoError(t, agg.Add(1, 0, "/out/csar_part1_iter_100.scores", rows("t2", 2)))
	require.NoError(t, agg.Add(2, 0, "/out/csar_part2_iter_100.scores", rows("t3", 2)))
	require.NoError(t, agg.Add(3, 0, "/out/csar_part3_iter_100.scores", rows("t4", 2)))

	assert.Equal(t, "csar_testontrain_iter_100", agg.TestOnTrain[0].Name)
	assert.Len(t, agg.TestOnTrain[0].Rows, 4)

	// folds 1..3 pool into one series covering the whole dataset
	assert.Equal(t, "csar_crossval_iter_100", agg.Crossval[0].Name)
	assert.Len(t, agg.Crossval[0].Rows, 6)

	// snapshot 200 untouched
	assert.Nil(t, agg.TestOnTrain[1])
	assert.Nil(t, agg.Crossval[1])
}

func TestAggregateFoldOrder(t *testing.T) {
	agg := NewAggregate([]int{100})

	// fold 2 before fold 1 has no series to append to
	err := agg.Add(2, 0, "/out/csar_part2_iter_100.scores", rows("t1", 2))
	assert.Error(t, err)
}

func TestAggregateIterRange(t *testing.T) {
	agg := NewAggregate([]int{100})
	assert.Error(t, agg.Add(0, 1, "/out/csar_full_iter_200.scores", rows("t1", 2)))
	assert.Error(t, agg.Add(0, -1, "/out/x.scores", rows("t1", 2)))
}

func TestSeriesName(t *testing.T) {
	tests := []struct {
		file     string
		expected string
	}{
		{"/out/csar_full_iter_100.scores", "csar_testontrain_iter_100"},
		{"/out/csar_part1_iter_100.scores", "csar_crossval_iter_100"},
		{"/out/csar_part2_iter_100.scores", "csar_part2_iter_100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, seriesName(tt.file))
	}
}
