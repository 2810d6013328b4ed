// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dataset

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func writeTempData(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "sample.types")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

// =============================================================================
// Data File Parsing
// =============================================================================

func TestReadExamples(t *testing.T) {
	file := writeTempData(t, "1 1a30 1a30/pose_0.binmap\n0 1a30 1a30/pose_4.binmap\n1 2xy9 2xy9/pose_0.binmap\n")

	examples, err := ReadExamples(file)
	require.NoError(t, err)
	require.Len(t, examples, 3)
	assert.Equal(t, Example{Label: 1, Target: "1a30", Path: "1a30/pose_0.binmap"}, examples[0])
	assert.Equal(t, Example{Label: 0, Target: "1a30", Path: "1a30/pose_4.binmap"}, examples[1])
}

func TestReadExamplesSkipsBlankLines(t *testing.T) {
	file := writeTempData(t, "1 t1 a\n\n0 t2 b\n")

	examples, err := ReadExamples(file)
	require.NoError(t, err)
	assert.Len(t, examples, 2)
}

func TestReadExamplesIgnoresExtraColumns(t *testing.T) {
	file := writeTempData(t, "1 t1 a rmsd 1.2 -7.5\n")

	examples, err := ReadExamples(file)
	require.NoError(t, err)
	assert.Equal(t, "a", examples[0].Path)
}

func TestReadExamplesErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few fields", "1 t1\n"},
		{"non-integer label", "x t1 a\n"},
		{"non-binary label", "2 t1 a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeTempData(t, tt.content)
			_, err := ReadExamples(file)
			assert.Error(t, err)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	examples := []Example{
		{Label: 1, Target: "1a30", Path: "1a30/pose_0.binmap"},
		{Label: 0, Target: "2xy9", Path: "2xy9/pose_3.binmap"},
	}
	file := filepath.Join(t.TempDir(), "out.types")
	require.NoError(t, WriteExamples(file, examples))

	got, err := ReadExamples(file)
	require.NoError(t, err)
	assert.Equal(t, examples, got)
}

// =============================================================================
// Grouping and Partitioning
// =============================================================================

func TestGroupByTarget(t *testing.T) {
	examples := []Example{
		{1, "t1", "a"}, {0, "t1", "b"}, {1, "t2", "c"},
	}
	groups := GroupByTarget(examples)
	assert.Len(t, groups, 2)
	assert.Len(t, groups["t1"], 2)
	assert.Len(t, groups["t2"], 1)
}

func TestKFoldPartitionsBalanced(t *testing.T) {
	groups := map[string][]Example{}
	for _, t := range []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7"} {
		groups[t] = []Example{{1, t, t + "/a"}}
	}

	parts := KFoldPartitions(groups, 3, testRand())
	require.Len(t, parts, 3)

	seen := map[string]int{}
	for _, part := range parts {
		// 7 targets over 3 folds: sizes differ by at most one
		assert.InDelta(t, 7.0/3.0, float64(len(part)), 1.0)
		for _, target := range part {
			seen[target]++
		}
	}
	// every target lands in exactly one partition
	assert.Len(t, seen, 7)
	for target, n := range seen {
		assert.Equalf(t, 1, n, "target %s appears %d times", target, n)
	}
}

func TestReduceKeepsFraction(t *testing.T) {
	groups := map[string][]Example{
		"t1": {{1, "t1", "a"}, {0, "t1", "b"}, {1, "t1", "c"}, {0, "t1", "d"}},
		"t2": {{1, "t2", "e"}, {0, "t2", "f"}},
	}

	reduced := Reduce(groups, 2, testRand())
	assert.Len(t, reduced["t1"], 2)
	assert.Len(t, reduced["t2"], 1)
	// originals untouched
	assert.Len(t, groups["t1"], 4)
}

// =============================================================================
// Fold Files
// =============================================================================

func TestFoldDataFiles(t *testing.T) {
	train, test := FoldDataFiles("/data/csar.types", 2)
	assert.Equal(t, "/data/csar_part2_train.types", train)
	assert.Equal(t, "/data/csar_part2_test.types", test)

	train, test = FoldDataFiles("/data/csar.types", 0)
	assert.Equal(t, "/data/csar.types", train)
	assert.Equal(t, "/data/csar.types", test)
}

func TestWriteFoldFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "csar.types")
	content := ""
	targets := []string{"t1", "t2", "t3", "t4", "t5", "t6"}
	for _, target := range targets {
		content += "1 " + target + " " + target + "/pose_0.binmap\n"
		content += "0 " + target + " " + target + "/pose_9.binmap\n"
	}
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	require.NoError(t, WriteFoldFiles(file, 3, testRand()))

	total := 0
	for fold := 1; fold <= 3; fold++ {
		trainFile, testFile := FoldDataFiles(file, fold)

		train, err := ReadExamples(trainFile)
		require.NoError(t, err)
		test, err := ReadExamples(testFile)
		require.NoError(t, err)

		// every example is on exactly one side of the split
		assert.Equal(t, 12, len(train)+len(test))
		total += len(test)

		// no target straddles the split
		testTargets := map[string]bool{}
		for _, ex := range test {
			testTargets[ex.Target] = true
		}
		for _, ex := range train {
			assert.Falsef(t, testTargets[ex.Target],
				"target %s in both train and test of fold %d", ex.Target, fold)
		}
	}
	// each example is tested in exactly one fold
	assert.Equal(t, 12, total)
}
