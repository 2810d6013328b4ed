// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package caffe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTrainerLog = `I0421 11:29:58.000001  4242 caffe.cpp:113] Use GPU with device ID 0
I0421 11:30:01.000002  4242 net.cpp:42] Initializing net from parameters:
I0421 11:30:04.000003  4242 solver.cpp:218] Iteration 50, loss = 0.80
I0421 11:30:04.000004  4242 solver.cpp:234]     Train net output #0: loss = 0.80 (* 1 = 0.80 loss)
I0421 11:30:08.000005  4242 solver.cpp:218] Iteration 100, loss = 0.60
I0421 11:30:08.000006  4242 sgd_solver.cpp:106] Iteration 100, lr = 0.001
I0421 11:30:12.000007  4242 solver.cpp:218] Iteration 150, loss = 0.50
I0421 11:30:16.000008  4242 solver.cpp:218] Iteration 200, loss = 0.40
I0421 11:30:16.000009  4242 solver.cpp:453] Snapshotting to binary proto file net_part1_iter_200.caffemodel
`

func TestParseTrainingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleTrainerLog), 0644))

	samples, err := ParseTrainingLog(path)
	require.NoError(t, err)

	// the lr line reports "lr =" rather than "loss =" and is skipped,
	// so the four loss lines fold into two smoothed samples
	require.Len(t, samples, 2)
	assert.Equal(t, 100, samples[0].Iter)
	assert.InDelta(t, 0.70, samples[0].Loss, 1e-9)
	assert.Equal(t, 200, samples[1].Iter)
	assert.InDelta(t, 0.45, samples[1].Loss, 1e-9)
}

func TestParseTrainingLogDropsPartialGroup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.log")
	content := "I0421 11:30:04.000001 1 solver.cpp:218] Iteration 50, loss = 0.8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	samples, err := ParseTrainingLog(path)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestParseTrainingLogMissingFile(t *testing.T) {
	_, err := ParseTrainingLog(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}
