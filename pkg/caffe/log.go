// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package caffe

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LossSample is one smoothed (iteration, loss) reading from a trainer
// log.
type LossSample struct {
	Iter int
	Loss float64
}

// lossSmoothing is the number of consecutive loss lines averaged into
// one sample. The trainer reports loss every display interval, which is
// noisy enough that raw values make the progress plot unreadable.
const lossSmoothing = 2

// ParseTrainingLog extracts the loss curve from a glog-format trainer
// log. The lines of interest look like:
//
//	I0421 11:30:04.123456  4242 solver.cpp:218] Iteration 100, loss = 0.687
//
// i.e. the fifth whitespace field is "Iteration" and a "loss =" pair
// precedes the value. Lines that do not match (lr reports, snapshot
// notices, layer setup chatter) are skipped. Consecutive samples are averaged in
// groups of lossSmoothing; a trailing partial group is dropped.
func ParseTrainingLog(file string) ([]LossSample, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open trainer log: %w", err)
	}
	defer f.Close()

	var samples []LossSample
	var sum float64
	var lastIter, pending int

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 9 || fields[4] != "Iteration" || fields[6] != "loss" || fields[7] != "=" {
			continue
		}
		iter, err := strconv.Atoi(strings.TrimSuffix(fields[5], ","))
		if err != nil {
			continue
		}
		loss, err := strconv.ParseFloat(fields[8], 64)
		if err != nil {
			continue
		}

		lastIter = iter
		sum += loss
		pending++
		if pending == lossSmoothing {
			samples = append(samples, LossSample{Iter: lastIter, Loss: sum / lossSmoothing})
			sum, pending = 0, 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trainer log: %w", err)
	}
	return samples, nil
}
