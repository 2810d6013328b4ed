// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Score is one row of a score file: a labeled example plus the model's
// positive-class score for it.
type Score struct {
	Label  int
	Target string
	Path   string
	Value  float64
}

// ReadScores reads a score file written by WriteScores.
func ReadScores(file string) ([]Score, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open score file: %w", err)
	}
	defer f.Close()

	var scores []Score
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s:%d: expected 4 fields, got %d", file, lineNo, len(fields))
		}
		label, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad label %q: %w", file, lineNo, fields[0], err)
		}
		value, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad score %q: %w", file, lineNo, fields[3], err)
		}
		scores = append(scores, Score{Label: label, Target: fields[1], Path: fields[2], Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read score file: %w", err)
	}
	return scores, nil
}

// WriteScores writes score rows in input order.
func WriteScores(file string, scores []Score) error {
	var b strings.Builder
	for _, s := range scores {
		fmt.Fprintf(&b, "%d %s %s %g\n", s.Label, s.Target, s.Path, s.Value)
	}
	if err := os.WriteFile(file, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write score file: %w", err)
	}
	return nil
}

// ReadVinaScores reads the AutoDock Vina column of an annotated data
// file as a baseline score set. Vina energies are lower-is-better, so
// the values are negated to match the model's higher-is-better scores.
func ReadVinaScores(file string) ([]Score, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	var scores []Score
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 6 {
			return nil, fmt.Errorf("%s:%d: no vina column (expected 6 fields, got %d)",
				file, lineNo, len(fields))
		}
		label, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad label %q: %w", file, lineNo, fields[0], err)
		}
		vina, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad vina score %q: %w", file, lineNo, fields[5], err)
		}
		scores = append(scores, Score{Label: label, Target: fields[1], Path: fields[2], Value: -vina})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return scores, nil
}
