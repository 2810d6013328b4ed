// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dataset handles the plain-text data and score files the driver
// consumes and produces.
//
// A data file has one whitespace-separated row per labeled example:
//
//	<label> <target> <example>
//
// where label is 0 or 1, target is the binding-target group id, and
// example is a binmap path relative to the binmap root. Vina-annotated
// data files carry three extra columns; the sixth is the AutoDock Vina
// score.
//
// A score file appends the model's positive-class score:
//
//	<label> <target> <example> <score>
//
// Row order is significant: score rows are matched back to data rows by
// position, so every writer here preserves or deliberately shuffles
// whole rows, never individual fields.
package dataset

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Example is one labeled row of a data file.
type Example struct {
	// Label is the binary class label, 0 or 1.
	Label int

	// Target is the group id the example belongs to. K-fold splits are
	// made over targets, never over individual examples, so a target's
	// examples are always entirely in one side of a split.
	Target string

	// Path is the example's binmap path relative to the binmap root.
	Path string
}

// ReadExamples reads a data file into example records.
//
// Rows must have at least three fields; extra fields (Vina annotations)
// are ignored here. A non-binary label is an error.
func ReadExamples(file string) ([]Example, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	var examples []Example
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("%s:%d: expected at least 3 fields, got %d",
				file, lineNo, len(fields))
		}
		label, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad label %q: %w", file, lineNo, fields[0], err)
		}
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("%s:%d: label must be 0 or 1, got %d", file, lineNo, label)
		}
		examples = append(examples, Example{Label: label, Target: fields[1], Path: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return examples, nil
}

// WriteExamples writes example rows to a data file in input order.
func WriteExamples(file string, examples []Example) error {
	var b strings.Builder
	for _, ex := range examples {
		fmt.Fprintf(&b, "%d %s %s\n", ex.Label, ex.Target, ex.Path)
	}
	if err := os.WriteFile(file, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

// GroupByTarget groups examples by their target id.
func GroupByTarget(examples []Example) map[string][]Example {
	groups := make(map[string][]Example)
	for _, ex := range examples {
		groups[ex.Target] = append(groups[ex.Target], ex)
	}
	return groups
}

// Targets returns the group's target ids in sorted order, giving
// callers a deterministic base ordering before any shuffle.
func Targets(groups map[string][]Example) []string {
	targets := make([]string, 0, len(groups))
	for t := range groups {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// KFoldPartitions splits the targets into k balanced partitions.
//
// Each partition lists the targets withheld from training and used as
// that fold's test set. Targets are shuffled, then dealt round-robin,
// so partition sizes differ by at most one.
func KFoldPartitions(groups map[string][]Example, k int, rng *rand.Rand) [][]string {
	targets := Targets(groups)
	rng.Shuffle(len(targets), func(i, j int) {
		targets[i], targets[j] = targets[j], targets[i]
	})
	parts := make([][]string, k)
	for i, target := range targets {
		parts[i%k] = append(parts[i%k], target)
	}
	return parts
}

// Collect flattens the examples of the given targets, in target order.
func Collect(groups map[string][]Example, targets []string) []Example {
	var examples []Example
	for _, t := range targets {
		examples = append(examples, groups[t]...)
	}
	return examples
}

// Shuffle permutes example rows in place.
func Shuffle(examples []Example, rng *rand.Rand) {
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
}

// Reduce downsamples each target's examples by the given factor,
// keeping len/factor randomly chosen examples per target.
func Reduce(groups map[string][]Example, factor int, rng *rand.Rand) map[string][]Example {
	reduced := make(map[string][]Example, len(groups))
	for target, examples := range groups {
		kept := append([]Example(nil), examples...)
		rng.Shuffle(len(kept), func(i, j int) {
			kept[i], kept[j] = kept[j], kept[i]
		})
		reduced[target] = kept[:len(kept)/factor]
	}
	return reduced
}

// FoldDataFiles returns the train and test data file paths for a fold,
// placed beside the full data file:
//
//	<dir>/<name>_part<fold>_train<ext>
//	<dir>/<name>_part<fold>_test<ext>
//
// Fold numbering starts at 1; fold 0 is the train-on-full split and
// uses the full data file itself for both sides.
func FoldDataFiles(dataFile string, fold int) (train, test string) {
	if fold == 0 {
		return dataFile, dataFile
	}
	dir := filepath.Dir(dataFile)
	ext := filepath.Ext(dataFile)
	name := strings.TrimSuffix(filepath.Base(dataFile), ext)
	part := fmt.Sprintf("part%d", fold)
	train = filepath.Join(dir, strings.Join([]string{name, part, "train"}, "_")+ext)
	test = filepath.Join(dir, strings.Join([]string{name, part, "test"}, "_")+ext)
	return train, test
}

// WriteFoldFiles partitions a data file into k balanced folds and
// writes the per-fold train/test data files beside it. Rows within
// each output file are shuffled.
func WriteFoldFiles(dataFile string, k int, rng *rand.Rand) error {
	examples, err := ReadExamples(dataFile)
	if err != nil {
		return err
	}
	groups := GroupByTarget(examples)
	parts := KFoldPartitions(groups, k, rng)

	for p, testTargets := range parts {
		withheld := make(map[string]bool, len(testTargets))
		for _, t := range testTargets {
			withheld[t] = true
		}
		var trainTargets []string
		for _, t := range Targets(groups) {
			if !withheld[t] {
				trainTargets = append(trainTargets, t)
			}
		}

		trainFile, testFile := FoldDataFiles(dataFile, p+1)
		train := Collect(groups, trainTargets)
		test := Collect(groups, testTargets)
		Shuffle(train, rng)
		Shuffle(test, rng)
		if err := WriteExamples(trainFile, train); err != nil {
			return err
		}
		if err := WriteExamples(testFile, test); err != nil {
			return err
		}
	}
	return nil
}
