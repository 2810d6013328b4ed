// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package caffe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/vzhangmeng726/CNNScore/pkg/dataset"
	"github.com/vzhangmeng726/CNNScore/pkg/logging"
)

// LabelOrderError reports a mismatch between a data file row and the
// scorer's output row at the same position. It means the scorer walked
// the data in a different order than the file, so none of the scores
// can be trusted to line up.
type LabelOrderError struct {
	// Row is the zero-based row index where the mismatch occurred.
	Row int

	// Want is the label in the data file, Got the label the scorer
	// reported.
	Want, Got int
}

func (e *LabelOrderError) Error() string {
	return fmt.Sprintf("scorer output does not match data file: row %d has label %d, scorer reported %d",
		e.Row, e.Want, e.Got)
}

// Trainer invokes the external trainer and scorer binaries. The zero
// value is not usable; fill in the binary names and GPU ids from config.
type Trainer struct {
	// Binary is the trainer executable, typically "caffe".
	Binary string

	// Scorer is the scoring executable. It must accept -model,
	// -weights and -gpu flags and emit one "label score" line per
	// example on stdout, in data file order.
	Scorer string

	// GPUs is the comma-separated device id list passed to the
	// trainer. The scorer gets only the first id.
	GPUs string

	Log *logging.Logger
}

// Train runs one training job to completion:
//
//	<binary> train -solver <solver> -gpu <gpus>
//
// Trainer output is streamed to the console and teed to logFile so the
// loss curve can be parsed out later.
func (t *Trainer) Train(ctx context.Context, solverFile, logFile string) error {
	logf, err := os.Create(logFile)
	if err != nil {
		return fmt.Errorf("create trainer log: %w", err)
	}
	defer logf.Close()

	cmd := exec.CommandContext(ctx, t.Binary, "train", "-solver", solverFile, "-gpu", t.GPUs)
	cmd.Stdout = io.MultiWriter(os.Stdout, logf)
	// glog writes everything to stderr; the log file needs it all
	cmd.Stderr = io.MultiWriter(os.Stderr, logf)

	t.Log.Info("trainer started", "solver", solverFile, "gpus", t.GPUs, "log", logFile)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s train -solver %s: %w", t.Binary, solverFile, err)
	}
	return nil
}

// Score runs the scorer over a test-mode model and one weights file,
// returning a score row per example in data file order.
//
// The scorer's labels are checked against the examples row by row; any
// disagreement aborts with a LabelOrderError. Scorers pad their final
// batch, so trailing extra rows are drained and ignored. batchSize only
// paces progress logging; pass 0 to disable it.
func (t *Trainer) Score(ctx context.Context, modelFile, weightFile string, examples []dataset.Example, batchSize int) ([]dataset.Score, error) {
	gpu := t.GPUs
	if i := strings.IndexByte(gpu, ','); i >= 0 {
		gpu = gpu[:i]
	}

	cmd := exec.CommandContext(ctx, t.Scorer, "-model", modelFile, "-weights", weightFile, "-gpu", gpu)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("scorer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", t.Scorer, err)
	}

	t.Log.Info("scoring", "model", modelFile, "weights", weightFile, "examples", len(examples))

	scores := make([]dataset.Score, 0, len(examples))
	scanner := bufio.NewScanner(stdout)
	row := 0
	var scanErr error
	for scanner.Scan() {
		if row >= len(examples) {
			// padding rows from the scorer's last batch
			row++
			continue
		}
		label, value, err := parseScoreLine(scanner.Text())
		if err != nil {
			scanErr = fmt.Errorf("scorer row %d: %w", row, err)
			break
		}
		ex := examples[row]
		if label != ex.Label {
			scanErr = &LabelOrderError{Row: row, Want: ex.Label, Got: label}
			break
		}
		scores = append(scores, dataset.Score{
			Label:  ex.Label,
			Target: ex.Target,
			Path:   ex.Path,
			Value:  value,
		})
		row++

		if batchSize > 0 && row%batchSize == 0 {
			t.Log.Debug("scored batch",
				"batch", row/batchSize,
				"batches", (len(examples)+batchSize-1)/batchSize,
				"weights", weightFile)
		}
	}

	if scanErr != nil {
		// stop the scorer; its remaining output is useless
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, scanErr
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return nil, fmt.Errorf("read scorer output: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%s -model %s: %w", t.Scorer, modelFile, err)
	}
	if len(scores) < len(examples) {
		return nil, fmt.Errorf("scorer produced %d of %d scores", len(scores), len(examples))
	}
	return scores, nil
}

// parseScoreLine parses one "label score" scorer output line.
func parseScoreLine(line string) (label int, value float64, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("expected 'label score', got %q", line)
	}
	label, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad label %q: %w", fields[0], err)
	}
	value, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad score %q: %w", fields[1], err)
	}
	return label, value, nil
}
