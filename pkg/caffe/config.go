// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package caffe prepares per-fold trainer configs and drives the
// external Caffe-style trainer and scorer binaries.
//
// Model (NetParameter) and solver (SolverParameter) configs are handled
// as generic prototxt trees, so fork-specific layer parameters pass
// through untouched. The package rewrites only what varies per fold:
// the data layer's source and root folder, the train/test layer sets,
// and the solver's net path and snapshot prefix.
package caffe

import (
	"fmt"
	"os"
	"strings"

	"github.com/vzhangmeng726/CNNScore/pkg/prototxt"
)

// TrainModelSuffix is the filename suffix of generated train-mode
// models. The solver's snapshot prefix is the model path with this
// suffix stripped, which is how snapshot weight files end up beside
// their model configs.
const TrainModelSuffix = "_train.model.prototxt"

// Mode selects which layers a generated model keeps.
type Mode int

const (
	// ModeTrain keeps the loss layer and drops the prediction layer.
	ModeTrain Mode = iota

	// ModeTest keeps the prediction layer, drops the loss layer, and
	// disables shuffling and class balancing so output rows line up
	// with the data file.
	ModeTest
)

// ReadNet parses a model prototxt file.
func ReadNet(file string) (*prototxt.Message, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read model prototxt: %w", err)
	}
	net, err := prototxt.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if len(net.Get("layer")) == 0 {
		return nil, fmt.Errorf("%s: model has no layers", file)
	}
	return net, nil
}

// ReadSolver parses a solver prototxt file.
func ReadSolver(file string) (*prototxt.Message, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read solver prototxt: %w", err)
	}
	solver, err := prototxt.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if _, ok := solver.Int("max_iter"); !ok {
		return nil, fmt.Errorf("%s: solver has no max_iter", file)
	}
	return solver, nil
}

// dataParam returns the first layer's data parameter block. The first
// layer of every model this driver handles is the NDimData input layer.
func dataParam(net *prototxt.Message) (*prototxt.Message, error) {
	layers := net.Get("layer")
	if len(layers) == 0 {
		return nil, fmt.Errorf("model has no layers")
	}
	param := layers[0].Msg.Child("ndim_data_param")
	if param == nil {
		return nil, fmt.Errorf("first layer has no ndim_data_param")
	}
	return param, nil
}

// WriteModel writes a fold-specific model prototxt derived from the
// prototype, pointing its data layer at the given data file and binmap
// root and keeping only the layers the mode needs. The prototype is
// not modified.
func WriteModel(file string, prototype *prototxt.Message, dataFile, binmapRoot string, mode Mode) error {
	net := prototype.Clone()

	param, err := dataParam(net)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	param.SetStr("source", dataFile)
	param.SetStr("root_folder", binmapRoot)

	dropLayer := "pred"
	if mode == ModeTest {
		dropLayer = "loss"
		param.SetBool("shuffle", false)
		param.SetBool("balanced", false)
	}
	net.Remove(func(f *prototxt.Field) bool {
		if f.Name != "layer" || f.Msg == nil {
			return false
		}
		name, _ := f.Msg.Str("name")
		return name == dropLayer
	})

	if err := os.WriteFile(file, []byte(net.String()), 0644); err != nil {
		return fmt.Errorf("write model prototxt: %w", err)
	}
	return nil
}

// WriteSolver writes a fold-specific solver prototxt derived from the
// prototype, training the given model and snapshotting beside it.
func WriteSolver(file string, prototype *prototxt.Message, trainModelFile string) error {
	solver := prototype.Clone()
	solver.SetStr("train_net", trainModelFile)
	solver.SetStr("snapshot_prefix", strings.TrimSuffix(trainModelFile, TrainModelSuffix))

	if err := os.WriteFile(file, []byte(solver.String()), 0644); err != nil {
		return fmt.Errorf("write solver prototxt: %w", err)
	}
	return nil
}

// SnapshotIters lists the iterations at which the solver writes weight
// snapshots: snapshot, 2*snapshot, ... up to max_iter. A missing or
// zero snapshot interval means only the final iteration is kept.
func SnapshotIters(solver *prototxt.Message) ([]int, error) {
	maxIter, ok := solver.Int("max_iter")
	if !ok {
		return nil, fmt.Errorf("solver has no max_iter")
	}
	if maxIter <= 0 {
		return nil, fmt.Errorf("solver max_iter %d is not positive", maxIter)
	}
	snap, ok := solver.Int("snapshot")
	if !ok || snap <= 0 {
		snap = maxIter
	}

	var iters []int
	for i := snap; i <= maxIter; i += snap {
		iters = append(iters, int(i))
	}
	return iters, nil
}

// BatchSize returns the data layer's batch size, used to pace scoring
// progress output. Returns 0 when the model does not declare one.
func BatchSize(net *prototxt.Message) int {
	param, err := dataParam(net)
	if err != nil {
		return 0
	}
	size, ok := param.Int("batch_size")
	if !ok || size <= 0 {
		return 0
	}
	return int(size)
}
