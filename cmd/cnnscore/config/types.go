// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the cnnscore user configuration from
// ~/.cnnscore/cnnscore.yaml, creating it with defaults on first run.
package config

// Config holds every user-tunable setting. CLI flags override the
// corresponding fields for a single invocation.
type Config struct {
	// Gpus is the comma-separated GPU device id list handed to the
	// trainer, e.g. "0" or "0,1".
	Gpus string `yaml:"gpus" validate:"required"`

	// OutputDir is where generated configs, weights, scores, and
	// figures are written.
	OutputDir string `yaml:"output_dir" validate:"required"`

	// BinmapRoot is the root of the binmap directory tree that data
	// file example paths are relative to.
	BinmapRoot string `yaml:"binmap_root" validate:"required"`

	// Folds is the number of cross-validation folds.
	Folds int `yaml:"folds" validate:"gte=1,lte=20"`

	Trainer TrainerConfig `yaml:"trainer"`
	Logging LoggingConfig `yaml:"logging"`
}

// TrainerConfig names the external binaries the pipeline shells out to.
type TrainerConfig struct {
	// Binary is the trainer executable.
	Binary string `yaml:"binary" validate:"required"`

	// Scorer is the per-example scoring executable.
	Scorer string `yaml:"scorer" validate:"required"`
}

// LoggingConfig controls the CLI's structured logging.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, or error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Dir enables JSON file logging when set. Supports ~ expansion.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the settings written on first run.
func DefaultConfig() Config {
	return Config{
		Gpus:       "0",
		OutputDir:  "./",
		BinmapRoot: "/scr/CSAR/",
		Folds:      3,
		Trainer: TrainerConfig{
			Binary: "caffe",
			Scorer: "caffe_score",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.cnnscore/logs",
		},
	}
}
