// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vzhangmeng726/CNNScore/cmd/cnnscore/config"
	"github.com/vzhangmeng726/CNNScore/pkg/logging"
)

// --- Global Command Variables ---
var (
	gpus           string
	outputDir      string
	binmapRoot     string
	configPath     string
	logLevel       string
	plotsLogFile   string // trainer log for the plots subcommand
	partitionFolds int    // fold count override for partition

	logger *logging.Logger
	runID  string

	rootCmd = &cobra.Command{
		Use:   "cnnscore",
		Short: "A cli to train and evaluate CNN pose classifiers with k-fold cross-validation",
		Long: `cnnscore drives an external Caffe-style trainer through k-fold
cross-validation: it generates per-fold model and solver configs,
trains each fold, scores every weight snapshot, and renders ROC and
training-progress figures.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(configPath); err != nil {
				return err
			}
			// CLI flags override the config for this invocation
			if gpus != "" {
				config.Global.Gpus = gpus
			}
			if outputDir != "" {
				config.Global.OutputDir = outputDir
			}
			if binmapRoot != "" {
				config.Global.BinmapRoot = binmapRoot
			}
			level := config.Global.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			logger = logging.New(logging.Config{
				Level:   logging.ParseLevel(level),
				LogDir:  config.Global.Logging.Dir,
				Service: "cnnscore",
			})
			runID = uuid.NewString()

			if err := os.MkdirAll(config.Global.OutputDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Close()
			}
		},
	}

	// --- Pipeline Commands ---
	crossvalCmd = &cobra.Command{
		Use:   "crossval <data_file> <model_file> <solver_file>",
		Short: "Train and evaluate a model with k-fold cross-validation",
		Args:  cobra.ExactArgs(3),
		Run:   runCrossval, // Defined in cmd_crossval.go
	}

	testCmd = &cobra.Command{
		Use:   "test <data_file> <model_file> <weight_file>",
		Short: "Score a dataset with one trained weights file",
		Args:  cobra.ExactArgs(3),
		Run:   runTestModel, // Defined in cmd_score.go
	}

	plotsCmd = &cobra.Command{
		Use:   "plots <data_file> <model_file> <solver_file>",
		Short: "Re-render figures from the score files of a finished run",
		Args:  cobra.ExactArgs(3),
		Run:   runPlots, // Defined in cmd_plots.go
	}

	// --- Data Commands ---
	partitionCmd = &cobra.Command{
		Use:   "partition <data_file>",
		Short: "Write balanced per-fold train/test data files beside a data file",
		Args:  cobra.ExactArgs(1),
		Run:   runPartition, // Defined in cmd_data.go
	}

	reduceCmd = &cobra.Command{
		Use:   "reduce <data_file> <factor>",
		Short: "Write a downsampled copy of a data file, keeping 1/factor of each target",
		Args:  cobra.ExactArgs(2),
		Run:   runReduce, // Defined in cmd_data.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&gpus, "gpus", "g", "",
		"comma-separated device ids of GPUs to use")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "",
		"directory to output generated files")
	rootCmd.PersistentFlags().StringVarP(&binmapRoot, "binmap-root", "b", "",
		"root of binmap directory tree")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file to use instead of ~/.cnnscore/cnnscore.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"minimum log level: debug, info, warn, or error")

	rootCmd.AddCommand(crossvalCmd)
	rootCmd.AddCommand(testCmd)

	rootCmd.AddCommand(plotsCmd)
	plotsCmd.Flags().StringVar(&plotsLogFile, "log", "",
		"trainer log to parse for the training progress figure")

	rootCmd.AddCommand(partitionCmd)
	partitionCmd.Flags().IntVarP(&partitionFolds, "folds", "k", 0,
		"number of folds (defaults to the configured fold count)")
	rootCmd.AddCommand(reduceCmd)
}
