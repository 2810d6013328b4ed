// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package charts renders the driver's evaluation figures with gonum/plot.
//
// Two figure types are produced: ROC curves (one line per score series,
// with a random-guess diagonal) and training progress (smoothed loss
// plus train/test AUROC against solver iteration).
package charts

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/vzhangmeng726/CNNScore/pkg/metrics"
)

// ROCSeries is one labeled curve on a ROC figure.
type ROCSeries struct {
	Name  string
	Curve *metrics.ROCResult
}

// ProgressPoint is one sample of a training-progress series.
type ProgressPoint struct {
	Iter  int
	Value float64
}

// SaveROC renders ROC curves for the given series to a PNG file.
//
// Every curve is drawn in a distinct color with the AUC in its legend
// entry; a dashed gray diagonal marks chance level.
func SaveROC(path string, series []ROCSeries) error {
	if len(series) == 0 {
		return errors.New("charts: no ROC series to plot")
	}

	p := plot.New()
	p.Title.Text = "Receiver Operating Characteristic"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return fmt.Errorf("charts: diagonal: %w", err)
	}
	diag.LineStyle.Color = color.Gray{Y: 153}
	diag.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(diag)
	p.Legend.Add("random guess", diag)

	for i, s := range series {
		if s.Curve == nil || len(s.Curve.FPR) == 0 {
			return fmt.Errorf("charts: series %q has no curve", s.Name)
		}
		pts := make(plotter.XYs, len(s.Curve.FPR))
		for j := range s.Curve.FPR {
			pts[j].X = s.Curve.FPR[j]
			pts[j].Y = s.Curve.TPR[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("charts: series %q: %w", s.Name, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s (AUC=%0.2f)", s.Name, s.Curve.AUC), line)
	}

	p.Legend.Top = false
	p.Legend.Left = false

	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("charts: save %s: %w", path, err)
	}
	return nil
}

// SaveTrainingProgress renders loss and AUROC series against solver
// iteration to a PNG file. Empty series are simply omitted, so the
// figure can be drawn even when no trainer log was available.
func SaveTrainingProgress(path string, loss, trainAUC, testAUC []ProgressPoint) error {
	if len(loss) == 0 && len(trainAUC) == 0 && len(testAUC) == 0 {
		return errors.New("charts: no progress series to plot")
	}

	p := plot.New()
	p.Title.Text = "Training Loss and AUROC"
	p.X.Label.Text = "Iteration"
	p.Add(plotter.NewGrid())

	add := func(idx int, name string, points []ProgressPoint) error {
		if len(points) == 0 {
			return nil
		}
		pts := make(plotter.XYs, len(points))
		for i, pt := range points {
			pts[i].X = float64(pt.Iter)
			pts[i].Y = pt.Value
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("charts: series %q: %w", name, err)
		}
		line.LineStyle.Color = plotutil.Color(idx)
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(name, line)
		return nil
	}

	if err := add(0, "Training Loss", loss); err != nil {
		return err
	}
	if err := add(1, "Train set AUROC", trainAUC); err != nil {
		return err
	}
	if err := add(2, "Test set AUROC", testAUC); err != nil {
		return err
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("charts: save %s: %w", path, err)
	}
	return nil
}
