// Package chart renders a converted per-minute latency file as a PNG line
// chart, replacing the gnuplot step downstream of the converter.
package chart

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type point struct {
	minutes float64
	latensi float64
	base    float64
}

// Render reads the tab-separated file convert writes and draws the latensi
// and baseline series against minutes since the first row. It returns the
// number of rows plotted.
func Render(datPath, pngPath string) (int, error) {
	points, err := readConverted(datPath)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("nothing to plot: %s has no rows", datPath)
	}

	latensi := make(plotter.XYs, len(points))
	baseline := make(plotter.XYs, len(points))
	for i, pt := range points {
		latensi[i].X = pt.minutes
		latensi[i].Y = pt.latensi
		baseline[i].X = pt.minutes
		baseline[i].Y = pt.base
	}

	p, err := plot.New()
	if err != nil {
		return 0, fmt.Errorf("Render() got err when calling plot.New(): %w", err)
	}
	p.Title.Text = "mean latency per minute"
	p.X.Label.Text = "minutes since start"
	p.Y.Label.Text = "latency (s)"

	if err := plotutil.AddLinePoints(p, "latensi", latensi, "baseline", baseline); err != nil {
		return 0, fmt.Errorf("Render() got err when calling plotutil.AddLinePoints(): %w", err)
	}

	if err := p.Save(12*vg.Inch, 6*vg.Inch, pngPath); err != nil {
		return 0, fmt.Errorf("Render() got err when calling Save(): %w", err)
	}
	return len(points), nil
}

func readConverted(path string) ([]point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("readConverted() got err when calling os.Open(): %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("readConverted() got err when reading header: %w", err)
	}
	waktuIdx, latensiIdx, baselineIdx := -1, -1, -1
	for i, cell := range header {
		switch cell {
		case "waktu":
			waktuIdx = i
		case "latensi":
			latensiIdx = i
		case "baseline":
			baselineIdx = i
		}
	}
	if waktuIdx == -1 || latensiIdx == -1 || baselineIdx == -1 {
		return nil, fmt.Errorf("%s does not look like a converted file; header = %v", path, header)
	}

	var points []point
	var first time.Time
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("readConverted() got err when reading row: %w", err)
		}

		t, err := time.Parse("15:04:05", rec[waktuIdx])
		if err != nil {
			return nil, fmt.Errorf("cannot parse waktu %q: %w", rec[waktuIdx], err)
		}
		v, err := strconv.ParseFloat(rec[latensiIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse latensi %q: %w", rec[latensiIdx], err)
		}
		base, err := strconv.ParseFloat(rec[baselineIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse baseline %q: %w", rec[baselineIdx], err)
		}

		if len(points) == 0 {
			first = t
		}
		x := t.Sub(first).Minutes()
		// Runs can roll past midnight; keep the axis monotonic.
		if x < 0 {
			x += 24 * 60
		}
		points = append(points, point{minutes: x, latensi: v, base: base})
	}

	return points, nil
}
