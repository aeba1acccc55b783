// Package chart lays out a pie chart of expense shares as SVG geometry.
// Slices start at 12 o'clock and run counterclockwise, each labelled with
// its percentage to one decimal place.
package chart

import (
	"fmt"
	"math"

	"financas/internal/core"
)

const (
	Size   = 300
	center = Size / 2.0
	radius = 100.0

	labelRadius = 0.6 * radius
	nameRadius  = 1.2 * radius
)

// Palette cycles when there are more categories than colours.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Slice is one drawable wedge.
type Slice struct {
	Name    string
	Percent string // e.g. "42.5%"
	Color   string

	// Path is the SVG path of the wedge; empty when Full is set.
	Path string
	Full bool

	LabelX, LabelY float64
	NameX, NameY   float64
	Anchor         string // text-anchor for the name label
}

// Chart is a laid-out pie.
type Chart struct {
	Size   int
	CX, CY float64
	Radius float64
	Slices []Slice
}

// Empty reports whether there is anything to draw.
func (c Chart) Empty() bool {
	return len(c.Slices) == 0
}

// Pie lays out shares. Shares with a non-positive fraction are skipped.
func Pie(shares []core.CategoryShare) Chart {
	c := Chart{Size: Size, CX: center, CY: center, Radius: radius}

	var drawable []core.CategoryShare
	var sum float64
	for _, s := range shares {
		if s.Share > 0 {
			drawable = append(drawable, s)
			sum += s.Share
		}
	}
	if sum <= 0 {
		return c
	}

	start := math.Pi / 2
	for i, s := range drawable {
		frac := s.Share / sum
		end := start + 2*math.Pi*frac
		if i == len(drawable)-1 {
			end = math.Pi/2 + 2*math.Pi
		}

		slice := Slice{
			Name:    s.Name,
			Percent: fmt.Sprintf("%1.1f%%", frac*100),
			Color:   Palette[i%len(Palette)],
		}

		mid := (start + end) / 2
		if len(drawable) == 1 {
			slice.Full = true
			slice.LabelX, slice.LabelY = center, center
		} else {
			slice.Path = wedge(start, end)
			slice.LabelX, slice.LabelY = point(mid, labelRadius)
		}
		slice.NameX, slice.NameY = point(mid, nameRadius)
		slice.Anchor = anchor(mid)

		c.Slices = append(c.Slices, slice)
		start = end
	}
	return c
}

// point converts a polar angle (radians, counterclockwise from 3 o'clock)
// to SVG coordinates, where y grows downwards.
func point(angle, r float64) (float64, float64) {
	return round2(center + r*math.Cos(angle)), round2(center - r*math.Sin(angle))
}

func wedge(start, end float64) string {
	x0, y0 := point(start, radius)
	x1, y1 := point(end, radius)
	large := 0
	if end-start > math.Pi {
		large = 1
	}
	// sweep-flag 0 draws the arc counterclockwise on screen.
	return fmt.Sprintf("M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z",
		center, center, x0, y0, radius, radius, large, x1, y1)
}

func anchor(angle float64) string {
	cos := math.Cos(angle)
	switch {
	case cos > 0.1:
		return "start"
	case cos < -0.1:
		return "end"
	default:
		return "middle"
	}
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // avoid -0
	}
	return r
}
