// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package markers loads the world geometry of the fiducial marker layout.
//
// The YAML file looks like:
//
//	marker_size: 0.2
//	relative_corner_position:
//	  upper_left:  [-0.1,  0.1, 0]
//	  upper_right: [ 0.1,  0.1, 0]
//	  lower_right: [ 0.1, -0.1, 0]
//	  lower_left:  [-0.1, -0.1, 0]
//	markers:
//	  4x4_1.patt: [0, 0, 0]
//	  4x4_2.patt: [1, 0, 0]
//
// Each marker's corners are its center plus the relative corner offsets.
package markers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"
)

// Corner order used everywhere in this package.
var cornerNames = [4]string{"upper_left", "upper_right", "lower_right", "lower_left"}

// Marker is one pattern and the world position of its four corners,
// ordered upper-left, upper-right, lower-right, lower-left.
type Marker struct {
	Pattern string       `json:"pattern"`
	Corners [4]r3.Vector `json:"corners"`
}

// Config is a loaded marker layout.
type Config struct {
	size    float64
	markers map[string]Marker
}

type layoutFile struct {
	MarkerSize             float64              `yaml:"marker_size"`
	RelativeCornerPosition map[string][]float64 `yaml:"relative_corner_position"`
	Markers                map[string][]float64 `yaml:"markers"`
}

// Load reads a marker layout file. Pattern names are resolved against
// patternDir.
func Load(path, patternDir string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("marker config: %w", err)
	}
	return Parse(data, patternDir)
}

// Parse decodes a marker layout from YAML.
func Parse(data []byte, patternDir string) (*Config, error) {
	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("marker config: decode yaml: %w", err)
	}
	if f.MarkerSize <= 0 {
		return nil, fmt.Errorf("marker config: marker_size must be positive, got %v", f.MarkerSize)
	}

	var offsets [4]r3.Vector
	for i, name := range cornerNames {
		v, err := toVector(f.RelativeCornerPosition[name])
		if err != nil {
			return nil, fmt.Errorf("marker config: relative_corner_position.%s: %w", name, err)
		}
		offsets[i] = v
	}

	cfg := &Config{size: f.MarkerSize, markers: make(map[string]Marker, len(f.Markers))}
	for name, pos := range f.Markers {
		center, err := toVector(pos)
		if err != nil {
			return nil, fmt.Errorf("marker config: markers.%s: %w", name, err)
		}

		pattern := filepath.Join(patternDir, name)
		m := Marker{Pattern: pattern}
		for i, off := range offsets {
			m.Corners[i] = center.Add(off)
		}
		cfg.markers[pattern] = m
	}

	return cfg, nil
}

func toVector(v []float64) (r3.Vector, error) {
	if len(v) != 3 {
		return r3.Vector{}, fmt.Errorf("want 3 coordinates, got %d", len(v))
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

// MarkerSize is the edge length of a marker in meters.
func (c *Config) MarkerSize() float64 {
	return c.size
}

// Corners returns the four corners of the marker for pattern.
func (c *Config) Corners(pattern string) ([]r3.Vector, bool) {
	m, ok := c.markers[pattern]
	if !ok {
		return nil, false
	}
	return m.Corners[:], true
}

// Markers returns all markers sorted by pattern.
func (c *Config) Markers() []Marker {
	out := make([]Marker, 0, len(c.markers))
	for _, m := range c.markers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}

// Points returns the corners of every marker, four per marker, in pattern order.
func (c *Config) Points() []r3.Vector {
	var pts []r3.Vector
	for _, m := range c.Markers() {
		pts = append(pts, m.Corners[:]...)
	}
	return pts
}

// PatternFiles lists the pattern file of every marker, sorted.
func (c *Config) PatternFiles() []string {
	ms := c.Markers()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Pattern
	}
	return out
}
