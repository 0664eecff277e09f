// Package tools holds the tool configuration shared between the host and
// the editing engine.
//
// The host mutates a Config in response to user input; the engine reads it
// on every pointer event. Every setter clamps its argument to the valid
// range and reports whether the stored value actually changed, so callers
// can decide whether to notify their own observers.
package tools

import (
	"fmt"
	"math"
	"strings"
)

// Tool identifies the active editing tool.
type Tool int

const (
	// SeededColorRemoval clears the perceptually similar region around a
	// clicked seed pixel.
	SeededColorRemoval Tool = iota
	// Erase lowers alpha under a feathered round brush.
	Erase
	// Repair blends pixels back toward the original image.
	Repair
)

// Parameter ranges and defaults.
const (
	MinDiameter  = 1
	MaxDiameter  = 200
	MinTolerance = 0
	MaxTolerance = 255

	DefaultDiameter  = 10
	DefaultTolerance = 50
	DefaultHardness  = 0.8
)

var toolNames = map[Tool]string{
	SeededColorRemoval: "color_remove",
	Erase:              "erase",
	Repair:             "repair",
}

// String returns the wire name of the tool.
func (t Tool) String() string {
	if n, ok := toolNames[t]; ok {
		return n
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool maps a wire name (case-insensitive) to a Tool.
func ParseTool(name string) (Tool, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "color_remove", "auto_color", "select":
		return SeededColorRemoval, nil
	case "erase", "eraser":
		return Erase, nil
	case "repair", "restore":
		return Repair, nil
	}
	return 0, fmt.Errorf("unknown tool: %s", name)
}

// State is a point-in-time copy of the tool configuration.
type State struct {
	Tool      Tool    `json:"-"`
	ToolName  string  `json:"tool"`
	Diameter  int     `json:"diameter"`
	Tolerance int     `json:"tolerance"`
	Hardness  float64 `json:"hardness"`
}

// Config is the mutable tool configuration. Create one with NewConfig.
type Config struct {
	tool      Tool
	diameter  int
	tolerance int
	hardness  float64
}

// NewConfig returns a configuration with the default tool settings.
func NewConfig() *Config {
	return &Config{
		tool:      SeededColorRemoval,
		diameter:  DefaultDiameter,
		tolerance: DefaultTolerance,
		hardness:  DefaultHardness,
	}
}

// Tool returns the active tool.
func (c *Config) Tool() Tool { return c.tool }

// Diameter returns the brush diameter in image pixels, in [MinDiameter, MaxDiameter].
func (c *Config) Diameter() int { return c.diameter }

// Tolerance returns the color removal tolerance in [MinTolerance, MaxTolerance].
func (c *Config) Tolerance() int { return c.tolerance }

// Hardness returns the brush edge hardness in the range [0, 1].
func (c *Config) Hardness() float64 { return c.hardness }

// State returns a copy of the current settings.
func (c *Config) State() State {
	return State{
		Tool:      c.tool,
		ToolName:  c.tool.String(),
		Diameter:  c.diameter,
		Tolerance: c.tolerance,
		Hardness:  c.hardness,
	}
}

// SetTool selects the active tool. Unknown values are ignored.
func (c *Config) SetTool(t Tool) bool {
	if _, ok := toolNames[t]; !ok || t == c.tool {
		return false
	}
	c.tool = t
	return true
}

// SetDiameter sets the brush diameter, clamped to [MinDiameter, MaxDiameter].
func (c *Config) SetDiameter(d int) bool {
	d = clampInt(d, MinDiameter, MaxDiameter)
	if d == c.diameter {
		return false
	}
	c.diameter = d
	return true
}

// SetTolerance sets the selection tolerance, clamped to
// [MinTolerance, MaxTolerance].
func (c *Config) SetTolerance(t int) bool {
	t = clampInt(t, MinTolerance, MaxTolerance)
	if t == c.tolerance {
		return false
	}
	c.tolerance = t
	return true
}

// SetHardness sets the brush hardness, clamped to [0, 1]. Changes smaller
// than 0.001 are treated as no change.
func (c *Config) SetHardness(h float64) bool {
	if math.IsNaN(h) {
		return false
	}
	h = math.Max(0, math.Min(1, h))
	if math.Abs(h-c.hardness) <= 0.001 {
		return false
	}
	c.hardness = h
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
