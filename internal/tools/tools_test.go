package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, SeededColorRemoval, c.Tool())
	assert.Equal(t, 10, c.Diameter())
	assert.Equal(t, 50, c.Tolerance())
	assert.Equal(t, 0.8, c.Hardness())

	st := c.State()
	assert.Equal(t, "color_remove", st.ToolName)
	assert.Equal(t, SeededColorRemoval, st.Tool)
}

func TestParseTool(t *testing.T) {
	tests := []struct {
		in      string
		want    Tool
		wantErr bool
	}{
		{"color_remove", SeededColorRemoval, false},
		{"auto_color", SeededColorRemoval, false},
		{"Select", SeededColorRemoval, false},
		{"erase", Erase, false},
		{" ERASER ", Erase, false},
		{"repair", Repair, false},
		{"restore", Repair, false},
		{"lasso", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTool(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToolString(t *testing.T) {
	for _, tool := range []Tool{SeededColorRemoval, Erase, Repair} {
		parsed, err := ParseTool(tool.String())
		require.NoError(t, err)
		assert.Equal(t, tool, parsed)
	}
	assert.Equal(t, "tool(9)", Tool(9).String())
}

func TestSetters(t *testing.T) {
	c := NewConfig()

	assert.True(t, c.SetTool(Erase))
	assert.False(t, c.SetTool(Erase), "same tool is no change")
	assert.False(t, c.SetTool(Tool(42)))
	assert.Equal(t, Erase, c.Tool())

	tests := []struct {
		name    string
		set     func() bool
		get     func() float64
		want    float64
		changed bool
	}{
		{"diameter", func() bool { return c.SetDiameter(30) }, func() float64 { return float64(c.Diameter()) }, 30, true},
		{"diameter same", func() bool { return c.SetDiameter(30) }, func() float64 { return float64(c.Diameter()) }, 30, false},
		{"diameter low", func() bool { return c.SetDiameter(0) }, func() float64 { return float64(c.Diameter()) }, 1, true},
		{"diameter high", func() bool { return c.SetDiameter(999) }, func() float64 { return float64(c.Diameter()) }, 200, true},
		{"tolerance low", func() bool { return c.SetTolerance(-5) }, func() float64 { return float64(c.Tolerance()) }, 0, true},
		{"tolerance high", func() bool { return c.SetTolerance(300) }, func() float64 { return float64(c.Tolerance()) }, 255, true},
		{"hardness", func() bool { return c.SetHardness(0.5) }, c.Hardness, 0.5, true},
		{"hardness tiny change", func() bool { return c.SetHardness(0.5005) }, c.Hardness, 0.5, false},
		{"hardness high", func() bool { return c.SetHardness(1.7) }, c.Hardness, 1, true},
		{"hardness low", func() bool { return c.SetHardness(-1) }, c.Hardness, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.changed, tt.set())
			assert.Equal(t, tt.want, tt.get())
		})
	}
}
