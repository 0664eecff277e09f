package history

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/bg-eraser-mcp/internal/raster"
)

func newTarget(w, h int) *raster.Store {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	s := raster.NewStore()
	s.SetImage(img)
	return s
}

// edit makes a distinguishable change to the working buffer.
func edit(s *raster.Store, i int) {
	b := s.Bounds()
	s.Current().SetNRGBA(i%b.Dx(), (i/b.Dx())%b.Dy(), color.NRGBA{A: uint8(i)})
}

func pixels(s *raster.Store) []uint8 {
	return append([]uint8(nil), s.Current().Pix...)
}

func TestEmptyHistory(t *testing.T) {
	h := New(newTarget(4, 4), Options{})
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, 0, h.UndoSteps())
	assert.Equal(t, 0, h.RedoSteps())
	assert.Equal(t, -1, h.Index())
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())
}

func TestNoImageIsIgnored(t *testing.T) {
	h := New(raster.NewStore(), Options{})
	h.SaveInitialState()
	h.SaveStateBeforeChange()
	h.SaveState()
	assert.Equal(t, 0, h.Len())
}

func TestSingleEditUndoRedo(t *testing.T) {
	s := newTarget(8, 8)
	h := New(s, Options{})
	h.SaveInitialState()
	before := pixels(s)

	h.SaveStateBeforeChange()
	edit(s, 3)
	h.SaveState()
	after := pixels(s)
	require.NotEqual(t, before, after)

	require.True(t, h.Undo())
	assert.Equal(t, before, pixels(s))
	assert.True(t, h.CanRedo())

	require.True(t, h.Redo())
	assert.Equal(t, after, pixels(s))
	assert.False(t, h.CanRedo())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newTarget(8, 8)
	h := New(s, Options{})
	h.SaveInitialState()
	initial := pixels(s)

	const n = 9
	for i := 1; i <= n; i++ {
		h.SaveStateBeforeChange()
		edit(s, i*5)
		h.SaveState()
	}
	final := pixels(s)
	require.Equal(t, n, h.UndoSteps())

	for i := 0; i < n; i++ {
		require.True(t, h.Undo())
	}
	assert.False(t, h.Undo())
	assert.Equal(t, initial, pixels(s))

	for i := 0; i < n; i++ {
		require.True(t, h.Redo())
	}
	assert.False(t, h.Redo())
	assert.Equal(t, final, pixels(s))
}

func TestCountTrim(t *testing.T) {
	s := newTarget(4, 4)
	h := New(s, Options{MaxStates: 10})
	h.SaveInitialState()
	for i := 1; i < 12; i++ {
		h.SaveStateBeforeChange()
		edit(s, i)
		h.SaveState()
	}

	assert.Equal(t, 10, h.Len())
	assert.Equal(t, 9, h.Index())
	assert.Equal(t, 9, h.UndoSteps())
	assert.False(t, h.CanRedo())

	// The oldest retained state is the one saved after edit 2.
	for h.Undo() {
	}
	assert.Equal(t, uint8(2), s.Current().NRGBAAt(2, 0).A)
	assert.Equal(t, uint8(1), s.Current().NRGBAAt(1, 0).A)
}

func TestMemoryTrimKeepsMinimum(t *testing.T) {
	s := newTarget(10, 10) // 400 bytes per snapshot
	h := New(s, Options{MaxStates: 10, MaxMemoryBytes: 500})
	h.SaveInitialState()
	for i := 1; i <= 6; i++ {
		h.SaveStateBeforeChange()
		edit(s, i)
		h.SaveState()
	}
	assert.Equal(t, MinRetained, h.Len())
	assert.Equal(t, MinRetained-1, h.Index())
	assert.Equal(t, int64(3*400), h.MemoryUsage())
}

func TestMemoryTrimWithinBudget(t *testing.T) {
	s := newTarget(10, 10)
	h := New(s, Options{MaxStates: 10, MaxMemoryBytes: 2000})
	h.SaveInitialState()
	for i := 1; i <= 8; i++ {
		h.SaveState()
	}
	assert.Equal(t, 5, h.Len())
}

func TestNewEditDiscardsRedo(t *testing.T) {
	s := newTarget(6, 6)
	h := New(s, Options{})
	h.SaveInitialState()
	for i := 1; i <= 3; i++ {
		h.SaveStateBeforeChange()
		edit(s, i)
		h.SaveState()
	}
	h.Undo()
	h.Undo()
	require.Equal(t, 2, h.RedoSteps())

	h.SaveStateBeforeChange()
	assert.False(t, h.CanRedo(), "marker drops the redo tail")
	assert.Equal(t, 2, h.Len())

	edit(s, 20)
	h.SaveState()
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.UndoSteps())
	assert.False(t, h.CanRedo())
}

func TestSaveInitialStateResets(t *testing.T) {
	s := newTarget(4, 4)
	h := New(s, Options{})
	h.SaveInitialState()
	h.SaveState()
	h.SaveState()
	require.Equal(t, 3, h.Len())

	h.SaveInitialState()
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.Index())
	assert.False(t, h.CanUndo())

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, -1, h.Index())
}

func TestUndoAcrossResize(t *testing.T) {
	s := newTarget(10, 10)
	h := New(s, Options{})
	h.SaveInitialState()

	h.SaveStateBeforeChange()
	require.True(t, s.Resize(20, 20))
	h.SaveState()

	require.True(t, h.Undo())
	assert.Equal(t, 10, s.Width())
	assert.Equal(t, s.Current().Bounds(), s.Original().Bounds())

	require.True(t, h.Redo())
	assert.Equal(t, 20, s.Width())
	assert.Equal(t, s.Current().Bounds(), s.Original().Bounds())
}

func TestOnChangeNotifies(t *testing.T) {
	var got []Status
	s := newTarget(4, 4)
	h := New(s, Options{OnChange: func(st Status) { got = append(got, st) }})

	h.SaveInitialState()
	h.SaveStateBeforeChange()
	h.SaveState()
	h.Undo()

	require.Len(t, got, 4)
	last := got[len(got)-1]
	assert.False(t, last.CanUndo)
	assert.True(t, last.CanRedo)
	assert.Equal(t, 1, last.RedoSteps)
	assert.Equal(t, 2, last.States)
	assert.Equal(t, int64(2*4*4*4), last.MemoryBytes)
}
