// Package editor ties the editing components into one interactive session.
//
// An Editor owns the raster store, the undo history and the display cache,
// and borrows the tool configuration and viewport provider from its host.
// Every method runs synchronously on the caller's goroutine; the host is
// expected to serialize calls (one user, one pointer, one tool at a time).
//
// # Strokes
//
// Brush strokes follow a three-state sequence:
//
//	Idle --PointerDown--> Drawing --PointerMove*--> Drawing --PointerUp--> Idle
//
// PointerDown marks the history (dropping stale redo states) and stamps the
// first dab; each PointerMove stamps along the segment from the previous
// position; PointerUp records one snapshot for the whole stroke. A
// color-removal click is a one-shot edit recorded immediately.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/bg-eraser-mcp/internal/brush"
	"github.com/ironsheep/bg-eraser-mcp/internal/history"
	"github.com/ironsheep/bg-eraser-mcp/internal/raster"
	"github.com/ironsheep/bg-eraser-mcp/internal/selection"
	"github.com/ironsheep/bg-eraser-mcp/internal/soften"
	"github.com/ironsheep/bg-eraser-mcp/internal/tools"
	"github.com/ironsheep/bg-eraser-mcp/internal/upscale"
	"github.com/ironsheep/bg-eraser-mcp/internal/viewport"
)

// ErrImageModified is returned by Upscale once the image has undoable edits.
var ErrImageModified = errors.New("upscaling is only available for unmodified images")

// Options configures an Editor. Tools and View are shared with the host;
// their lifetime is managed by the caller.
type Options struct {
	Tools    *tools.Config
	View     viewport.Provider
	Observer Observer
	Logger   *logrus.Logger
	History  history.Options
	Cache    viewport.CacheOptions
}

// Editor is an interactive background-removal session over one image.
type Editor struct {
	store   *raster.Store
	tools   *tools.Config
	history *history.Store
	cache   *viewport.Cache
	view    viewport.Provider

	observer Observer
	log      *logrus.Entry
	progress upscale.ProgressFunc

	drawing bool
	last    image.Point

	softenLevel int
	softened    *image.NRGBA
}

// imageSizer is implemented by providers that need the image dimensions to
// compute the visible rectangle, such as *viewport.View.
type imageSizer interface {
	SetImageSize(width, height int)
}

// New creates an editor with no image loaded.
func New(opts Options) *Editor {
	if opts.Tools == nil {
		opts.Tools = tools.NewConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	e := &Editor{
		store:    raster.NewStore(),
		tools:    opts.Tools,
		cache:    viewport.NewCache(opts.Cache),
		view:     opts.View,
		observer: opts.Observer,
		log:      logger.WithField("component", "editor"),
	}

	hopts := opts.History
	hostOnChange := hopts.OnChange
	hopts.OnChange = func(s history.Status) {
		if hostOnChange != nil {
			hostOnChange(s)
		}
		e.notify(EventHistoryChanged)
	}
	e.history = history.New(e.store, hopts)
	return e
}

// Store returns the raster store being edited.
func (e *Editor) Store() *raster.Store { return e.store }

// Tools returns the shared tool configuration.
func (e *Editor) Tools() *tools.Config { return e.tools }

// History returns the undo history.
func (e *Editor) History() *history.Store { return e.history }

// Cache returns the display cache.
func (e *Editor) Cache() *viewport.Cache { return e.cache }

// HasImage reports whether an image is loaded.
func (e *Editor) HasImage() bool { return e.store.HasImage() }

// Drawing reports whether a brush stroke is in progress.
func (e *Editor) Drawing() bool { return e.drawing }

// OnProgress registers the callback long operations report percent
// progress to. Pass nil to unregister.
func (e *Editor) OnProgress(fn upscale.ProgressFunc) { e.progress = fn }

// HistoryStatus returns the undo/redo summary.
func (e *Editor) HistoryStatus() history.Status { return e.history.Status() }

// Load opens the image at path, makes it the history floor and rebuilds the
// display. On failure the previous image stays loaded.
func (e *Editor) Load(path string) error {
	log := e.log.WithField("path", path)
	e.report(0)
	if err := e.store.Load(path); err != nil {
		log.WithError(err).Warn("Failed to load image")
		return err
	}
	e.drawing = false
	e.history.SaveInitialState()
	e.rebuild()
	e.report(100)

	log.WithFields(logrus.Fields{
		"width":  e.store.Width(),
		"height": e.store.Height(),
		"large":  e.cache.IsLarge(),
	}).Info("Image loaded")
	e.notify(EventImageLoaded)
	return nil
}

// Save writes the working image to path as PNG.
func (e *Editor) Save(path string) error {
	if err := e.store.Save(path); err != nil {
		e.log.WithError(err).WithField("path", path).Warn("Failed to save image")
		return err
	}
	e.log.WithField("path", path).Info("Image saved")
	return nil
}

// Export writes the working image to path as PNG with edge softening at
// level applied to the written copy only.
func (e *Editor) Export(path string, level int) error {
	if err := e.store.Export(path, level); err != nil {
		e.log.WithError(err).WithField("path", path).Warn("Failed to export image")
		return err
	}
	e.log.WithFields(logrus.Fields{"path": path, "soften_level": level}).Info("Image exported")
	return nil
}

// Resize re-samples the image to width x height as one undoable edit. It
// reports false when nothing changed.
func (e *Editor) Resize(width, height int) bool {
	if !e.store.HasImage() || width <= 0 || height <= 0 || e.drawing {
		return false
	}
	if width == e.store.Width() && height == e.store.Height() {
		return false
	}
	e.history.SaveStateBeforeChange()
	if !e.store.Resize(width, height) {
		return false
	}
	e.history.SaveState()
	e.rebuild()

	e.log.WithFields(logrus.Fields{"width": width, "height": height}).Info("Image resized")
	e.notify(EventImageModified)
	return true
}

// Upscale enlarges the image with up (the built-in resampler when nil) and
// makes the result the new original. It blocks until the upscaler returns,
// forwarding progress to the OnProgress callback. Upscaling is refused once
// the image has undoable edits.
func (e *Editor) Upscale(ctx context.Context, up upscale.Upscaler, model upscale.Model, scale int) error {
	if !e.store.HasImage() {
		return raster.ErrNoImage
	}
	if e.history.CanUndo() {
		return ErrImageModified
	}
	if up == nil {
		up = upscale.Resampler{}
	}

	log := e.log.WithFields(logrus.Fields{"model": model.String(), "scale": scale})
	input := imaging.Clone(e.store.Current())
	result, err := up.Upscale(ctx, input, model, scale, e.report)
	if err != nil {
		log.WithError(err).Warn("Upscale failed")
		return fmt.Errorf("upscale failed: %w", err)
	}
	if result == nil || result.Bounds().Empty() {
		return fmt.Errorf("upscale failed: empty result")
	}

	e.history.SaveStateBeforeChange()
	e.store.ReplaceImage(result)
	e.rebuild()
	e.history.SaveState()

	log.WithFields(logrus.Fields{"width": e.store.Width(), "height": e.store.Height()}).Info("Image upscaled")
	e.notify(EventImageModified)
	return nil
}

// Clear unloads the image and drops the history.
func (e *Editor) Clear() {
	e.drawing = false
	e.store.Clear()
	e.history.Clear()
	e.softened = nil
	e.cache.Rebuild(nil)
	e.notify(EventImageCleared)
}

// Undo steps back one edit. It reports false when there is nothing to undo
// or a stroke is in progress.
func (e *Editor) Undo() bool {
	if e.drawing || !e.history.Undo() {
		return false
	}
	e.rebuild()
	e.notify(EventImageModified)
	return true
}

// Redo re-applies the next edit. It reports false when there is nothing to
// redo or a stroke is in progress.
func (e *Editor) Redo() bool {
	if e.drawing || !e.history.Redo() {
		return false
	}
	e.rebuild()
	e.notify(EventImageModified)
	return true
}

// PointerDown starts an edit at p (image coordinates) with the current tool.
// Presses outside the image are ignored. It reports whether an edit began.
func (e *Editor) PointerDown(p image.Point) bool {
	if !e.store.HasImage() || !p.In(e.store.Bounds()) {
		return false
	}

	switch tool := e.tools.Tool(); tool {
	case tools.SeededColorRemoval:
		return e.removeColor(p)
	case tools.Erase, tools.Repair:
		e.drawing = true
		e.last = p
		e.history.SaveStateBeforeChange()
		e.cache.Invalidate(e.stamp(p, p))
		return true
	}
	return false
}

// PointerMove continues a stroke to p. Positions outside the image are
// allowed; the brush clips. It reports false when no stroke is active.
func (e *Editor) PointerMove(p image.Point) bool {
	if !e.drawing {
		return false
	}
	dirty := e.stamp(e.last, p)
	e.last = p
	e.cache.Invalidate(dirty)
	return true
}

// PointerUp completes the active stroke and records it as one history
// entry. Releasing is always treated as completion, never rollback.
func (e *Editor) PointerUp() bool {
	if !e.drawing {
		return false
	}
	e.drawing = false
	if e.tools.Tool() == tools.Repair {
		// Repair rewrites color channels, not just alpha.
		e.store.RefreshPerceptual()
	}
	e.history.SaveState()
	e.refreshSoftened()
	e.notify(EventImageModified)
	return true
}

// ViewChanged renders whatever the provider now reports visible. Call it
// after pan, zoom or canvas resize.
func (e *Editor) ViewChanged() bool {
	rendered := e.cache.EnsureVisible(e.visibleRect())
	e.notify(EventViewChanged)
	return rendered
}

// SetEdgeSoftening sets the live preview softening level (0-5).
func (e *Editor) SetEdgeSoftening(level int) {
	e.softenLevel = max(0, min(soften.MaxLevel, level))
	e.refreshSoftened()
}

// EdgeSoftening returns the preview softening level.
func (e *Editor) EdgeSoftening() int { return e.softenLevel }

// Display returns the buffer to show: the softened preview when softening
// is on, otherwise the display cache. It is nil when no image is loaded.
func (e *Editor) Display() *image.NRGBA {
	if e.softened != nil {
		return e.softened
	}
	return e.cache.Display()
}

// removeColor runs seeded color removal as a single undoable edit.
func (e *Editor) removeColor(p image.Point) bool {
	cur := e.store.Current()
	if cur.NRGBAAt(p.X, p.Y).A == 0 {
		return false
	}
	// Growth is bounded by the view; a seed the user cannot see clears nothing.
	visible := e.visibleRect()
	if !visible.Empty() && !p.In(visible) {
		return false
	}

	e.history.SaveStateBeforeChange()
	res := selection.Remove(e.store, p, e.tools.Tolerance(), visible)
	e.history.SaveState()
	e.rebuild()

	e.log.WithFields(logrus.Fields{
		"x":         p.X,
		"y":         p.Y,
		"tolerance": e.tools.Tolerance(),
		"cleared":   res.Cleared,
	}).Debug("Color removed")
	e.notify(EventImageModified)
	return true
}

// stamp applies the current brush tool along from-to and returns the
// touched rectangle.
func (e *Editor) stamp(from, to image.Point) image.Rectangle {
	d := e.tools.Diameter()
	switch e.tools.Tool() {
	case tools.Erase:
		return brush.EraseAlongPath(e.store.Current(), from, to, d, e.tools.Hardness())
	case tools.Repair:
		return brush.RepairAlongPath(e.store.Current(), e.store.Original(), from, to, d)
	}
	return image.Rectangle{}
}

// rebuild resets the display cache after a whole-image change.
func (e *Editor) rebuild() {
	if s, ok := e.view.(imageSizer); ok {
		s.SetImageSize(e.store.Width(), e.store.Height())
	}
	e.cache.Rebuild(e.store)
	e.cache.EnsureVisible(e.visibleRect())
	e.refreshSoftened()
}

func (e *Editor) refreshSoftened() {
	if e.softenLevel == 0 || !e.store.HasImage() {
		e.softened = nil
		return
	}
	e.softened = soften.Apply(e.store.Current(), e.softenLevel)
}

func (e *Editor) visibleRect() image.Rectangle {
	if e.view == nil {
		return image.Rectangle{}
	}
	return e.view.VisibleImageRect()
}

func (e *Editor) report(percent int) {
	if e.progress != nil {
		e.progress(percent)
	}
}

func (e *Editor) notify(ev Event) {
	if e.observer != nil {
		e.observer.Notify(ev)
	}
}
