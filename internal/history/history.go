// Package history provides bounded-memory undo/redo over full-buffer
// snapshots.
//
// A Store keeps an ordered list of snapshots and a cursor pointing at the
// snapshot that matches the working buffer. Index 0 is the undo floor: the
// image as loaded. Undo moves the cursor left, redo moves it right, and any
// new edit made while the cursor is not at the tail discards the redo tail.
//
// The list is trimmed after every save, first to a fixed count and then to
// a memory budget. The memory budget is soft: a minimum number of snapshots
// is always kept even when they exceed it.
//
// A typical edit looks like:
//
//	hist.SaveStateBeforeChange() // drop stale redo states
//	... mutate the working buffer ...
//	hist.SaveState()             // record the result
package history

import (
	"github.com/ironsheep/bg-eraser-mcp/internal/raster"
)

// Limits applied when no override is configured.
const (
	DefaultMaxStates   = 10
	DefaultMaxMemoryMB = 2048
	// MinRetained is the number of snapshots memory trimming never goes below.
	MinRetained = 3
)

// Target is the buffer owner the history snapshots and restores.
type Target interface {
	HasImage() bool
	CaptureState() *raster.Snapshot
	RestoreState(*raster.Snapshot)
}

// Status is the host-facing summary of the history.
type Status struct {
	CanUndo     bool  `json:"can_undo"`
	CanRedo     bool  `json:"can_redo"`
	UndoSteps   int   `json:"undo_steps"`
	RedoSteps   int   `json:"redo_steps"`
	States      int   `json:"states"`
	MemoryBytes int64 `json:"memory_bytes"`
}

// Options tunes the trimming limits.
type Options struct {
	// MaxStates caps the number of snapshots. Zero means DefaultMaxStates.
	MaxStates int
	// MaxMemoryBytes caps total snapshot bytes. Zero means DefaultMaxMemoryMB.
	MaxMemoryBytes int64
	// OnChange, if set, is called synchronously after every state change.
	OnChange func(Status)
}

// Store is the undo/redo history. Create one with New.
type Store struct {
	target    Target
	snapshots []*raster.Snapshot
	idx       int

	maxStates int
	maxBytes  int64
	onChange  func(Status)
}

// New returns an empty history over target.
func New(target Target, opts Options) *Store {
	if opts.MaxStates <= 0 {
		opts.MaxStates = DefaultMaxStates
	}
	if opts.MaxMemoryBytes <= 0 {
		opts.MaxMemoryBytes = DefaultMaxMemoryMB * 1024 * 1024
	}
	return &Store{
		target:    target,
		idx:       -1,
		maxStates: opts.MaxStates,
		maxBytes:  opts.MaxMemoryBytes,
		onChange:  opts.OnChange,
	}
}

// SaveStateBeforeChange discards any redo states ahead of the cursor. It is
// called before an edit is applied to the working buffer and does not
// capture a snapshot itself.
func (h *Store) SaveStateBeforeChange() {
	if h.target == nil || !h.target.HasImage() {
		return
	}
	h.truncateTail()
	h.notify()
}

// SaveState captures the working buffer after an edit, appends it, moves the
// cursor to it and trims the history.
func (h *Store) SaveState() {
	if h.target == nil || !h.target.HasImage() {
		return
	}
	h.truncateTail()

	snap := h.target.CaptureState()
	if snap == nil {
		return
	}
	h.snapshots = append(h.snapshots, snap)
	h.idx = len(h.snapshots) - 1

	h.trim()
	h.notify()
}

// SaveInitialState clears the history and records the freshly loaded image
// as the sole snapshot.
func (h *Store) SaveInitialState() {
	if h.target == nil || !h.target.HasImage() {
		return
	}
	h.release()
	h.snapshots = append(h.snapshots, h.target.CaptureState())
	h.idx = 0
	h.notify()
}

// CanUndo reports whether a state before the cursor exists.
func (h *Store) CanUndo() bool { return h.idx > 0 }

// CanRedo reports whether a state after the cursor exists.
func (h *Store) CanRedo() bool { return h.idx < len(h.snapshots)-1 }

// UndoSteps returns how many undos are available.
func (h *Store) UndoSteps() int {
	if h.idx < 0 {
		return 0
	}
	return h.idx
}

// RedoSteps returns how many redos are available.
func (h *Store) RedoSteps() int {
	if h.idx < 0 {
		return 0
	}
	return len(h.snapshots) - 1 - h.idx
}

// Len returns the number of retained snapshots.
func (h *Store) Len() int { return len(h.snapshots) }

// Index returns the cursor, or -1 when the history is empty.
func (h *Store) Index() int { return h.idx }

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo.
func (h *Store) Undo() bool {
	if !h.CanUndo() || h.target == nil {
		return false
	}
	h.idx--
	h.target.RestoreState(h.snapshots[h.idx])
	h.notify()
	return true
}

// Redo restores the next snapshot. It reports false when there is nothing
// to redo.
func (h *Store) Redo() bool {
	if !h.CanRedo() || h.target == nil {
		return false
	}
	h.idx++
	h.target.RestoreState(h.snapshots[h.idx])
	h.notify()
	return true
}

// Clear drops every snapshot.
func (h *Store) Clear() {
	h.release()
	h.notify()
}

// MemoryUsage returns the total bytes held by retained snapshots.
func (h *Store) MemoryUsage() int64 {
	var total int64
	for _, s := range h.snapshots {
		total += s.Bytes()
	}
	return total
}

// Status returns the host-facing summary.
func (h *Store) Status() Status {
	return Status{
		CanUndo:     h.CanUndo(),
		CanRedo:     h.CanRedo(),
		UndoSteps:   h.UndoSteps(),
		RedoSteps:   h.RedoSteps(),
		States:      len(h.snapshots),
		MemoryBytes: h.MemoryUsage(),
	}
}

func (h *Store) truncateTail() {
	if h.idx < len(h.snapshots)-1 {
		for i := h.idx + 1; i < len(h.snapshots); i++ {
			h.snapshots[i] = nil
		}
		h.snapshots = h.snapshots[:h.idx+1]
	}
}

// trim evicts from the oldest end, first by count and then by memory.
func (h *Store) trim() {
	for len(h.snapshots) > h.maxStates {
		h.dropOldest()
	}
	for h.MemoryUsage() > h.maxBytes && len(h.snapshots) > MinRetained {
		h.dropOldest()
	}
	if h.idx < 0 {
		h.idx = 0
	}
}

func (h *Store) dropOldest() {
	h.snapshots[0] = nil
	h.snapshots = h.snapshots[1:]
	h.idx--
}

func (h *Store) release() {
	for i := range h.snapshots {
		h.snapshots[i] = nil
	}
	h.snapshots = nil
	h.idx = -1
}

func (h *Store) notify() {
	if h.onChange != nil {
		h.onChange(h.Status())
	}
}
