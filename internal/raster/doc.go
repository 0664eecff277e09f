// Package raster owns the pixel buffers being edited.
//
// A Store keeps two NRGBA buffers of identical dimensions: the original
// image as it was loaded (the reference the repair brush restores toward)
// and the current working copy that every tool mutates. Alongside them it
// keeps a LabImage, a per-pixel CIE L*a*b* rendition of the current colors
// used by seeded color selection.
//
// # Coordinate System
//
// Coordinates are 0-based with the origin at the top-left corner. Regions
// are image.Rectangle values: Min is inclusive, Max is exclusive.
//
// # Perceptual Cache
//
// The Lab cache is rebuilt whenever the color channels of the current
// buffer change wholesale (load, resize, restore, replacement). Alpha-only
// edits such as erasing leave it valid.
//
// # Thread Safety
//
// A Store is not safe for concurrent use. All mutation is expected to run
// on a single interaction goroutine.
//
// # Error Handling
//
// Load, Save and Export return *LoadError, *SaveError and *ExportError
// respectively. Each wraps the underlying cause and supports errors.Unwrap.
// A failed Load leaves the previously loaded image in place.
package raster
