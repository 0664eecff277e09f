package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/bg-eraser-mcp/internal/history"
	"github.com/ironsheep/bg-eraser-mcp/internal/raster"
	"github.com/ironsheep/bg-eraser-mcp/internal/tools"
	"github.com/ironsheep/bg-eraser-mcp/internal/upscale"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "editor_load", "pointer_down").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token for long-running tools.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if params.Meta != nil {
		s.progressToken = params.Meta.ProgressToken
	}
	defer func() { s.progressToken = nil }()

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.WithFields(logrus.Fields{"tool": params.Name}).WithError(err).Warn("Tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
// Missing arguments are treated as an empty object.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	// Session
	case "editor_load":
		return s.handleEditorLoad(args)
	case "editor_save":
		return s.handleEditorSave(args)
	case "editor_export":
		return s.handleEditorExport(args)
	case "editor_resize":
		return s.handleEditorResize(args)
	case "editor_upscale":
		return s.handleEditorUpscale(args)
	case "editor_info":
		return s.handleEditorInfo()
	case "editor_sample_color":
		return s.handleEditorSampleColor(args)

	// Tools and strokes
	case "tool_configure":
		return s.handleToolConfigure(args)
	case "pointer_down":
		return s.handlePointerDown(args)
	case "pointer_move":
		return s.handlePointerMove(args)
	case "pointer_up":
		return s.handlePointerUp()
	case "editor_stroke":
		return s.handleEditorStroke(args)
	case "editor_select":
		return s.handleEditorSelect(args)

	// History
	case "history_undo":
		return s.handleHistoryStep(s.editor.Undo)
	case "history_redo":
		return s.handleHistoryStep(s.editor.Redo)
	case "history_status":
		return s.editor.HistoryStatus(), nil

	// View
	case "view_set":
		return s.handleViewSet(args)
	case "view_fit":
		return s.handleViewFit()
	case "view_render":
		return s.handleViewRender(args)
	case "editor_edge_soften":
		return s.handleEdgeSoften(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Result Types ===

// Rect is an image rectangle in JSON form. X2 and Y2 are exclusive.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func toRect(r image.Rectangle) Rect {
	return Rect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// ViewState describes the canvas, pan/zoom and render cache.
type ViewState struct {
	Zoom         float64 `json:"zoom"`
	PanX         float64 `json:"pan_x"`
	PanY         float64 `json:"pan_y"`
	CanvasWidth  int     `json:"canvas_width"`
	CanvasHeight int     `json:"canvas_height"`
	Visible      Rect    `json:"visible"`
	Rendered     Rect    `json:"rendered"`
	Incremental  bool    `json:"incremental"`
}

// EditorState is returned by tools that change the image.
type EditorState struct {
	Loaded  bool           `json:"loaded"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Changed bool           `json:"changed"`
	Tool    tools.State    `json:"tool"`
	History history.Status `json:"history"`
	View    ViewState      `json:"view"`
}

// InfoResult is returned by editor_info.
type InfoResult struct {
	*raster.ImageInfo
	SoftenLevel int            `json:"soften_level"`
	Tool        tools.State    `json:"tool"`
	History     history.Status `json:"history"`
	View        ViewState      `json:"view"`
}

// PointerResult is returned by the pointer tools.
type PointerResult struct {
	Handled bool           `json:"handled"`
	Drawing bool           `json:"drawing"`
	X       int            `json:"x"`
	Y       int            `json:"y"`
	Tool    string         `json:"tool"`
	History history.Status `json:"history"`
}

// FileResult is returned by editor_save and editor_export.
type FileResult struct {
	Path        string `json:"path"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SoftenLevel int    `json:"soften_level"`
}

func (s *Server) viewState() ViewState {
	px, py := s.view.PanOffset()
	cw, ch := s.view.CanvasSize()
	c := s.editor.Cache()
	return ViewState{
		Zoom:         s.view.Zoom(),
		PanX:         px,
		PanY:         py,
		CanvasWidth:  cw,
		CanvasHeight: ch,
		Visible:      toRect(s.view.VisibleImageRect()),
		Rendered:     toRect(c.RenderedRegion()),
		Incremental:  c.IsLarge(),
	}
}

func (s *Server) editorState(changed bool) *EditorState {
	st := s.editor.Store()
	return &EditorState{
		Loaded:  st.HasImage(),
		Width:   st.Width(),
		Height:  st.Height(),
		Changed: changed,
		Tool:    s.tools.State(),
		History: s.editor.HistoryStatus(),
		View:    s.viewState(),
	}
}

func (s *Server) requireImage() error {
	if !s.editor.HasImage() {
		return raster.ErrNoImage
	}
	return nil
}

// === Session Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleEditorLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if err := s.editor.Load(a.Path); err != nil {
		return nil, err
	}
	s.view.FitToScreen()
	s.editor.ViewChanged()
	return s.editorState(true), nil
}

func (s *Server) handleEditorSave(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.editor.Save(a.Path); err != nil {
		return nil, err
	}
	st := s.editor.Store()
	return &FileResult{Path: a.Path, Width: st.Width(), Height: st.Height()}, nil
}

type exportArgs struct {
	Path        string `json:"path"`
	SoftenLevel int    `json:"soften_level"`
}

func (s *Server) handleEditorExport(args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.editor.Export(a.Path, a.SoftenLevel); err != nil {
		return nil, err
	}
	st := s.editor.Store()
	return &FileResult{Path: a.Path, Width: st.Width(), Height: st.Height(), SoftenLevel: a.SoftenLevel}, nil
}

type resizeArgs struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

func (s *Server) handleEditorResize(args json.RawMessage) (interface{}, error) {
	var a resizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.requireImage(); err != nil {
		return nil, err
	}

	st := s.editor.Store()
	w, h := st.Width(), st.Height()
	switch {
	case a.Width != nil && a.Height != nil:
		w, h = *a.Width, *a.Height
	case a.Width != nil:
		w = *a.Width
		h = int(math.Round(float64(w) * float64(st.Height()) / float64(st.Width())))
	case a.Height != nil:
		h = *a.Height
		w = int(math.Round(float64(h) * float64(st.Width()) / float64(st.Height())))
	default:
		return nil, errors.New("width or height is required")
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", w, h)
	}

	changed := s.editor.Resize(w, h)
	if changed {
		s.view.FitToScreen()
		s.editor.ViewChanged()
	}
	return s.editorState(changed), nil
}

type upscaleArgs struct {
	Model string `json:"model"`
	Scale int    `json:"scale"`
}

func (s *Server) handleEditorUpscale(args json.RawMessage) (interface{}, error) {
	var a upscaleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	model := upscale.RealESRGANx4
	if a.Model != "" {
		m, err := upscale.ParseModel(a.Model)
		if err != nil {
			return nil, err
		}
		model = m
	}
	if a.Scale == 0 {
		a.Scale = model.NativeScale()
	}

	if err := s.editor.Upscale(context.Background(), s.upscaler, model, a.Scale); err != nil {
		return nil, err
	}
	s.view.FitToScreen()
	s.editor.ViewChanged()
	return s.editorState(true), nil
}

func (s *Server) handleEditorInfo() (interface{}, error) {
	info, err := s.editor.Store().Info()
	if err != nil {
		return nil, err
	}
	return &InfoResult{
		ImageInfo:   info,
		SoftenLevel: s.editor.EdgeSoftening(),
		Tool:        s.tools.State(),
		History:     s.editor.HistoryStatus(),
		View:        s.viewState(),
	}, nil
}

type sampleColorArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleEditorSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.editor.Store().SampleColor(a.X, a.Y)
}

// === Tool and Stroke Handlers ===

type toolConfigureArgs struct {
	Tool      *string  `json:"tool"`
	Diameter  *int     `json:"diameter"`
	Tolerance *int     `json:"tolerance"`
	Hardness  *float64 `json:"hardness"`
}

func (s *Server) handleToolConfigure(args json.RawMessage) (interface{}, error) {
	var a toolConfigureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Tool != nil {
		t, err := tools.ParseTool(*a.Tool)
		if err != nil {
			return nil, err
		}
		s.tools.SetTool(t)
	}
	if a.Diameter != nil {
		s.tools.SetDiameter(*a.Diameter)
	}
	if a.Tolerance != nil {
		s.tools.SetTolerance(*a.Tolerance)
	}
	if a.Hardness != nil {
		s.tools.SetHardness(*a.Hardness)
	}
	return s.tools.State(), nil
}

type pointerArgs struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Screen bool `json:"screen"`
}

func (a pointerArgs) point(s *Server) image.Point {
	p := image.Point{X: a.X, Y: a.Y}
	if a.Screen {
		p = s.view.ScreenToImage(p)
	}
	return p
}

func (s *Server) pointerResult(handled bool, p image.Point) *PointerResult {
	return &PointerResult{
		Handled: handled,
		Drawing: s.editor.Drawing(),
		X:       p.X,
		Y:       p.Y,
		Tool:    s.tools.Tool().String(),
		History: s.editor.HistoryStatus(),
	}
}

func (s *Server) handlePointerDown(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.requireImage(); err != nil {
		return nil, err
	}
	p := a.point(s)
	return s.pointerResult(s.editor.PointerDown(p), p), nil
}

func (s *Server) handlePointerMove(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p := a.point(s)
	return s.pointerResult(s.editor.PointerMove(p), p), nil
}

func (s *Server) handlePointerUp() (interface{}, error) {
	return s.pointerResult(s.editor.PointerUp(), image.Point{}), nil
}

type strokeArgs struct {
	Points []struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"points"`
	Tool string `json:"tool"`
}

func (s *Server) handleEditorStroke(args json.RawMessage) (interface{}, error) {
	var a strokeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.requireImage(); err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return nil, errors.New("points must not be empty")
	}
	if s.editor.Drawing() {
		return nil, errors.New("a stroke is already in progress")
	}

	changed, err := s.runStroke(a)
	if err != nil {
		return nil, err
	}
	return s.editorState(changed), nil
}

// runStroke drives one complete stroke, with a.Tool (if set) active only
// for its duration.
func (s *Server) runStroke(a strokeArgs) (bool, error) {
	if a.Tool != "" {
		t, err := tools.ParseTool(a.Tool)
		if err != nil {
			return false, err
		}
		prev := s.tools.Tool()
		s.tools.SetTool(t)
		defer s.tools.SetTool(prev)
	}
	if s.tools.Tool() == tools.SeededColorRemoval {
		return false, errors.New("editor_stroke requires the erase or repair tool")
	}

	first := image.Point{X: a.Points[0].X, Y: a.Points[0].Y}
	if !s.editor.PointerDown(first) {
		return false, nil
	}
	for _, p := range a.Points[1:] {
		s.editor.PointerMove(image.Point{X: p.X, Y: p.Y})
	}
	s.editor.PointerUp()
	return true, nil
}

type selectArgs struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Tolerance *int `json:"tolerance"`
}

func (s *Server) handleEditorSelect(args json.RawMessage) (interface{}, error) {
	var a selectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.requireImage(); err != nil {
		return nil, err
	}
	if s.editor.Drawing() {
		return nil, errors.New("a stroke is in progress")
	}

	prev := s.tools.State()
	s.tools.SetTool(tools.SeededColorRemoval)
	if a.Tolerance != nil {
		s.tools.SetTolerance(*a.Tolerance)
	}
	changed := s.editor.PointerDown(image.Point{X: a.X, Y: a.Y})
	s.tools.SetTool(prev.Tool)
	s.tools.SetTolerance(prev.Tolerance)

	return s.editorState(changed), nil
}

// === History Handlers ===

func (s *Server) handleHistoryStep(step func() bool) (interface{}, error) {
	changed := step()
	if changed {
		s.editor.ViewChanged()
	}
	return s.editorState(changed), nil
}

// === View Handlers ===

type viewSetArgs struct {
	Zoom         *float64 `json:"zoom"`
	PanX         *float64 `json:"pan_x"`
	PanY         *float64 `json:"pan_y"`
	CanvasWidth  *int     `json:"canvas_width"`
	CanvasHeight *int     `json:"canvas_height"`
	Action       string   `json:"action"`
	AnchorX      int      `json:"anchor_x"`
	AnchorY      int      `json:"anchor_y"`
}

func (s *Server) handleViewSet(args json.RawMessage) (interface{}, error) {
	var a viewSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.CanvasWidth != nil || a.CanvasHeight != nil {
		cw, ch := s.view.CanvasSize()
		if a.CanvasWidth != nil {
			cw = *a.CanvasWidth
		}
		if a.CanvasHeight != nil {
			ch = *a.CanvasHeight
		}
		s.view.SetCanvasSize(cw, ch)
	}
	if a.Zoom != nil {
		s.view.SetZoom(*a.Zoom)
	}
	if a.PanX != nil || a.PanY != nil {
		px, py := s.view.PanOffset()
		if a.PanX != nil {
			px = *a.PanX
		}
		if a.PanY != nil {
			py = *a.PanY
		}
		s.view.SetPan(px, py)
	}

	anchor := image.Point{X: a.AnchorX, Y: a.AnchorY}
	switch a.Action {
	case "":
	case "zoom_in":
		s.view.ZoomIn()
	case "zoom_out":
		s.view.ZoomOut()
	case "wheel_in":
		s.view.ZoomAt(anchor, true)
	case "wheel_out":
		s.view.ZoomAt(anchor, false)
	default:
		return nil, fmt.Errorf("unknown view action: %s", a.Action)
	}

	s.editor.ViewChanged()
	return s.viewState(), nil
}

func (s *Server) handleViewFit() (interface{}, error) {
	if err := s.requireImage(); err != nil {
		return nil, err
	}
	s.view.FitToScreen()
	s.editor.ViewChanged()
	return s.viewState(), nil
}

type viewRenderArgs struct {
	MaxDimension int `json:"max_dimension"`
}

func (s *Server) handleViewRender(args json.RawMessage) (interface{}, error) {
	var a viewRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.requireImage(); err != nil {
		return nil, err
	}

	visible := s.view.VisibleImageRect()
	if visible.Empty() {
		return nil, errors.New("the image is not visible in the current view")
	}
	s.editor.ViewChanged()

	zoom := s.view.Zoom()
	out := imaging.Crop(s.editor.Display(), visible)
	w := max(1, int(math.Round(float64(visible.Dx())*zoom)))
	h := max(1, int(math.Round(float64(visible.Dy())*zoom)))
	if w != visible.Dx() || h != visible.Dy() {
		filter := imaging.Lanczos
		if zoom > 1 {
			filter = imaging.NearestNeighbor
		}
		out = imaging.Resize(out, w, h, filter)
	}
	if a.MaxDimension > 0 && (w > a.MaxDimension || h > a.MaxDimension) {
		out = imaging.Fit(out, a.MaxDimension, a.MaxDimension, imaging.Lanczos)
	}

	enc, err := raster.EncodeBase64PNG(out)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"image":   enc,
		"visible": toRect(visible),
		"zoom":    zoom,
	}, nil
}

type edgeSoftenArgs struct {
	Level int `json:"level"`
}

func (s *Server) handleEdgeSoften(args json.RawMessage) (interface{}, error) {
	var a edgeSoftenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.editor.SetEdgeSoftening(a.Level)
	return map[string]interface{}{
		"soften_level": s.editor.EdgeSoftening(),
	}, nil
}
