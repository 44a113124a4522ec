package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/pixel-pictures-mcp/internal/api"
	"github.com/ironsheep/pixel-pictures-mcp/internal/editor"
	"github.com/ironsheep/pixel-pictures-mcp/internal/pixel"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "set_height", "pointer_down").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithField("tool", params.Name).WithError(err).Debug("tool failed")
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

// executeTool dispatches one gesture to the current session.
//
// Missing arguments decode as an empty object so tools without parameters
// can be called with no "arguments" member.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Session
	case "editor_state":
		return s.Session().State(), nil
	case "new_picture":
		return s.handleNewPicture()
	case "open_picture":
		return s.handleOpenPicture(args)

	// Sizing
	case "set_height":
		return s.handleSetDimension(ctx, args, true)
	case "set_width":
		return s.handleSetDimension(ctx, args, false)
	case "select_source":
		return s.handleSelectSource(ctx, args)
	case "sample_pick":
		return s.handleSamplePick(args)
	case "start_drawing":
		return s.handleStartDrawing(ctx)

	// Drawing
	case "pointer_down":
		return s.handlePointerDown(args)
	case "pointer_over":
		return s.handlePointerOver(args)
	case "pointer_up":
		s.Session().PointerUp()
		return map[string]bool{"dragging": false}, nil
	case "double_click":
		return s.handleDoubleClick(args)
	case "resize":
		return s.handleResize(args)
	case "grid_rows":
		return s.handleGridRows(args)
	case "render_png":
		return s.handleRenderPNG(args)

	// Palette
	case "palette_add":
		return s.handlePaletteColor(args, (*editor.Session).AddColor)
	case "palette_click":
		return s.handlePaletteColor(args, (*editor.Session).ClickSwatch)
	case "pick_color":
		return s.handlePaletteColor(args, (*editor.Session).PickColor)
	case "palette_toggle_remove":
		return map[string]bool{"remove_mode": s.Session().ToggleRemoveMode()}, nil
	case "palette_nearest":
		return s.handlePaletteNearest(args)
	case "dominant_colors":
		return s.handleDominantColors(args)

	// Tags and visibility
	case "tag_add":
		return s.handleTagAdd(args)
	case "tag_remove":
		return s.handleTagRemove(args)
	case "toggle_public":
		return map[string]bool{"public": s.Session().TogglePublic()}, nil

	// Persistence
	case "save":
		return s.handleSave(ctx)
	case "delete":
		return s.handleDelete(ctx)
	case "download":
		return s.handleDownload(ctx, args)

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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// colorResult reports a color in both display notations.
type colorResult struct {
	Hex string `json:"hex"`
	RGB string `json:"rgb"`
}

func newColorResult(c pixel.Color) colorResult {
	return colorResult{Hex: c.Hex(), RGB: c.RGB()}
}

// changeResult reports a request whose outcome may have been superseded by
// a later gesture.
type changeResult struct {
	State     editor.State `json:"state"`
	Discarded bool         `json:"discarded,omitempty"`
}

// settle turns a stale-result error into a normal response; every other
// error is returned as is.
func (s *Server) settle(err error) (interface{}, error) {
	if errors.Is(err, editor.ErrStale) {
		return changeResult{State: s.Session().State(), Discarded: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return changeResult{State: s.Session().State()}, nil
}

// === Session Handlers ===

func (s *Server) handleNewPicture() (interface{}, error) {
	session := editor.New(s.svc, s.log)
	s.replaceSession(session)
	return session.State(), nil
}

type openPictureArgs struct {
	Key     api.Key       `json:"key"`
	Image   *pixel.Grid   `json:"image"`
	Palette []pixel.Color `json:"palette"`
	Tags    []string      `json:"tags"`
	Public  bool          `json:"public"`
}

func (s *Server) handleOpenPicture(args json.RawMessage) (interface{}, error) {
	var a openPictureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session, err := editor.Open(s.svc, s.log, a.Key, a.Image, a.Palette, a.Tags, a.Public)
	if err != nil {
		return nil, err
	}
	s.replaceSession(session)
	return session.State(), nil
}

// === Sizing Handlers ===

type dimensionArgs struct {
	Value int `json:"value"`
}

func (s *Server) handleSetDimension(ctx context.Context, args json.RawMessage, height bool) (interface{}, error) {
	var a dimensionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session := s.Session()
	if height {
		return s.settle(session.SetHeight(ctx, a.Value))
	}
	return s.settle(session.SetWidth(ctx, a.Value))
}

type selectSourceArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleSelectSource(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a selectSourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	src, err := s.openSource(a.Path)
	if err != nil {
		return nil, err
	}
	return s.settle(s.Session().SelectSource(ctx, src))
}

type cellArgs struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s *Server) handleSamplePick(args json.RawMessage) (interface{}, error) {
	var a cellArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := s.Session().PickSampleColor(a.Row, a.Col)
	if err != nil {
		return nil, err
	}
	return newColorResult(c), nil
}

func (s *Server) handleStartDrawing(ctx context.Context) (interface{}, error) {
	return s.settle(s.Session().StartDrawing(ctx))
}

// === Drawing Handlers ===

func (s *Server) handlePointerDown(args json.RawMessage) (interface{}, error) {
	var a cellArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.Session().PointerDown(a.Row, a.Col); err != nil {
		return nil, err
	}
	return map[string]bool{"painted": true, "dragging": true}, nil
}

func (s *Server) handlePointerOver(args json.RawMessage) (interface{}, error) {
	var a cellArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session := s.Session()
	painted, err := session.PointerOver(a.Row, a.Col)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"painted": painted, "dragging": session.Dragging()}, nil
}

func (s *Server) handleDoubleClick(args json.RawMessage) (interface{}, error) {
	var a cellArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.Session().DoubleClick(a.Row, a.Col); err != nil {
		return nil, err
	}
	return map[string]bool{"cleared": true}, nil
}

type resizeArgs struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

func (s *Server) handleResize(args json.RawMessage) (interface{}, error) {
	var a resizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.Session().Resize(a.Height, a.Width); err != nil {
		return nil, err
	}
	return s.Session().State(), nil
}

type gridRowsArgs struct {
	Layer  string `json:"layer,omitempty"`
	Format string `json:"format,omitempty"`
}

// GridRowsResult holds the cells of the drawing or the sample.
type GridRowsResult struct {
	Layer  string        `json:"layer"`
	Height int           `json:"height"`
	Width  int           `json:"width"`
	Rows   []interface{} `json:"rows"`
}

func (s *Server) handleGridRows(args json.RawMessage) (interface{}, error) {
	var a gridRowsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Layer == "" {
		a.Layer = "drawing"
	}
	if a.Format == "" {
		a.Format = "hex"
	}

	grid, err := s.layer(a.Layer)
	if err != nil {
		return nil, err
	}

	result := &GridRowsResult{Layer: a.Layer, Height: grid.Height(), Width: grid.Width()}
	for _, row := range grid.Rows() {
		switch a.Format {
		case "hex":
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = c.Hex()
			}
			result.Rows = append(result.Rows, cells)
		case "rgb":
			result.Rows = append(result.Rows, row)
		default:
			return nil, fmt.Errorf("unknown format %q (want hex or rgb)", a.Format)
		}
	}
	return result, nil
}

// layer returns a copy of the drawing or the sample.
func (s *Server) layer(name string) (*pixel.Grid, error) {
	session := s.Session()
	var grid *pixel.Grid
	switch name {
	case "drawing":
		grid = session.Grid()
	case "sample":
		grid = session.Sample()
	default:
		return nil, fmt.Errorf("unknown layer %q (want drawing or sample)", name)
	}
	if grid == nil {
		return nil, fmt.Errorf("%w: no %s yet", editor.ErrPhase, name)
	}
	return grid, nil
}

type renderPNGArgs struct {
	Layer     string `json:"layer,omitempty"`
	Path      string `json:"path,omitempty"`
	CellSize  int    `json:"cell_size,omitempty"`
	GridLines bool   `json:"grid_lines,omitempty"`
	Numbers   bool   `json:"numbers,omitempty"`
	LineColor string `json:"line_color,omitempty"`
}

// RenderResult describes a rendered picture. ImageBase64 is set when no
// output path was given.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Path        string `json:"path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleRenderPNG(args json.RawMessage) (interface{}, error) {
	var a renderPNGArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Layer == "" {
		a.Layer = "drawing"
	}
	if a.CellSize == 0 {
		a.CellSize = 20
	}
	line := pixel.Black
	if a.LineColor != "" {
		c, err := pixel.ParseColor(a.LineColor)
		if err != nil {
			return nil, err
		}
		line = c
	}

	grid, err := s.layer(a.Layer)
	if err != nil {
		return nil, err
	}

	var img *image.NRGBA
	if a.GridLines || a.Numbers {
		img = pixel.RenderWithGrid(grid, pixel.GridOptions{CellSize: a.CellSize, LineColor: line, Numbers: a.Numbers})
	} else {
		img = pixel.Render(grid, a.CellSize)
	}

	result := &RenderResult{
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		MimeType: "image/png",
	}
	if a.Path != "" {
		if err := pixel.SavePNG(a.Path, img); err != nil {
			return nil, err
		}
		result.Path = a.Path
		return result, nil
	}

	data, err := pixel.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	result.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	return result, nil
}

// === Palette Handlers ===

type colorArgs struct {
	Color string `json:"color"`
}

func (a colorArgs) parse() (pixel.Color, error) {
	if a.Color == "" {
		return pixel.Color{}, errors.New("color is required")
	}
	return pixel.ParseColor(a.Color)
}

// PaletteResult is the palette after a palette gesture.
type PaletteResult struct {
	Colors     []string `json:"colors"`
	Active     string   `json:"active"`
	RemoveMode bool     `json:"remove_mode"`
}

func (s *Server) handlePaletteColor(args json.RawMessage, gesture func(*editor.Session, pixel.Color)) (interface{}, error) {
	var a colorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := a.parse()
	if err != nil {
		return nil, err
	}

	session := s.Session()
	gesture(session, c)

	st := session.State()
	result := &PaletteResult{
		Colors:     make([]string, len(st.Palette)),
		Active:     st.Active.Hex(),
		RemoveMode: st.RemoveMode,
	}
	for i, pc := range st.Palette {
		result.Colors[i] = pc.Hex()
	}
	return result, nil
}

func (s *Server) handlePaletteNearest(args json.RawMessage) (interface{}, error) {
	var a colorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := a.parse()
	if err != nil {
		return nil, err
	}
	return newColorResult(s.Session().NearestPaletteColor(c)), nil
}

type dominantColorsArgs struct {
	Layer string `json:"layer,omitempty"`
	Count int    `json:"count,omitempty"`
	Add   bool   `json:"add,omitempty"`
}

// DominantColorsResult lists the most common colors of a grid.
type DominantColorsResult struct {
	Layer   string             `json:"layer"`
	Colors  []pixel.ColorShare `json:"colors"`
	Palette []string           `json:"palette,omitempty"`
}

func (s *Server) handleDominantColors(args json.RawMessage) (interface{}, error) {
	var a dominantColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Layer == "" {
		a.Layer = "sample"
	}
	if a.Count == 0 {
		a.Count = 5
	}

	grid, err := s.layer(a.Layer)
	if err != nil {
		return nil, err
	}

	result := &DominantColorsResult{Layer: a.Layer, Colors: grid.DominantColors(a.Count)}
	if a.Add {
		session := s.Session()
		for _, share := range result.Colors {
			session.AddColor(share.Color)
		}
		for _, c := range session.State().Palette {
			result.Palette = append(result.Palette, c.Hex())
		}
	}
	return result, nil
}

// === Tag Handlers ===

type tagArgs struct {
	Tag string `json:"tag"`
}

// TagsResult reports the tag list after a tag gesture.
type TagsResult struct {
	Tag     string   `json:"tag"`
	Changed bool     `json:"changed"`
	Tags    []string `json:"tags"`
}

func (s *Server) handleTagAdd(args json.RawMessage) (interface{}, error) {
	var a tagArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session := s.Session()
	tag, added := session.AddTag(a.Tag)
	return &TagsResult{Tag: tag, Changed: added, Tags: session.Tags()}, nil
}

func (s *Server) handleTagRemove(args json.RawMessage) (interface{}, error) {
	var a tagArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session := s.Session()
	removed := session.RemoveTag(a.Tag)
	return &TagsResult{Tag: a.Tag, Changed: removed, Tags: session.Tags()}, nil
}

// === Persistence Handlers ===

// MessageResult carries a service message for display.
type MessageResult struct {
	Key     api.Key `json:"key,omitempty"`
	Message string  `json:"message"`
}

func (s *Server) handleSave(ctx context.Context) (interface{}, error) {
	session := s.Session()
	msg, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}
	return &MessageResult{Key: session.Key(), Message: msg}, nil
}

func (s *Server) handleDelete(ctx context.Context) (interface{}, error) {
	msg, err := s.Session().Delete(ctx)
	if err != nil {
		return nil, err
	}
	return &MessageResult{Message: msg}, nil
}

type downloadArgs struct {
	StartRow  *int   `json:"start_row,omitempty"`
	StartCol  *int   `json:"start_col,omitempty"`
	DirRows   string `json:"dir_rows,omitempty"`
	DirCols   string `json:"dir_cols,omitempty"`
	GridColor string `json:"grid_color,omitempty"`
	SizeCell  int    `json:"size_cell,omitempty"`
	Step      int    `json:"step,omitempty"`
	Path      string `json:"path,omitempty"`
}

// DownloadResult describes an export render. Source is omitted when the
// render was written to Path.
type DownloadResult struct {
	Source string `json:"source,omitempty"`
	Path   string `json:"path,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (s *Server) handleDownload(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a downloadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	req := api.DownloadRequest{
		StartRow:  1,
		StartCol:  1,
		DirRows:   api.RowsTopToBottom,
		DirCols:   api.ColsLeftToRight,
		GridColor: pixel.Black,
		SizeCell:  20,
		Step:      1,
	}
	if a.StartRow != nil {
		req.StartRow = *a.StartRow
	}
	if a.StartCol != nil {
		req.StartCol = *a.StartCol
	}
	switch a.DirRows {
	case "":
	case api.RowsTopToBottom, api.RowsBottomToTop:
		req.DirRows = a.DirRows
	default:
		return nil, fmt.Errorf("dir_rows must be %q or %q", api.RowsTopToBottom, api.RowsBottomToTop)
	}
	switch a.DirCols {
	case "":
	case api.ColsLeftToRight, api.ColsRightToLeft:
		req.DirCols = a.DirCols
	default:
		return nil, fmt.Errorf("dir_cols must be %q or %q", api.ColsLeftToRight, api.ColsRightToLeft)
	}
	if a.GridColor != "" {
		c, err := pixel.ParseColor(a.GridColor)
		if err != nil {
			return nil, err
		}
		req.GridColor = c
	}
	if a.SizeCell > 0 {
		req.SizeCell = a.SizeCell
	}
	if a.Step > 0 {
		req.Step = a.Step
	}

	source, err := s.Session().Download(ctx, req)
	if err != nil {
		return nil, err
	}
	if a.Path == "" {
		return &DownloadResult{Source: source}, nil
	}

	img, err := api.DecodeDataURI(source)
	if err != nil {
		return nil, err
	}
	if err := pixel.SavePNG(a.Path, img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &DownloadResult{Path: a.Path, Width: b.Dx(), Height: b.Dy()}, nil
}
