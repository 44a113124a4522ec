// Package server drives a pixel-picture editing session over MCP (Model
// Context Protocol).
//
// Each user gesture of the editor, such as setting the height or dragging
// across cells, is exposed as one tool. The server owns a single
// editor.Session and forwards tool calls to it; the session talks to the
// picture service.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session:
//   - editor_state: Snapshot of the session
//   - new_picture: Start over in the sizing phase
//   - open_picture: Modify a saved picture
//
// Sizing:
//   - set_height, set_width: Target dimensions
//   - select_source: Upload a picture to convert
//   - sample_pick: Add a sample cell color to the palette
//   - start_drawing: Convert the sample and begin drawing
//
// Drawing:
//   - pointer_down, pointer_over, pointer_up: Drag painting
//   - double_click: Reset a cell to white
//   - resize: Blank grid of a new size
//   - grid_rows: Read the cells
//   - render_png: Render with square cells, optional grid lines and numbers
//
// Palette:
//   - palette_add, palette_click, palette_toggle_remove
//   - pick_color: Set the active color
//   - palette_nearest: Closest palette color
//   - dominant_colors: Most common colors, optionally added to the palette
//
// Tags and visibility:
//   - tag_add, tag_remove, toggle_public
//
// Persistence:
//   - save, delete, download
//
// Colors are passed as "#rrggbb" or "rgb(r, g, b)". Cell coordinates are
// 0-based with row 0 at the top.
//
// # Superseded Results
//
// Resampling and conversion can be overtaken by a later gesture. The tool
// that started the superseded request still succeeds, with "discarded": true
// in its result, and the session keeps the newer state.
//
// Tools that call the picture service (set_height, set_width, select_source,
// start_drawing, save, delete and download) are answered asynchronously, so
// their responses can arrive after those of later requests. Match responses
// to requests by id.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(client, logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server
