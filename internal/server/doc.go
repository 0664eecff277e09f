// Package server implements the MCP (Model Context Protocol) server for the
// background eraser.
//
// The server owns one editing session: a single image, its undo history, the
// active tool and a virtual canvas with pan and zoom. MCP clients drive the
// session the way a user would drive the desktop editor, by configuring a
// tool and sending pointer events.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
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
//   - editor_load, editor_save, editor_export
//   - editor_resize, editor_upscale
//   - editor_info, editor_sample_color
//
// Tools and strokes:
//   - tool_configure: Select color_remove, erase or repair and set diameter,
//     tolerance and hardness
//   - pointer_down, pointer_move, pointer_up: Raw pointer events
//   - editor_stroke: A whole brush stroke in one call
//   - editor_select: Seeded color removal at a point
//
// History:
//   - history_undo, history_redo, history_status
//
// View:
//   - view_set, view_fit, view_render, editor_edge_soften
//
// # Progress
//
// When a tools/call request carries params._meta.progressToken, long
// operations (upscaling) emit notifications/progress messages with
// progress 0-100 before the response.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Editing operations that have nothing to do (a stroke outside the image,
// undo with no history) are not errors; their result reports changed=false.
//
// # Usage
//
//	srv := server.New(server.Options{Config: cfg, Logger: logger})
//	if err := srv.Run(); err != nil {
//	    logger.Fatal(err)
//	}
package server
