// Package mcp exposes the keyboard and mouse to an agent over the Model
// Context Protocol.
package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/v0xg/deskpilot/internal/computer"
)

const (
	ServerName    = "deskpilot"
	ServerVersion = "0.1.0"
)

// Options configures a Server.
type Options struct {
	Logger *slog.Logger
}

// Server is the MCP server for desktop input.
type Server struct {
	mcpServer *mcpsdk.Server
	computer  *computer.Computer
	logger    *slog.Logger

	// mu serializes tool calls; the clipboard and pointer are shared.
	mu sync.Mutex
}

// NewServer creates a new MCP server driving c.
func NewServer(c *computer.Computer, opts Options) (*Server, error) {
	if c == nil {
		return nil, errors.New("mcp: computer is required")
	}
	s := &Server{
		computer: c,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "type_text",
		Description: "Type text into the focused application. Text is pasted through the clipboard, which is restored afterwards, so any Unicode is typed exactly. A trailing newline presses Enter.",
	}, s.handleTypeText)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "press_keys",
		Description: "Tap one or more keys in order, optionally repeated.",
	}, s.handlePressKeys)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hotkey",
		Description: "Press a key combination: keys go down in order and are released in reverse order.",
	}, s.handleHotkey)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_mouse",
		Description: "Move the pointer to visible text, an icon, or explicit coordinates. Finding text or icons is significantly more accurate than coordinates. If the target matches several places, nothing moves and the candidates are returned; call again with the x and y of the one you want.",
	}, s.handleMove)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "click",
		Description: "Click on visible text, an icon, or explicit coordinates; with no target, click at the current pointer position. Ambiguous targets return the candidates instead of clicking.",
	}, s.handleClick)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scroll",
		Description: "Scroll the mouse wheel. Scroll down (negative clicks) when a target was not found but should exist.",
	}, s.handleScroll)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "mouse_position",
		Description: "Report the current pointer position in pixels.",
	}, s.handlePosition)
}
