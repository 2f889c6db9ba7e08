package mcp

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/v0xg/deskpilot/internal/computer"
	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/keyboard"
	"github.com/v0xg/deskpilot/internal/keys"
	"github.com/v0xg/deskpilot/internal/resolver"
	"github.com/v0xg/deskpilot/internal/snapshot"
)

func (s *Server) handleTypeText(_ context.Context, _ *mcpsdk.CallToolRequest, args TypeTextInput) (*mcpsdk.CallToolResult, DoneOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := keyboard.WriteOptions{Interval: time.Duration(args.Interval) * time.Millisecond}
	if err := s.computer.Keyboard.Write(args.Text, opts); err != nil {
		s.logger.Warn("type_text failed", "err", err)
		return nil, DoneOutput{}, err
	}
	return nil, DoneOutput{OK: true}, nil
}

func (s *Server) handlePressKeys(_ context.Context, _ *mcpsdk.CallToolRequest, args PressKeysInput) (*mcpsdk.CallToolResult, DoneOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	interval := time.Duration(args.Interval) * time.Millisecond
	if interval == 0 {
		interval = keys.DefaultInterval
	}
	if err := s.computer.Keyboard.Press(args.Keys, args.Presses, interval); err != nil {
		return nil, DoneOutput{}, err
	}
	return nil, DoneOutput{OK: true}, nil
}

func (s *Server) handleHotkey(_ context.Context, _ *mcpsdk.CallToolRequest, args HotkeyInput) (*mcpsdk.CallToolResult, DoneOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.computer.Keyboard.Hotkey(args.Keys...); err != nil {
		return nil, DoneOutput{}, err
	}
	return nil, DoneOutput{OK: true}, nil
}

func (s *Server) handleMove(ctx context.Context, _ *mcpsdk.CallToolRequest, args MoveInput) (*mcpsdk.CallToolResult, PointerOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := resolver.Require(nil, args.selector())
	if err != nil {
		return nil, PointerOutput{}, err
	}
	target, err := s.computer.Mouse.Move(ctx, q)
	return s.pointerResult("Moved", target, err)
}

func (s *Server) handleClick(ctx context.Context, _ *mcpsdk.CallToolRequest, args ClickInput) (*mcpsdk.CallToolResult, PointerOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := resolver.FromArgs(nil, args.selector())
	if err != nil {
		return nil, PointerOutput{}, err
	}
	target, err := s.computer.Mouse.Click(ctx, q, computer.ClickOptions{Button: args.Button, Clicks: args.Clicks})
	return s.pointerResult("Clicked", target, err)
}

func (s *Server) handleScroll(_ context.Context, _ *mcpsdk.CallToolRequest, args ScrollInput) (*mcpsdk.CallToolResult, DoneOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.computer.Mouse.Scroll(args.Clicks); err != nil {
		return nil, DoneOutput{}, err
	}
	return nil, DoneOutput{OK: true}, nil
}

func (s *Server) handlePosition(_ context.Context, _ *mcpsdk.CallToolRequest, _ PositionInput) (*mcpsdk.CallToolResult, PointerOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.computer.Mouse.Position()
	if err != nil {
		return nil, PointerOutput{}, err
	}
	return nil, PointerOutput{X: p.X, Y: p.Y}, nil
}

// pointerResult turns a pointer outcome into a tool result. Not-found and
// ambiguous targets are reported as tool errors with structured details so
// the agent can refine its query; other failures are returned as errors.
func (s *Server) pointerResult(verb string, target resolver.Target, err error) (*mcpsdk.CallToolResult, PointerOutput, error) {
	if err == nil {
		res := &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s at (%d, %d)", verb, target.Point.X, target.Point.Y)},
			},
		}
		s.attachImage(res, target.Annotated)
		return res, PointerOutput{X: target.Point.X, Y: target.Point.Y}, nil
	}

	kind := desktop.Kind(err)
	if kind != "not_found" && kind != "ambiguous" {
		s.logger.Warn("pointer tool failed", "kind", kind, "err", err)
		return nil, PointerOutput{}, err
	}

	out := PointerOutput{Kind: kind}
	res := &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}
	var amb *desktop.AmbiguousError
	if errors.As(err, &amb) {
		out.Candidates = amb.Candidates
		s.attachImage(res, amb.Annotated)
	}
	return res, out, nil
}

func (s *Server) attachImage(res *mcpsdk.CallToolResult, img image.Image) {
	if img == nil {
		return
	}
	data, err := snapshot.EncodePNG(img)
	if err != nil {
		s.logger.Warn("annotated screenshot dropped", "err", err)
		return
	}
	res.Content = append(res.Content, &mcpsdk.ImageContent{Data: data, MIMEType: "image/png"})
}
