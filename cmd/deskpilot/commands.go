package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/v0xg/deskpilot/internal/computer"
	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/executor"
	"github.com/v0xg/deskpilot/internal/keyboard"
	"github.com/v0xg/deskpilot/internal/keys"
	"github.com/v0xg/deskpilot/internal/mcp"
	"github.com/v0xg/deskpilot/internal/resolver"
)

// targetFlags binds the keyword form of a target to a command.
type targetFlags struct {
	x, y       int
	text, icon string
}

func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&t.x, "x", 0, "Absolute x coordinate (use together with --y)")
	cmd.Flags().IntVar(&t.y, "y", 0, "Absolute y coordinate (use together with --x)")
	cmd.Flags().StringVar(&t.text, "text", "", "Visible text to find")
	cmd.Flags().StringVar(&t.icon, "icon", "", "Description of an icon to find")
}

func (t *targetFlags) selector(cmd *cobra.Command) resolver.Selector {
	sel := resolver.Selector{Text: t.text, Icon: t.icon}
	if cmd.Flags().Changed("x") {
		sel.X = &t.x
	}
	if cmd.Flags().Changed("y") {
		sel.Y = &t.y
	}
	return sel
}

// step runs fn between the "→ label... " and "done"/"failed" console markers.
func step(label string, fn func() (string, error)) error {
	fmt.Printf("→ %s... ", label)
	detail, err := fn()
	if err != nil {
		fmt.Println("failed")
		return err
	}
	if detail != "" {
		fmt.Printf("done (%s)\n", detail)
	} else {
		fmt.Println("done")
	}
	return nil
}

func typeCmd() *cobra.Command {
	var interval int
	cmd := &cobra.Command{
		Use:   "type <text>",
		Short: "Type text into the focused element; \"-\" reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]
			if text == "-" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return step(fmt.Sprintf("Typing %d characters", len([]rune(text))), func() (string, error) {
				return "", s.computer.Keyboard.Write(text, keyboard.WriteOptions{
					Interval: time.Duration(interval) * time.Millisecond,
				})
			})
		},
	}
	cmd.Flags().IntVar(&interval, "interval", 0, "Type character by character with this many ms between characters")
	return cmd
}

func pressCmd() *cobra.Command {
	var presses, interval int
	cmd := &cobra.Command{
		Use:   "press <key>...",
		Short: "Tap keys in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return step(fmt.Sprintf("Pressing %v", args), func() (string, error) {
				return "", s.computer.Keyboard.Press(args, presses, time.Duration(interval)*time.Millisecond)
			})
		},
	}
	cmd.Flags().IntVar(&presses, "presses", 1, "Number of times to repeat")
	cmd.Flags().IntVar(&interval, "interval", int(keys.DefaultInterval/time.Millisecond), "Delay between taps (ms)")
	return cmd
}

func hotkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "hotkey <key>...",
		Short:   "Press a key combination",
		Example: "  deskpilot hotkey ctrl shift t",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return step(fmt.Sprintf("Sending %v", args), func() (string, error) {
				return "", s.computer.Keyboard.Hotkey(args...)
			})
		},
	}
}

func moveCmd() *cobra.Command {
	var target targetFlags
	cmd := &cobra.Command{
		Use:   "move [text]",
		Short: "Move the pointer to text, an icon or coordinates",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := resolver.Require(args, target.selector(cmd))
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return step("Moving to "+q.String(), func() (string, error) {
				t, err := s.computer.Mouse.Move(cmd.Context(), q)
				if err != nil {
					s.saveFailure("move", err)
					return "", err
				}
				s.saveAnnotated("move", t.Annotated)
				return fmt.Sprintf("%d, %d", t.Point.X, t.Point.Y), nil
			})
		},
	}
	target.register(cmd)
	return cmd
}

func clickCmd(name, short string, clicks int, button string) *cobra.Command {
	var target targetFlags
	var interval int
	var clickButton string
	cmd := &cobra.Command{
		Use:   name + " [text]",
		Short: short + "; with no target, at the current position",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := resolver.FromArgs(args, target.selector(cmd))
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			label := "Clicking"
			if !q.IsZero() {
				label += " " + q.String()
			}
			return step(label, func() (string, error) {
				t, err := s.computer.Mouse.Click(cmd.Context(), q, computer.ClickOptions{
					Button:   clickButton,
					Clicks:   clicks,
					Interval: time.Duration(interval) * time.Millisecond,
				})
				if err != nil {
					s.saveFailure(name, err)
					return "", err
				}
				s.saveAnnotated(name, t.Annotated)
				return fmt.Sprintf("%d, %d", t.Point.X, t.Point.Y), nil
			})
		},
	}
	target.register(cmd)
	if button == "" {
		button = desktop.ButtonLeft
	}
	cmd.Flags().StringVar(&clickButton, "button", button, "Mouse button: left, right, middle")
	cmd.Flags().IntVar(&interval, "interval", 0, "Delay between clicks (ms)")
	return cmd
}

func scrollCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "scroll <clicks>",
		Short:   "Scroll the mouse wheel; positive scrolls up",
		Example: "  deskpilot scroll -- -10",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clicks, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid scroll amount %q: %w", args[0], err)
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return step(fmt.Sprintf("Scrolling %d", clicks), func() (string, error) {
				return "", s.computer.Mouse.Scroll(clicks)
			})
		},
	}
}

func positionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position",
		Short: "Print the pointer position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.computer.Mouse.Position()
			if err != nil {
				return err
			}
			fmt.Printf("%d %d\n", p.X, p.Y)
			return nil
		},
	}
}

func doCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "do <file>",
		Short: "Run a JSON or YAML list of actions; \"-\" reads stdin",
		Long: `Run a batch of actions in one browser session. Execution stops at the first
failing step. Each step is an object with an "action" (type, press, hotkey,
key_down, key_up, move, click, double_click, triple_click, right_click, scroll,
mouse_down, mouse_up, position, wait) and its fields, for example:

  - action: click
    text: Sign in
  - action: type
    text: "me@example.com\n"
  - action: scroll
    amount: -5
    wait: 500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read batch: %w", err)
			}
			actions, err := executor.ParseActions(data)
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := runBatch(cmd.Context(), os.Stdout, s.computer, actions, asJSON)
			for _, st := range result.Steps {
				s.saveAnnotated(fmt.Sprintf("step%02d-%s", st.Index+1, st.Action), st.Annotated)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print step results as JSON")
	return cmd
}

// runBatch executes actions and reports to out. With asJSON, out carries
// only the encoded result.
func runBatch(ctx context.Context, out io.Writer, c *computer.Computer, actions []executor.Action, asJSON bool) (*executor.Result, error) {
	if !asJSON {
		fmt.Fprintf(out, "→ Running %d actions...\n", len(actions))
	}
	result, runErr := executor.Execute(ctx, c, actions, executor.Options{
		Out:     out,
		Verbose: !asJSON,
	})
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return result, err
		}
	}
	if runErr != nil {
		return result, runErr
	}
	if !asJSON {
		fmt.Fprintf(out, "✓ Completed %d actions\n", len(result.Steps))
	}
	return result, nil
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve keyboard and mouse tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			server, err := mcp.NewServer(s.computer, mcp.Options{Logger: s.logger})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return server.Run(ctx)
		},
	}
}
