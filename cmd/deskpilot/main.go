package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	url         string
	finder      string
	model       string
	clipMode    string
	annotateDir string
	headless    bool
	verbose     bool
	profile     string
	width       int
	height      int
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "deskpilot",
		Short: "Drive keyboard and mouse input toward text and icons found on screen",
		Long: `deskpilot types text through the clipboard, presses keys and hotkeys, and moves
and clicks the pointer on targets located by their visible text or icon.

Targets matching several places are never guessed: the candidates are listed
so you can retry with explicit coordinates.

Example:
  deskpilot --url https://example.com click "More information..."
  deskpilot do steps.yaml`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.config/deskpilot/config.yaml)")
	pf.StringVar(&url, "url", "", "Page to open in the controlled browser")
	pf.StringVar(&finder, "finder", "", "Target finder: dom, claude, openai")
	pf.StringVar(&model, "model", "", "Specific vision model override")
	pf.StringVar(&clipMode, "clipboard", "", "Clipboard backend: page, system")
	pf.StringVar(&annotateDir, "annotate-dir", "", "Save annotated screenshots of resolved targets to this directory")
	pf.BoolVar(&headless, "headless", true, "Run the browser without a window")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress and annotate targets")
	pf.StringVar(&profile, "profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")
	pf.IntVar(&width, "width", 0, "Viewport width")
	pf.IntVar(&height, "height", 0, "Viewport height")

	rootCmd.AddCommand(
		typeCmd(),
		pressCmd(),
		hotkeyCmd(),
		moveCmd(),
		clickCmd("click", "Click on text, an icon or coordinates", 1, ""),
		clickCmd("double-click", "Double-click on text, an icon or coordinates", 2, ""),
		clickCmd("triple-click", "Triple-click on text, an icon or coordinates", 3, ""),
		clickCmd("right-click", "Right-click on text, an icon or coordinates", 1, "right"),
		scrollCmd(),
		positionCmd(),
		doCmd(),
		mcpCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
