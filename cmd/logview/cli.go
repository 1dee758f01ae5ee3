package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

type cliConfig struct {
	paths          []string
	width          int
	theme          string
	enableMarkdown bool
}

func usage(binary string) string {
	return fmt.Sprintf(
		"Usage: %s [--width N] [--theme dark|light] [--markdown=true|false] <transcript.json|stream.log> [more ...]",
		binary,
	)
}

func parseCLIArgs(args []string) (cliConfig, error) {
	cfg := cliConfig{
		theme:          "dark",
		enableMarkdown: true,
	}

	fs := flag.NewFlagSet("logview", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVar(&cfg.width, "width", 0, "render width (0 = terminal width)")
	fs.StringVar(&cfg.theme, "theme", cfg.theme, "color theme")
	fs.BoolVar(&cfg.enableMarkdown, "markdown", cfg.enableMarkdown, "enable markdown rendering")

	plain := fs.Bool("plain", false, "alias for --markdown=false")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *plain {
		cfg.enableMarkdown = false
	}

	if cfg.width == 0 {
		cfg.width = detectWidth()
	}
	if cfg.width <= 0 {
		return cfg, errors.New("--width must be > 0")
	}

	cfg.paths = fs.Args()
	if len(cfg.paths) == 0 {
		return cfg, errors.New("missing transcript or stream log path")
	}
	return cfg, nil
}

// detectWidth asks the terminal. Piped output has no terminal, so fall
// back to a fixed width.
func detectWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}
