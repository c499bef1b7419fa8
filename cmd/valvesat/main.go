// Command valvesat runs the valve saturator offline, analyses its voicings
// and plays audio through it in real time.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/cwbudde/valvesat/internal/cli"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Config   kong.ConfigFlag `short:"c" help:"Load flag defaults from a JSON file."`
	Version  versionFlag     `short:"v" help:"Show version information."`
	DebugLog string          `name:"debug-log" type:"path" help:"Write debug logs to this file."`

	Render  renderCmd  `cmd:"" help:"Process a WAV file offline."`
	Analyze analyzeCmd `cmd:"" help:"Report the harmonic profile of each mode."`
	Latency latencyCmd `cmd:"" help:"Print the processing latency of each mode."`
	Play    playCmd    `cmd:"" help:"Play a WAV file or test tone through the saturator."`
}

type versionFlag bool

// BeforeReset prints the version and exits before any command validation.
func (versionFlag) BeforeReset(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(app.Stdout, vars["version"])
	app.Exit(0)
	return nil
}

// runContext is bound to every command's Run method.
type runContext struct {
	ctx         context.Context
	log         *slog.Logger
	stdout      io.Writer
	interactive bool
}

func newParser(c *CLI, opts ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name("valvesat"),
		kong.Description("Valve saturation: offline render, analysis and live playback"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Configuration(kong.JSON),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	}
	return kong.New(c, append(base, opts...)...)
}

func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("debug log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func main() {
	var c CLI
	parser, err := newParser(&c)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger, closeLog, err := openLogger(c.DebugLog)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rc := &runContext{
		ctx:         ctx,
		log:         logger,
		stdout:      os.Stdout,
		interactive: term.IsTerminal(int(os.Stdout.Fd())),
	}
	logger.Debug("start", "command", kctx.Command(), "interactive", rc.interactive, "version", version)

	if err := kctx.Run(rc); err != nil {
		logger.Error("command failed", "err", err)
		cli.PrintError(err.Error())
		stop()
		closeLog()
		os.Exit(1)
	}
}
