package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/porous/pkg/config"
	"github.com/chazu/porous/pkg/ctxlog"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses args, merges the configuration and runs one mesh generation.
func run(outW io.Writer, args []string) error {
	opts, shouldExit, err := parseArgs(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := ctxlog.New(opts.LogLevel, opts.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	app := NewApp(outW)
	var filePatch config.Patch
	if opts.ConfigPath != "" {
		filePatch, err = app.LoadConfig(opts.ConfigPath)
		if err != nil {
			return &ExitError{Code: 2, Message: err.Error()}
		}
	}
	cfg, err := config.Merge(filePatch, opts.Flags)
	if err != nil {
		return &ExitError{Code: 2, Message: "invalid configuration: " + err.Error()}
	}
	return app.Run(ctx, cfg, opts)
}
