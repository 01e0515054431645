package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultDeps())
	stop()
	os.Exit(code)
}

// runMain dispatches the command line and returns the process exit code.
// A bare Markdown path is shorthand for "convert <path>".
func runMain(ctx context.Context, args []string, deps *Dependencies) int {
	if len(args) < 2 {
		printUsage(deps.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) && looksLikeMarkdown(cmd) {
		cmd, rest = "convert", args[1:]
	}

	switch cmd {
	case "convert":
		err := runConvertCmd(ctx, rest, deps)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "error:", err.Error()+hintFor(err))
		}
		return exitCodeFor(err)
	case "version":
		fmt.Fprintf(deps.Stdout, "md2office %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, deps)
		return ExitSuccess
	default:
		fmt.Fprintf(deps.Stderr, "Unknown command: %s\n", cmd)
		printUsage(deps.Stderr)
		return ExitUsage
	}
}

// isCommand reports whether s names a subcommand.
func isCommand(s string) bool {
	switch s {
	case "convert", "version", "help":
		return true
	}
	return false
}

// looksLikeMarkdown reports whether s is a path with a convertible extension.
func looksLikeMarkdown(s string) bool {
	if strings.HasPrefix(s, "-") {
		return false
	}
	_, ok := inputExtensions[strings.ToLower(filepath.Ext(s))]
	return ok
}
