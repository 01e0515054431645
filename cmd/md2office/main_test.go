package main

// Notes:
// - runMain: we drive dispatch with buffered writers. Conversions that touch
//   the filesystem live in convert_test.go.
// - main() itself is not tested: it calls os.Exit.

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func testDeps() (*Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Dependencies{
		Now:    func() time.Time { return fixed },
		Stdout: stdout,
		Stderr: stderr,
	}, stdout, stderr
}

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "no command",
			args:       []string{"md2office"},
			wantCode:   ExitUsage,
			wantStderr: "Usage: md2office",
		},
		{
			name:       "version",
			args:       []string{"md2office", "version"},
			wantCode:   ExitSuccess,
			wantStdout: "md2office dev",
		},
		{
			name:       "help",
			args:       []string{"md2office", "help"},
			wantCode:   ExitSuccess,
			wantStdout: "Commands:",
		},
		{
			name:       "--help",
			args:       []string{"md2office", "--help"},
			wantCode:   ExitSuccess,
			wantStdout: "Usage: md2office",
		},
		{
			name:       "help convert",
			args:       []string{"md2office", "help", "convert"},
			wantCode:   ExitSuccess,
			wantStdout: "--strip-blank-lines",
		},
		{
			name:       "help unknown",
			args:       []string{"md2office", "help", "nope"},
			wantCode:   ExitSuccess,
			wantStderr: "Unknown command: nope",
		},
		{
			name:       "unknown command",
			args:       []string{"md2office", "frobnicate"},
			wantCode:   ExitUsage,
			wantStderr: "Unknown command: frobnicate",
		},
		{
			name:       "convert without input",
			args:       []string{"md2office", "convert"},
			wantCode:   ExitIO,
			wantStderr: "no input specified",
		},
		{
			name:       "convert bad flag",
			args:       []string{"md2office", "convert", "--nope"},
			wantCode:   ExitUsage,
			wantStderr: "invalid usage",
		},
		{
			name:       "convert bad format",
			args:       []string{"md2office", "convert", "-f", "pdf", "doc.md"},
			wantCode:   ExitUsage,
			wantStderr: "hint:",
		},
		{
			name:       "shorthand missing file",
			args:       []string{"md2office", "missing-file.md"},
			wantCode:   ExitIO,
			wantStderr: "error:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps, stdout, stderr := testDeps()
			code := runMain(context.Background(), tt.args, deps)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestIsCommand(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"convert", "version", "help"} {
		if !isCommand(s) {
			t.Errorf("isCommand(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "doc.md", "--help", "doctor"} {
		if isCommand(s) {
			t.Errorf("isCommand(%q) = true, want false", s)
		}
	}
}
