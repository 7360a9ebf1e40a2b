package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolateConfig keeps tests from reading a real config file.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootFlagDefaults(t *testing.T) {
	t.Parallel()
	cmd := newRootCmd()
	for _, name := range []string{"config", "prompt", "prefix", "history-file", "log-level", "log-format"} {
		v, err := cmd.PersistentFlags().GetString(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if v != "" {
			t.Errorf("%s: got %q, want empty (config supplies defaults)", name, v)
		}
	}
}

func TestRootSubcommandsRegistered(t *testing.T) {
	t.Parallel()
	want := map[string]bool{"console": false, "print": false}
	for _, sub := range newRootCmd().Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s subcommand not registered", name)
		}
	}
}

func TestRootNoArgsTTYStartsConsole(t *testing.T) {
	isolateConfig(t)
	oldTTY := stdinIsTTY
	stdinIsTTY = func() bool { return true }
	defer func() { stdinIsTTY = oldTTY }()

	var gotPrefix string
	oldStart := consoleStart
	consoleStart = func(_ context.Context, cfg *rootConfig, _, _ io.Writer) error {
		gotPrefix = cfg.settings.Prefix
		return nil
	}
	defer func() { consoleStart = oldStart }()

	if _, err := execute(t, ""); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotPrefix != "==> " {
		t.Errorf("console started with prefix %q, want %q", gotPrefix, "==> ")
	}
}

func TestRootNoArgsNonTTYReadsStdin(t *testing.T) {
	isolateConfig(t)
	oldTTY := stdinIsTTY
	stdinIsTTY = func() bool { return false }
	defer func() { stdinIsTTY = oldTTY }()

	out, err := execute(t, "[1, 2, 3]\n")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != "1\n2\n3\n" {
		t.Errorf("got %q, want %q", out, "1\n2\n3\n")
	}
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("prefix: \"file> \"\nprompt: \"g> \"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var got *rootConfig
	oldStart := consoleStart
	consoleStart = func(_ context.Context, cfg *rootConfig, _, _ io.Writer) error {
		got = cfg
		return nil
	}
	defer func() { consoleStart = oldStart }()

	if _, err := execute(t, "", "console", "--config", path, "--prefix", "flag> "); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.settings.Prefix != "flag> " {
		t.Errorf("prefix = %q, want flag value", got.settings.Prefix)
	}
	if got.settings.Prompt != "g> " {
		t.Errorf("prompt = %q, want config file value", got.settings.Prompt)
	}
	if got.logger == nil {
		t.Error("logger not built")
	}
}

func TestRootRejectsBadLogLevel(t *testing.T) {
	isolateConfig(t)
	if _, err := execute(t, "", "print", "--log-level", "loud", "1"); err == nil {
		t.Fatal("expected error for unsupported log level")
	}
}

func TestConsoleCmdRejectsArgs(t *testing.T) {
	isolateConfig(t)
	if _, err := execute(t, "", "console", "extra-arg"); err == nil {
		t.Error("expected error when passing args to console command, got nil")
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{&evalError{err: errors.New("bad")}, exitEval},
		{fmt.Errorf("wrapped: %w", &evalError{err: errors.New("bad")}), exitEval},
		{errors.New("write failed"), exitRuntime},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
