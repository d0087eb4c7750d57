package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/chazu/intcode/server"
)

func TestParseValues(t *testing.T) {
	got, err := parseValues(" 1, -2,,3 ,")
	if err != nil {
		t.Fatalf("parseValues failed: %v", err)
	}
	if want := []int64{1, -2, 3}; !slices.Equal(got, want) {
		t.Errorf("parseValues = %v, want %v", got, want)
	}
	if _, err := parseValues("1,x"); err == nil {
		t.Error("parseValues should reject non-numeric fields")
	}
}

func TestParsePatches(t *testing.T) {
	got, err := parsePatches([]string{"1=12", " 2 = 2 "})
	if err != nil {
		t.Fatalf("parsePatches failed: %v", err)
	}
	if got[1] != 12 || got[2] != 2 || len(got) != 2 {
		t.Errorf("parsePatches = %v, want map[1:12 2:2]", got)
	}
	for _, bad := range []string{"12", "a=1", "1=b"} {
		if _, err := parsePatches([]string{bad}); err == nil {
			t.Errorf("parsePatches(%q) should fail", bad)
		}
	}
}

func TestNarrow(t *testing.T) {
	if _, err := narrow[int32]([]int64{1 << 40}); err == nil {
		t.Error("narrow should reject values wider than int32")
	}
	got, err := narrow[int32]([]int64{-5, 7})
	if err != nil {
		t.Fatalf("narrow failed: %v", err)
	}
	if !slices.Equal(got, []int32{-5, 7}) {
		t.Errorf("narrow = %v, want [-5 7]", got)
	}
}

// execute runs the root command with args and an empty config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeConfig(t, context.Background(), "", args...)
}

// executeConfig runs the root command under ctx with an intcode.toml
// holding toml.
func executeConfig(t *testing.T, ctx context.Context, toml string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "intcode.toml")
	if err := os.WriteFile(cfgPath, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

// resetFlags returns every flag to its default and drops the context cobra
// cached on each command, so commands can be executed more than once in a
// test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.SetContext(nil)
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeProgram(t, "1,0,0,0,99\n")
	out, err := execute(t, "run", path, "--patch", "1=4", "--patch", "2=4")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "result: 198") {
		t.Errorf("output = %q, want result: 198", out)
	}
}

func TestRunCommandOutputs(t *testing.T) {
	path := writeProgram(t, "3,0,4,0,99")
	out, err := execute(t, "run", path, "--input", "-9")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "output: -9") {
		t.Errorf("output = %q, want output: -9", out)
	}
}

func TestAmplifyCommand(t *testing.T) {
	path := writeProgram(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	out, err := execute(t, "amplify", path, "--phases", "4,3,2,1,0")
	if err != nil {
		t.Fatalf("amplify failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "signal: 43210") {
		t.Errorf("output = %q, want signal: 43210", out)
	}
}

func TestRunCommandInterrupted(t *testing.T) {
	path := writeProgram(t, "1105,1,0")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := executeConfig(t, ctx, "", "run", path)
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("run err = %v, want DeadlineExceeded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run ignored cancellation")
	}
}

func TestAmplifySearchTooManyPhases(t *testing.T) {
	path := writeProgram(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	_, err := execute(t, "amplify", path, "--search", "--phases", "0,1,2,3,4,5,6,7,8,9,10")
	if err == nil || !strings.Contains(err.Error(), "at most 10 phases") {
		t.Errorf("amplify err = %v, want phase limit error", err)
	}
}

func TestWordFromConfig(t *testing.T) {
	path := writeProgram(t, "1,0,0,0,99")
	if _, err := executeConfig(t, context.Background(), "[machine]\nword = \"int32\"\n", "run", path); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if cfg.Machine.Word != "int32" {
		t.Errorf("word = %q, want int32 from config", cfg.Machine.Word)
	}
	if f := rootCmd.PersistentFlags().Lookup("word"); f.DefValue != "" {
		t.Errorf("--word default = %q, want empty", f.DefValue)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, server.New(server.WithWorkers(1)), lis, grpcLis) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
