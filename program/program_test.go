package program

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  []int64
	}{
		{"1,9,10,3,2,3,11,0,99,30,40,50", []int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}},
		{"1, 2,\n3 ,4\n", []int64{1, 2, 3, 4}},
		{"104,-1,99,", []int64{104, -1, 99}},
		{"  \n", nil},
		{"1,,2", []int64{1, 2}},
	}
	for _, tt := range tests {
		got, err := ParseString[int64](tt.input)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tt.input, err)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := ParseString[int64]("1,two,3"); err == nil || !strings.Contains(err.Error(), "field 2") {
		t.Errorf("Parse(1,two,3) error = %v, want field 2 error", err)
	}
	_, err := ParseString[int32]("1,1125899906842624")
	if !errors.Is(err, strconv.ErrRange) {
		t.Errorf("Parse into int32 error = %v, want ErrRange", err)
	}
	if err == nil || !strings.Contains(err.Error(), "field 2") {
		t.Errorf("Parse into int32 error = %v, want field 2 error", err)
	}
	got, err := ParseString[int32]("-2147483648,2147483647")
	if err != nil {
		t.Fatalf("Parse of int32 extremes failed: %v", err)
	}
	if !slices.Equal(got, []int32{-2147483648, 2147483647}) {
		t.Errorf("Parse = %v, want int32 extremes", got)
	}
}

func TestParseWideValue(t *testing.T) {
	got, err := ParseString[int64]("104,1125899906842624,99")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got[1] != 1125899906842624 {
		t.Errorf("got[1] = %d", got[1])
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, []byte("1,0,0,0,99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load[int32](path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !slices.Equal(got, []int32{1, 0, 0, 0, 99}) {
		t.Errorf("Load = %v", got)
	}
	if _, err := Load[int32](filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Load of missing file should fail")
	}
}

func TestFormat(t *testing.T) {
	if got := Format([]int64{2, 0, -1, 99}); got != "2,0,-1,99" {
		t.Errorf("Format = %q", got)
	}
	if got := Format[int64](nil); got != "" {
		t.Errorf("Format(nil) = %q", got)
	}
}
