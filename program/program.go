// Package program reads Intcode listings: comma-separated integers,
// optionally spread over several lines.
package program

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/intcode/vm"
)

// Parse reads a comma-separated listing. Whitespace around values is
// ignored and empty fields (such as a trailing comma) are skipped. Values
// that do not fit in T are an error.
func Parse[T vm.Word](r io.Reader) ([]T, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(splitComma)

	var out []T
	for field := 1; sc.Scan(); field++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("program: field %d %q: %w", field, text, err)
		}
		if int64(T(v)) != v {
			return nil, fmt.Errorf("program: field %d %q: %w", field, text, strconv.ErrRange)
		}
		out = append(out, T(v))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("program: read: %w", err)
	}
	return out, nil
}

// ParseString parses a listing held in memory.
func ParseString[T vm.Word](s string) ([]T, error) {
	return Parse[T](strings.NewReader(s))
}

// Load parses the listing stored at path.
func Load[T vm.Word](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("program: cannot read %s: %w", path, err)
	}
	defer f.Close()
	return Parse[T](f)
}

// Format renders values as a comma-separated listing.
func Format[T vm.Word](values []T) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(v), 10))
	}
	return b.String()
}

func splitComma(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, ','); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
