package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/intcode/vm"
)

// parseValues parses a comma-separated list of words. Blank fields are
// skipped.
func parseValues(s string) ([]int64, error) {
	var out []int64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", field, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parsePatches parses "addr=value" pairs as given to --patch.
func parsePatches(specs []string) (map[int64]int64, error) {
	patches := make(map[int64]int64, len(specs))
	for _, spec := range specs {
		addr, value, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid patch %q: want addr=value", spec)
		}
		a, err := strconv.ParseInt(strings.TrimSpace(addr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid patch address %q: %w", addr, err)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid patch value %q: %w", value, err)
		}
		patches[a] = v
	}
	return patches, nil
}

// narrow converts values to T, failing when one does not fit.
func narrow[T vm.Word](values []int64) ([]T, error) {
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
		if int64(out[i]) != v {
			return nil, fmt.Errorf("value %d does not fit in %T", v, out[i])
		}
	}
	return out, nil
}
