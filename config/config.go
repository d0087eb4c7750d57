// Package config handles intcode.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/intcode/vm"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "intcode.toml"

// Config represents an intcode.toml file.
type Config struct {
	Machine Machine `toml:"machine"`
	Network Network `toml:"network"`
	Server  Server  `toml:"server"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the intcode.toml file (set at load time).
	Dir string `toml:"-"`
}

// Machine configures how programs are executed.
type Machine struct {
	Word           string `toml:"word"`            // "int32" or "int64"
	InstructionSet string `toml:"instruction-set"` // "full", "diagnostic" or "calculator"
	MemoryLimit    int64  `toml:"memory-limit"`    // 0 means unbounded
}

// Network configures amplifier runs.
type Network struct {
	Phases   []int64 `toml:"phases"`
	Signal   int64   `toml:"signal"`
	Feedback bool    `toml:"feedback"`
}

// Server configures the remote execution service.
type Server struct {
	Addr     string `toml:"addr"`
	GRPCAddr string `toml:"grpc-addr"`
	Workers  int    `toml:"workers"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no intcode.toml exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Machine.Word == "" {
		c.Machine.Word = "int64"
	}
	if c.Machine.InstructionSet == "" {
		c.Machine.InstructionSet = vm.SetFull.String()
	}
	if len(c.Network.Phases) == 0 {
		if c.Network.Feedback {
			c.Network.Phases = []int64{5, 6, 7, 8, 9}
		} else {
			c.Network.Phases = []int64{0, 1, 2, 3, 4}
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":4567"
	}
	if c.Server.Workers <= 0 {
		c.Server.Workers = 4
	}
}

// Validate checks values that toml decoding cannot.
func (c *Config) Validate() error {
	switch c.Machine.Word {
	case "int32", "int64":
	default:
		return fmt.Errorf("machine.word must be int32 or int64, got %q", c.Machine.Word)
	}
	if _, err := vm.ParseInstructionSet(c.Machine.InstructionSet); err != nil {
		return fmt.Errorf("machine.instruction-set: %w", err)
	}
	if c.Machine.MemoryLimit < 0 {
		return fmt.Errorf("machine.memory-limit must not be negative")
	}
	return nil
}

// InstructionSet returns the parsed machine.instruction-set.
func (c *Config) InstructionSet() vm.InstructionSet {
	set, err := vm.ParseInstructionSet(c.Machine.InstructionSet)
	if err != nil {
		return vm.SetFull
	}
	return set
}

// Load parses an intcode.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// LoadFile parses the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Dir = filepath.Dir(path)

	// Defaults
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}
