package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/intcode/program"
	"github.com/chazu/intcode/vm"
)

var (
	runInput       string
	runPatches     []string
	runSet         string
	runMemoryLimit int64
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a program on one machine",
	Long: `Run a program on one machine, feeding it --input and printing every
value it outputs followed by the final contents of address 0.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseValues(runInput)
		if err != nil {
			return err
		}
		patches, err := parsePatches(runPatches)
		if err != nil {
			return err
		}
		set := cfg.InstructionSet()
		if cmd.Flags().Changed("set") {
			if set, err = vm.ParseInstructionSet(runSet); err != nil {
				return err
			}
		}
		limit := cfg.Machine.MemoryLimit
		if cmd.Flags().Changed("memory-limit") {
			limit = runMemoryLimit
		}

		opts := runOptions{path: args[0], input: input, patches: patches, set: set, limit: limit}
		if cfg.Machine.Word == "int32" {
			return runFile[int32](cmd, opts)
		}
		return runFile[int64](cmd, opts)
	},
}

type runOptions struct {
	path    string
	input   []int64
	patches map[int64]int64
	set     vm.InstructionSet
	limit   int64
}

func runFile[T vm.Word](cmd *cobra.Command, opts runOptions) error {
	prog, err := program.Load[T](opts.path)
	if err != nil {
		return err
	}
	input, err := narrow[T](opts.input)
	if err != nil {
		return err
	}
	limit, err := narrow[T]([]int64{opts.limit})
	if err != nil {
		return err
	}

	out := vm.NewQueue[T]()
	m := vm.New(prog,
		vm.WithInput[T](vm.NewQueue(input...)),
		vm.WithOutput[T](out),
		vm.WithInstructionSet[T](opts.set),
		vm.WithMemoryLimit(limit[0]),
		vm.WithName[T](opts.path),
	)
	for addr, value := range opts.patches {
		pair, err := narrow[T]([]int64{addr, value})
		if err != nil {
			return err
		}
		if err := m.Memory().Write(pair[0], pair[1]); err != nil {
			return fmt.Errorf("patch %d: %w", addr, err)
		}
	}

	result, err := m.RunContext(cmd.Context())
	for _, v := range out.Values() {
		fmt.Fprintf(cmd.OutOrStdout(), "output: %d\n", v)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "result: %d\n", result)
	return nil
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "Comma-separated input values")
	runCmd.Flags().StringArrayVarP(&runPatches, "patch", "p", nil, "Write addr=value to memory before running (repeatable)")
	runCmd.Flags().StringVar(&runSet, "set", "full", "Instruction set: full, diagnostic or calculator")
	runCmd.Flags().Int64Var(&runMemoryLimit, "memory-limit", 0, "Bound memory to this many cells (0 = unbounded)")
	rootCmd.AddCommand(runCmd)
}
