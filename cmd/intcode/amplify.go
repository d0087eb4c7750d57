package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/intcode/network"
	"github.com/chazu/intcode/program"
	"github.com/chazu/intcode/vm"
)

var (
	ampPhases   string
	ampSignal   int64
	ampFeedback bool
	ampSearch   bool
)

var amplifyCmd = &cobra.Command{
	Use:   "amplify <file>",
	Short: "Run a program as a chain of amplifiers",
	Long: `Start one machine per phase, pass the signal through them in order and
print the final signal. With --feedback the last machine feeds the first
until every machine stops. With --search every ordering of the phases is
tried and the best one is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := amplifyFlags(cmd)
		if err != nil {
			return err
		}
		opts.path = args[0]
		if cfg.Machine.Word == "int32" {
			return amplifyFile[int32](cmd, opts)
		}
		return amplifyFile[int64](cmd, opts)
	},
}

type amplifyOptions struct {
	path     string
	phases   []int64
	signal   int64
	feedback bool
	search   bool
}

// amplifyFlags merges command-line flags over the [network] config section.
func amplifyFlags(cmd *cobra.Command) (amplifyOptions, error) {
	opts := amplifyOptions{
		phases:   cfg.Network.Phases,
		signal:   cfg.Network.Signal,
		feedback: cfg.Network.Feedback,
		search:   ampSearch,
	}
	if cmd.Flags().Changed("feedback") {
		opts.feedback = ampFeedback
		if !cmd.Flags().Changed("phases") && opts.feedback {
			opts.phases = []int64{5, 6, 7, 8, 9}
		}
	}
	if cmd.Flags().Changed("phases") {
		phases, err := parseValues(ampPhases)
		if err != nil {
			return opts, err
		}
		opts.phases = phases
	}
	if cmd.Flags().Changed("signal") {
		opts.signal = ampSignal
	}
	if len(opts.phases) == 0 {
		return opts, fmt.Errorf("no phases given")
	}
	if opts.search && len(opts.phases) > network.MaxSearchPhases {
		return opts, fmt.Errorf("--search accepts at most %d phases, got %d", network.MaxSearchPhases, len(opts.phases))
	}
	return opts, nil
}

func amplifyFile[T vm.Word](cmd *cobra.Command, opts amplifyOptions) error {
	prog, err := program.Load[T](opts.path)
	if err != nil {
		return err
	}
	phases, err := narrow[T](opts.phases)
	if err != nil {
		return err
	}
	signal, err := narrow[T]([]int64{opts.signal})
	if err != nil {
		return err
	}
	limit, err := narrow[T]([]int64{cfg.Machine.MemoryLimit})
	if err != nil {
		return err
	}
	ncfg := network.Config[T]{Set: cfg.InstructionSet(), MemoryLimit: limit[0]}

	ctx := cmd.Context()
	if opts.search {
		best, err := network.Search(ctx, prog, phases, signal[0], opts.feedback, ncfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "signal: %d\nphases: %s\n", best.Signal, program.Format(best.Phases))
		return nil
	}

	var got T
	if opts.feedback {
		got, err = network.Feedback(ctx, prog, phases, signal[0], ncfg)
	} else {
		got, err = network.Chain(ctx, prog, phases, signal[0], ncfg)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signal: %d\n", got)
	return nil
}

func init() {
	amplifyCmd.Flags().StringVar(&ampPhases, "phases", "", "Comma-separated phase settings, one per machine")
	amplifyCmd.Flags().Int64Var(&ampSignal, "signal", 0, "Initial signal fed to the first machine")
	amplifyCmd.Flags().BoolVar(&ampFeedback, "feedback", false, "Connect the last machine back to the first")
	amplifyCmd.Flags().BoolVar(&ampSearch, "search", false, "Try every ordering of the phases and report the best")
	rootCmd.AddCommand(amplifyCmd)
}
