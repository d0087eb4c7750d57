package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/chazu/intcode/program"
	"github.com/chazu/intcode/server"
	"github.com/chazu/intcode/wire"
)

var remoteURL string

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Run programs on an intcode server",
}

var remoteRunCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a program remotely",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := program.Load[int64](args[0])
		if err != nil {
			return err
		}
		input, err := parseValues(runInput)
		if err != nil {
			return err
		}
		patches, err := parsePatches(runPatches)
		if err != nil {
			return err
		}

		client := server.NewClient(http.DefaultClient, remoteURL)
		resp, err := client.Run(cmd.Context(), &wire.RunRequest{
			Word:           cfg.Machine.Word,
			InstructionSet: cfg.Machine.InstructionSet,
			MemoryLimit:    cfg.Machine.MemoryLimit,
			Program:        prog,
			Input:          input,
			Patches:        patches,
		})
		if err != nil {
			return err
		}
		for _, v := range resp.Output {
			fmt.Fprintf(cmd.OutOrStdout(), "output: %d\n", v)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "result: %d\nsteps: %d\nrun: %s\n", resp.Result, resp.Steps, resp.RunID)
		return nil
	},
}

var remoteAmplifyCmd = &cobra.Command{
	Use:   "amplify <file>",
	Short: "Run an amplifier network remotely",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := program.Load[int64](args[0])
		if err != nil {
			return err
		}
		opts, err := amplifyFlags(cmd)
		if err != nil {
			return err
		}

		client := server.NewClient(http.DefaultClient, remoteURL)
		resp, err := client.Amplify(cmd.Context(), &wire.AmplifyRequest{
			Word:     cfg.Machine.Word,
			Program:  prog,
			Phases:   opts.phases,
			Signal:   opts.signal,
			Feedback: opts.feedback,
			Search:   opts.search,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "signal: %d\nphases: %s\nrun: %s\n",
			resp.Signal, program.Format(resp.Phases), resp.RunID)
		return nil
	},
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteURL, "url", "http://localhost:4567", "Base URL of the intcode server")

	remoteRunCmd.Flags().StringVarP(&runInput, "input", "i", "", "Comma-separated input values")
	remoteRunCmd.Flags().StringArrayVarP(&runPatches, "patch", "p", nil, "Write addr=value to memory before running (repeatable)")

	remoteAmplifyCmd.Flags().StringVar(&ampPhases, "phases", "", "Comma-separated phase settings, one per machine")
	remoteAmplifyCmd.Flags().Int64Var(&ampSignal, "signal", 0, "Initial signal fed to the first machine")
	remoteAmplifyCmd.Flags().BoolVar(&ampFeedback, "feedback", false, "Connect the last machine back to the first")
	remoteAmplifyCmd.Flags().BoolVar(&ampSearch, "search", false, "Try every ordering of the phases and report the best")

	remoteCmd.AddCommand(remoteRunCmd, remoteAmplifyCmd)
	rootCmd.AddCommand(remoteCmd)
}
