// Package main implements cityctl, a small operator CLI for a running
// CiudadGemela server. Every command maps to one REST endpoint.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:   "cityctl",
		Short: "Operator CLI for the CiudadGemela simulation server",
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "base URL of the running server")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(scenariosCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(stopCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(timelineCmd())
	rootCmd.AddCommand(metricsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current year, speed and run state",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus()
		},
	}
}

func scenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenarios the server knows about",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runScenarios()
		},
	}
}

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply [scenario-id]",
		Short: "Apply a scenario and print the before/after diff",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runApply(args[0])
		},
	}
}

func simulateCmd() *cobra.Command {
	var targetYear int

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Start a simulation run toward a target year",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSimulate(targetYear)
		},
	}

	cmd.Flags().IntVar(&targetYear, "to", 0, "target year (required)")
	cmd.MarkFlagRequired("to")
	return cmd
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Request a cooperative stop of the active run",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStop()
		},
	}
}

func projectCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Preview a future year without stepping the simulation",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runProject(year)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to project (required)")
	cmd.MarkFlagRequired("year")
	return cmd
}

func timelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show the chronological list of simulation milestones",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTimeline()
		},
	}
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show the derived metric overview",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMetrics()
		},
	}
}
