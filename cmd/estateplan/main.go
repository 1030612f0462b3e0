package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/estateforge/estateplan/internal/logger"
	"github.com/estateforge/estateplan/internal/server"
)

func main() {
	logger.Setup()

	rootCmd := &cobra.Command{
		Use:   "estateplan",
		Short: "Industrial estate subdivision and master-planning engine",
	}

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func planCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "plan [project-path]",
		Short: "Run the full planning pipeline over the project's parcels",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPlan(args[0], out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the result GeoJSON to this file instead of stdout")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate project configuration and parcels without planning",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-path]",
		Short: "Write a starter estate.yaml with the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInit(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local planning server",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			srv := server.New(args[0], port)
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
