package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/ehr-api/internal/repository/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:          "ehr-api",
		Short:        "EHR API server for patients, medical records and prescriptions",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yml (default: search ., ./config, /app, /app/config)")

	rootCmd.AddCommand(serveCmd(&configFile))
	rootCmd.AddCommand(schemaCmd())

	return rootCmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the relational schema the server expects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), postgres.Schema)
			return err
		},
	}
}
