package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "climaquote",
		Short: "HVAC configurator and quote service",
		Long: `climaquote serves the product catalog, prices configurations, stores
signed quotes with their PDF and runs the operator panel API.`,
		SilenceUsage: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	hashSecretCmd = &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print the bcrypt hash to use as auth.admin_secret_hash",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHashSecret,
	}
	exportQuotesCmd = &cobra.Command{
		Use:   "export-quotes",
		Short: "Write the quote history to an xlsx file",
		RunE:  runExportQuotes,
	}
	exportOut     string
	exportStatus  string
	exportDeleted bool
	exportLimit   int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "optional config file (yaml, json or toml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hashSecretCmd)

	rootCmd.AddCommand(exportQuotesCmd)
	exportQuotesCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <company>-quotes-<date>.xlsx)")
	exportQuotesCmd.Flags().StringVar(&exportStatus, "status", "", "only quotes with this status (pending, signed)")
	exportQuotesCmd.Flags().BoolVar(&exportDeleted, "deleted", false, "export deleted quotes instead of live ones")
	exportQuotesCmd.Flags().IntVar(&exportLimit, "limit", 0, "only the newest n quotes (0 exports all)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
