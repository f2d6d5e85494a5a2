package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "yatube",
	Short: "Yatube blog server and admin tools",
	Long: `Yatube is a small blogging site: authors publish posts, file them
under groups, comment and follow each other.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd, migrateCmd, groupCmd, userCmd, postCmd, cacheCmd, eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
