package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "programctl",
	Short: "Operator CLI for the program cycles service",
	Long: `programctl talks to the same database as the API.
It applies migrations, imports cycle catalogs, and prints the calendar,
the coordinator dashboard and cycle rosters.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(cyclesCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(rosterCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
