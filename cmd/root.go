package cmd

import (
	"fmt"
	"os"

	"github.com/gridkv/gridkv/cmd/auth"
	"github.com/gridkv/gridkv/cmd/kv"
	"github.com/gridkv/gridkv/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.2"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "gridkv",
		Short: "spreadsheet-backed key-value store",
		Long: fmt.Sprintf(`gridKV (v%s)

A persistent key-value store library written in Go, backed by a
spreadsheet document and mirrored in memory for fast reads.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gridKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gridKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(auth.AuthCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "codec"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("cell codec to use (json, yaml)"))
	key = "backend"
	RootCmd.PersistentFlags().String(key, "sheets", util.WrapString("table backend to use (sheets, memory)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("log level (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
