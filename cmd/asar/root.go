package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "asar",
	Short: "Pack, inspect, and extract asar archives",
	Long: `asar packs directories into asar archives and reads them back.

An asar archive is a single file holding a JSON header that describes a
directory tree and the concatenated raw contents of every file in it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log operations to stderr")
}

// logger returns the slog.Logger commands hand to the library: a text
// handler on stderr when --verbose is set, a discard logger otherwise.
func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
