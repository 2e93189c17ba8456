package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hotelspunk33/asar"
)

var packCmd = &cobra.Command{
	Use:   "pack <dir> <archive>",
	Short: "Pack a directory into an archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := asar.Open(args[0], asar.WithLogger(logger()))
		if err != nil {
			return err
		}

		var files int
		var contentBytes uint64
		err = a.Pack(args[1], asar.PackWithProgress(func(ev asar.ProgressEvent) {
			files = ev.Done
			contentBytes += ev.Size
		}))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "packed %s: %d files, %s\n",
			args[1], files, humanize.Bytes(contentBytes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
}
