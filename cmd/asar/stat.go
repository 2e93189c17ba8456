package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hotelspunk33/asar"
)

var statCmd = &cobra.Command{
	Use:   "stat <archive> <path>",
	Short: "Show the offset and size of one entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := asar.Open(args[0], asar.WithLogger(logger()))
		if err != nil {
			return err
		}
		info, err := a.Stat(args[1])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if info.IsDir {
			fmt.Fprintf(w, "%s: folder\n", info.Path)
			return nil
		}
		fmt.Fprintf(w, "%s: %s (%d bytes) at offset %d\n",
			info.Path, humanize.Bytes(info.Size), info.Size, info.Offset)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statCmd)
}
