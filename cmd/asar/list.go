package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hotelspunk33/asar"
)

var listLong bool

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the files in an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := asar.Open(args[0], asar.WithLogger(logger()))
		if err != nil {
			return err
		}
		paths, err := a.List()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, p := range paths {
			if !listLong {
				fmt.Fprintln(w, p)
				continue
			}
			info, err := a.Stat(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%10s  %s\n", humanize.Bytes(info.Size), p)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show file sizes")
	rootCmd.AddCommand(listCmd)
}
