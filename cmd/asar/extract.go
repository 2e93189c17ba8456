package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hotelspunk33/asar"
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive> <dir>",
	Short: "Extract an archive into a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := asar.Open(args[0], asar.WithLogger(logger()))
		if err != nil {
			return err
		}

		var files int
		err = a.Extract(args[1], asar.ExtractWithProgress(func(ev asar.ProgressEvent) {
			files = ev.Done
		}))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "extracted %d files to %s\n", files, args[1])
		return nil
	},
}

var extractFileOut string

var extractFileCmd = &cobra.Command{
	Use:   "extract-file <archive> <path>",
	Short: "Write a single file from an archive to stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := asar.Open(args[0], asar.WithLogger(logger()))
		if err != nil {
			return err
		}
		content, err := a.ReadFile(args[1])
		if err != nil {
			return err
		}

		if extractFileOut != "" {
			return os.WriteFile(extractFileOut, content, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(content)
		return err
	},
}

func init() {
	extractFileCmd.Flags().StringVarP(&extractFileOut, "output", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(extractCmd, extractFileCmd)
}
