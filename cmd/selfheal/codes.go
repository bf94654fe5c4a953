package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"selfheal/internal/fault"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List fault code bands and their recovery actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCodes(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(codesCmd)
}

func printCodes(w io.Writer) error {
	_, _ = color.New(color.Bold).Fprintln(w, "Fault code bands")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANGE\tBAND\tMEANING\tRECOVERY")
	for _, b := range fault.Bands {
		fmt.Fprintf(tw, "%d-%d\t%s\t%s\t%s\n", b.Min, b.Max, b.Band, b.Meaning, b.Action)
	}
	fmt.Fprintln(tw, "other\tunknown\tUnclassified\t"+string(fault.SelectAction(0)))
	return tw.Flush()
}
