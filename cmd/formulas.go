package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cwbudde/dlogsolve/internal/hashfn"
)

var formulasInput uint32

var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "List the hash formulas and their output for an input",
	Args:  cobra.NoArgs,
	RunE:  runFormulas,
}

func init() {
	formulasCmd.Flags().Uint32Var(&formulasInput, "input", 42, "Input value to hash")
	rootCmd.AddCommand(formulasCmd)
}

func runFormulas(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Index", "Name", "Formula", fmt.Sprintf("Hash(%d)", formulasInput)})

	for _, f := range hashfn.All() {
		h, err := hashfn.ComputeHash(formulasInput, int(f))
		value := strconv.FormatInt(h, 10)
		switch {
		case errors.Is(err, hashfn.ErrNonConvergent):
			value = "non-convergent"
		case err != nil:
			return err
		}
		table.Append([]string{strconv.Itoa(int(f)), f.String(), f.Description(), value})
	}

	table.Render()
	return nil
}
