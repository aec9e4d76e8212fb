package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/hexlayout/layout/datatype"
)

func init() {
	rootCmd.AddCommand(newTypesCmd())
}

func newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the data types available for type assignments",
		Long: `The types command lists every registered data type, grouped by kind.
The name is what a snapshot's type assignment refers to.

Example:
  hexlayout types
  hexlayout types --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes()
		},
	}
	return cmd
}

func runTypes() error {
	types := datatype.Default().Types()

	// Output as JSON if requested
	if jsonOut {
		return printJSON(types)
	}

	group := ""
	for _, t := range types {
		if t.Group != group {
			if group != "" {
				printInfo("\n")
			}
			group = t.Group
			printInfo("%s:\n", group)
		}
		printInfo("  %-10s %s\n", t.Name, t.Label)
	}
	return nil
}
