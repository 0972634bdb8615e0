package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) chainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List the chains whose ids are checked by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCHAIN ID\tDESCRIPTION")
			for _, def := range c.definitions().GetAllNetworkDefinitions() {
				desc := def.Name
				if def.Local {
					desc += " (any chain id accepted)"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", def.Identifier, def.ChainID, desc)
			}
			return tw.Flush()
		},
	}
}
