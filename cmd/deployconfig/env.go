package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"deploy_config/internal/infrastructure/envresolver"
)

func (c *cli) envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables the config references and whether each is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := c.document()
			if err != nil {
				return err
			}
			refs := doc.EnvReferences()
			env := envresolver.Capture(c.lookup, refs...)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VARIABLE\tSTATUS")
			missing := 0
			for _, name := range refs {
				status := "set"
				if _, ok := env.Lookup(name); !ok {
					status = "missing"
					missing++
				}
				fmt.Fprintf(tw, "%s\t%s\n", name, status)
			}
			_ = tw.Flush()

			if missing > 0 {
				return fmt.Errorf("%d of %d referenced variables are not set", missing, len(refs))
			}
			return nil
		},
	}
}
