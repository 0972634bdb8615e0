package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"deploy_config/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (c *cli) showCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved config without secrets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := c.load()
			if err != nil {
				printProblems(cmd.ErrOrStderr(), err)
				return fmt.Errorf("config is invalid")
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			printNetworks(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printNetworks(w io.Writer, cfg *entity.DeployConfig) {
	printSummary(w, cfg)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NETWORK\tCHAIN ID\tURL\tACCOUNTS")
	for _, n := range cfg.OrderedNetworks() {
		chainID := "-"
		if n.ChainID != 0 {
			chainID = fmt.Sprintf("%d", n.ChainID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.Name, chainID, n.DisplayURL, describeAccounts(n.Accounts))
	}
	_ = tw.Flush()
}

func describeAccounts(a entity.ResolvedAccounts) string {
	switch a.Kind {
	case entity.AccountKindMnemonic:
		return fmt.Sprintf("mnemonic (%d words, %s, %d accounts)", a.MnemonicWords, a.DerivationPath, a.Count)
	case entity.AccountKindPrivateKeys:
		if len(a.Addresses) == 1 {
			return a.Addresses[0]
		}
		return fmt.Sprintf("%d keys (%s, ...)", len(a.Addresses), a.Addresses[0])
	default:
		return string(a.Kind)
	}
}
