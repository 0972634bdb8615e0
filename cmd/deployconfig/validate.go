package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"deploy_config/internal/domain/entity"
)

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config and the environment it needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := c.load()
			if err != nil {
				printProblems(cmd.ErrOrStderr(), err)
				return fmt.Errorf("config is invalid")
			}
			printSummary(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printSummary(w io.Writer, cfg *entity.DeployConfig) {
	optimizer := "off"
	if cfg.Compiler.Optimizer.Enabled {
		optimizer = fmt.Sprintf("on, %d runs", cfg.Compiler.Optimizer.Runs)
	}
	fmt.Fprintf(w, "config %s is valid\n", cfg.Source)
	fmt.Fprintf(w, "compiler: %s (optimizer %s)\n", cfg.Compiler.Version, optimizer)
	fmt.Fprintf(w, "networks: %s\n", strings.Join(cfg.NetworkOrder, ", "))
	for _, is := range cfg.Issues {
		if is.Network != "" {
			fmt.Fprintf(w, "warning [%s] %s: %s\n", is.Kind, is.Network, is.Message)
			continue
		}
		fmt.Fprintf(w, "warning [%s] %s\n", is.Kind, is.Message)
	}
}

// printProblems writes one line per joined error.
func printProblems(w io.Writer, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(w, "error: %s\n", line)
		}
	}
}
