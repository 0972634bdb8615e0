package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"deploy_config/internal/domain/entity"
	"deploy_config/internal/infrastructure/network/client"
)

type probeFlags struct {
	maxConcurrent int
	ratePerSecond float64
	timeout       time.Duration
}

func (f *probeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxConcurrent, "concurrency", 4, "endpoints probed at once")
	cmd.Flags().Float64Var(&f.ratePerSecond, "rate", 2, "probes per second per host (0 = unlimited)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "connect and call timeout per endpoint")
}

func (f *probeFlags) proberConfig() client.ProberConfig {
	return client.ProberConfig{
		ConnectionTimeout:    f.timeout,
		RPCCallTimeout:       f.timeout,
		MaxConcurrent:        f.maxConcurrent,
		RatePerSecond:        f.ratePerSecond,
		CacheCleanupInterval: 10 * time.Minute,
	}
}

func (c *cli) probeCmd() *cobra.Command {
	var (
		flags  probeFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "probe [network...]",
		Short: "Ask each network endpoint for its chain id and compare it with the config",
		Long: `probe dials every selected network (all of them by default), calls
eth_chainId and eth_blockNumber and reports whether the endpoint serves the
chain the config expects. It never signs or sends transactions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := c.load()
			if err != nil {
				printProblems(cmd.ErrOrStderr(), err)
				return fmt.Errorf("config is invalid")
			}
			networks, err := selectNetworks(cfg, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			prober := client.NewChainProber(flags.proberConfig(), c.log)
			results := prober.ProbeAll(ctx, networks)

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				printProbeResults(cmd, results)
			}

			failed := 0
			for _, r := range results {
				if !r.OK {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d endpoints failed the probe", failed, len(results))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func selectNetworks(cfg *entity.DeployConfig, names []string) ([]entity.ResolvedNetwork, error) {
	if len(names) == 0 {
		return cfg.OrderedNetworks(), nil
	}
	out := make([]entity.ResolvedNetwork, 0, len(names))
	for _, name := range names {
		n, ok := cfg.Network(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", entity.ErrUnknownNetwork, name)
		}
		out = append(out, n)
	}
	return out, nil
}

func printProbeResults(cmd *cobra.Command, results []entity.ProbeResult) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NETWORK\tRESULT\tCHAIN ID\tBLOCK\tLATENCY\tDETAIL")
	for _, r := range results {
		result := "ok"
		if !r.OK {
			result = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.Network, result, r.ReportedChainID, r.BlockNumber, r.Latency.Round(time.Millisecond), r.Error)
	}
	_ = tw.Flush()
}
