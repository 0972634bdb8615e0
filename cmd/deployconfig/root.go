package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deploy_config/internal/app/port"
	"deploy_config/internal/app/service"
	"deploy_config/internal/domain/entity"
	"deploy_config/internal/infrastructure/configloader"
	"deploy_config/internal/infrastructure/envresolver"
	networkdefinition "deploy_config/internal/infrastructure/network/definition"
	"deploy_config/internal/pkg/logger"
	"deploy_config/internal/pkg/metrics"
	"deploy_config/internal/pkg/utils"
)

const configPathEnv = "DEPLOY_CONFIG_PATH"

// cli carries global flags and the process-wide dependencies shared by subcommands.
type cli struct {
	configPath string
	builtin    bool
	strict     bool
	logLevel   string
	devLog     bool

	lookup envresolver.LookupFunc
	zap    *zap.Logger
	log    port.Logger
}

func newRootCmd(lookup envresolver.LookupFunc) *cobra.Command {
	c := &cli{lookup: lookup, log: logger.Nop()}

	root := &cobra.Command{
		Use:   "deployconfig",
		Short: "Load, validate and inspect contract deployment settings",
		Long: `deployconfig reads the deployment settings of a contract project
(compiler version, optimizer, networks and their account sources), resolves
secrets from the environment once at startup and reports every problem it finds.

Secret values are never printed: accounts are shown as derived addresses
or mnemonic word counts.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.zap != nil {
				_ = c.zap.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", fmt.Sprintf("config file (default $%s or %s)", configPathEnv, configloader.DefaultConfigPath))
	pf.BoolVar(&c.builtin, "builtin", false, "use the built-in config instead of a file")
	pf.BoolVar(&c.strict, "strict", false, "treat conflicting compiler declarations as an error")
	pf.StringVar(&c.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&c.devLog, "dev-log", false, "human-readable development logging")

	root.AddCommand(
		c.validateCmd(),
		c.showCmd(),
		c.envCmd(),
		c.probeCmd(),
		c.serveCmd(),
		c.chainsCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	zl, err := logger.InitZap(c.logLevel, c.devLog)
	if err != nil {
		return err
	}
	c.zap = zl
	c.log = logger.NewSlogAdapter()
	metrics.MustRegisterMetrics()
	return nil
}

// path returns the config file to read, or "" for the built-in document.
func (c *cli) path() (string, error) {
	if c.builtin {
		return "", nil
	}
	path := c.configPath
	if path == "" {
		path = utils.GetEnv(configPathEnv, configloader.DefaultConfigPath)
	}
	if !utils.FileExists(path) {
		return "", fmt.Errorf("config file %s not found (pass --config or --builtin)", path)
	}
	return path, nil
}

func (c *cli) document() (*configloader.Document, error) {
	path, err := c.path()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return configloader.Builtin(), nil
	}
	return configloader.Load(path)
}

func (c *cli) definitions() *networkdefinition.NetworkDefinitionProvider {
	return networkdefinition.NewNetworkDefinitionProvider(c.log)
}

// load builds the deploy config and returns the service holding it.
func (c *cli) load() (*service.ConfigService, *entity.DeployConfig, error) {
	path, err := c.path()
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewConfigService(c.definitions(), c.log, service.ConfigOptions{StrictCompiler: c.strict})
	cfg, err := svc.Load(path, c.lookup)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}
