package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deploy_config/internal/domain/entity"
	"deploy_config/internal/infrastructure/configloader"
	"deploy_config/internal/infrastructure/envresolver"
	networkdefinition "deploy_config/internal/infrastructure/network/definition"
	"deploy_config/internal/pkg/logger"
)

const (
	testKey      = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testMnemonic = "test test test test test test test test test test test junk"
)

func newTestService(opts ConfigOptions) *ConfigService {
	return NewConfigService(networkdefinition.NewNetworkDefinitionProvider(logger.Nop()), logger.Nop(), opts)
}

func fullEnv() *envresolver.Environment {
	return envresolver.FromMap(map[string]string{
		"DEVCHAIN_MNEMONIC": testMnemonic,
		"PRIVATE_KEY":       "0x" + testKey,
	})
}

func TestBuildBuiltinWithEnvironment(t *testing.T) {
	svc := newTestService(ConfigOptions{})

	cfg, err := svc.Build(configloader.Builtin(), fullEnv())
	require.NoError(t, err)
	assert.Same(t, cfg, svc.GetConfig())

	assert.Equal(t, "0.8.9", cfg.Compiler.Version)
	assert.Equal(t, entity.OptimizerSettings{Enabled: true, Runs: 200}, cfg.Compiler.Optimizer)
	require.Len(t, cfg.IssuesOfKind(entity.IssueCompilerVersionConflict), 1)

	assert.Equal(t, []string{"localhost", "alfajores", "celo"}, cfg.NetworkOrder)
	for _, n := range cfg.OrderedNetworks() {
		assert.False(t, n.Accounts.IsEmpty(), n.Name)
		assert.NotEmpty(t, n.URL, n.Name)
	}

	alfajores, ok := cfg.Network("alfajores")
	require.True(t, ok)
	assert.EqualValues(t, 44787, alfajores.ChainID)
	assert.True(t, alfajores.ChainIDDeclared)
	assert.Equal(t, []string{testAddress}, alfajores.Accounts.Addresses)

	celo, _ := cfg.Network("celo")
	assert.EqualValues(t, 42220, celo.ChainID)

	local, _ := cfg.Network("localhost")
	assert.Equal(t, entity.AccountKindMnemonic, local.Accounts.Kind)
	assert.Zero(t, local.ChainID)
}

func TestBuildFailsNamingMissingVariable(t *testing.T) {
	svc := newTestService(ConfigOptions{})
	env := envresolver.FromMap(map[string]string{"DEVCHAIN_MNEMONIC": testMnemonic})

	cfg, err := svc.Build(configloader.Builtin(), env)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Nil(t, svc.GetConfig())

	var missing *entity.MissingEnvError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "PRIVATE_KEY", missing.Var)
	assert.Contains(t, err.Error(), "PRIVATE_KEY")
	assert.Contains(t, err.Error(), `"alfajores"`)
	assert.Contains(t, err.Error(), `"celo"`)
	assert.NotContains(t, err.Error(), "DEVCHAIN_MNEMONIC")
}

func TestBuildMissingMnemonic(t *testing.T) {
	svc := newTestService(ConfigOptions{})
	env := envresolver.FromMap(map[string]string{"PRIVATE_KEY": testKey})

	_, err := svc.Build(configloader.Builtin(), env)
	var missing *entity.MissingEnvError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "DEVCHAIN_MNEMONIC", missing.Var)
	assert.Equal(t, "localhost", missing.Network)
}

func TestBuildStrictCompilerConflict(t *testing.T) {
	svc := newTestService(ConfigOptions{StrictCompiler: true})

	_, err := svc.Build(configloader.Builtin(), fullEnv())
	assert.ErrorIs(t, err, entity.ErrCompilerVersionConflict)
}

func TestBuildReportsEveryNetworkProblem(t *testing.T) {
	doc, err := configloader.Parse([]byte(`
solidity: "0.8.20"
defaultNetwork: mainnet
networks:
  celo:
    url: https://forno.celo.org
    chainId: 44787
    accounts: ["${PRIVATE_KEY}"]
  nourl:
    url: ""
    accounts: ["${PRIVATE_KEY}"]
  noaccounts:
    url: http://localhost:8545
  both:
    url: http://localhost:8545
    accounts:
      mnemonic: "${DEVCHAIN_MNEMONIC}"
      privateKeys: ["${PRIVATE_KEY}"]
`))
	require.NoError(t, err)

	_, err = newTestService(ConfigOptions{}).Build(doc, fullEnv())
	require.Error(t, err)

	assert.ErrorIs(t, err, entity.ErrChainIDMismatch)
	assert.ErrorIs(t, err, entity.ErrInvalidURL)
	assert.ErrorIs(t, err, entity.ErrNoAccountStrategy)
	assert.ErrorIs(t, err, entity.ErrMultipleAccountStrategies)
	assert.ErrorIs(t, err, entity.ErrUnknownNetwork)

	var netErr *entity.NetworkError
	require.True(t, errors.As(err, &netErr))
}

func TestBuildNoNetworks(t *testing.T) {
	doc, err := configloader.Parse([]byte(`solidity: "0.8.20"`))
	require.NoError(t, err)

	_, err = newTestService(ConfigOptions{}).Build(doc, fullEnv())
	assert.ErrorIs(t, err, entity.ErrNoNetworks)
}

func TestBuildExpandsURLAndInfersChainID(t *testing.T) {
	doc, err := configloader.Parse([]byte(`
solidity: "0.8.20"
networks:
  celo:
    url: "https://user:pw@rpc.example.com/${RPC_KEY}?x=1"
    accounts: ["${PRIVATE_KEY}"]
`))
	require.NoError(t, err)

	env := envresolver.FromMap(map[string]string{"RPC_KEY": "abc", "PRIVATE_KEY": testKey})
	cfg, err := newTestService(ConfigOptions{}).Build(doc, env)
	require.NoError(t, err)

	celo, _ := cfg.Network("celo")
	assert.Equal(t, "https://user:pw@rpc.example.com/abc?x=1", celo.URL)
	assert.Equal(t, "https://redacted@rpc.example.com/abc", celo.DisplayURL)
	assert.EqualValues(t, 42220, celo.ChainID)
	assert.False(t, celo.ChainIDDeclared)
	assert.Len(t, cfg.IssuesOfKind(entity.IssueChainIDInferred), 1)
}

func TestBuildNilDocument(t *testing.T) {
	_, err := newTestService(ConfigOptions{}).Build(nil, fullEnv())
	assert.Error(t, err)
}

func TestLoadUsesInjectedLookupOnly(t *testing.T) {
	svc := newTestService(ConfigOptions{})
	var asked []string
	lookup := func(key string) (string, bool) {
		asked = append(asked, key)
		switch key {
		case "DEVCHAIN_MNEMONIC":
			return testMnemonic, true
		case "PRIVATE_KEY":
			return testKey, true
		}
		return "", false
	}

	cfg, err := svc.Load("", lookup)
	require.NoError(t, err)
	assert.Equal(t, configloader.BuiltinSource, cfg.Source)
	assert.ElementsMatch(t, []string{"DEVCHAIN_MNEMONIC", "PRIVATE_KEY"}, asked)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.yml")
	require.NoError(t, os.WriteFile(path, configloader.BuiltinYAML(), 0o600))
	svc := newTestService(ConfigOptions{StrictCompiler: true})

	_, err := svc.Load(path, func(string) (string, bool) { return "", false })
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrCompilerVersionConflict)
	var missing *entity.MissingEnvError
	assert.True(t, errors.As(err, &missing))

	_, err = svc.Load(filepath.Join(t.TempDir(), "absent.yml"), nil)
	assert.Error(t, err)
}
