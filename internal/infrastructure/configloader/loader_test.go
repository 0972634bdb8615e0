package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deploy_config/internal/domain/entity"
)

func TestParseBuiltinKeepsBothCompilerDeclarations(t *testing.T) {
	doc := Builtin()

	require.Len(t, doc.Compilers, 2)
	assert.Equal(t, entity.CompilerFormScalar, doc.Compilers[0].Form)
	assert.Equal(t, "0.8.17", doc.Compilers[0].Version)
	assert.Equal(t, entity.CompilerFormMapping, doc.Compilers[1].Form)
	assert.Equal(t, "0.8.9", doc.Compilers[1].Version)
	require.NotNil(t, doc.Compilers[1].Optimizer)
	assert.True(t, *doc.Compilers[1].Optimizer.Enabled)
	assert.Equal(t, 200, *doc.Compilers[1].Optimizer.Runs)
	assert.Less(t, doc.Compilers[0].Line, doc.Compilers[1].Line)

	assert.Equal(t, []string{"localhost", "alfajores", "celo"}, doc.NetworkOrder)
	assert.Equal(t, BuiltinSource, doc.Source)
}

func TestParseNetworks(t *testing.T) {
	doc := Builtin()

	local := doc.Networks["localhost"]
	assert.Equal(t, "http://127.0.0.1:8545", local.URL)
	assert.Nil(t, local.ChainID)
	assert.Equal(t, entity.AccountKindMnemonic, local.Accounts.Kind())
	assert.Equal(t, "${DEVCHAIN_MNEMONIC}", local.Accounts.Mnemonic.Phrase)
	assert.Equal(t, DefaultHDPath, local.Accounts.Mnemonic.Path)
	assert.Equal(t, DefaultHDAccountCount, local.Accounts.Mnemonic.Count)
	assert.Equal(t, DefaultNetworkTimeout, local.Timeout)

	celo := doc.Networks["celo"]
	require.NotNil(t, celo.ChainID)
	assert.EqualValues(t, 42220, *celo.ChainID)
	assert.Equal(t, entity.AccountKindPrivateKeys, celo.Accounts.Kind())
	assert.Equal(t, []string{"${PRIVATE_KEY}"}, celo.Accounts.PrivateKeys)

	assert.Equal(t, []string{"DEVCHAIN_MNEMONIC", "PRIVATE_KEY"}, doc.EnvReferences())
}

func TestParseAccountForms(t *testing.T) {
	doc, err := Parse([]byte(`
solidity: "0.8.20"
networks:
  both:
    url: http://a
    accounts:
      mnemonic: "test test"
      privateKeys: ["${K}"]
  none:
    url: http://b
  hd:
    url: http://c
    timeout: 1500
    accounts:
      mnemonic: "${M}"
      path: "m/44'/52752'/0'/0"
      initialIndex: 3
      count: 5
      passphrase: "${PASS}"
`))
	require.NoError(t, err)

	assert.Equal(t, entity.AccountKindAmbiguous, doc.Networks["both"].Accounts.Kind())
	assert.Equal(t, entity.AccountKindNone, doc.Networks["none"].Accounts.Kind())

	hd := doc.Networks["hd"]
	assert.Equal(t, 1500*time.Millisecond, hd.Timeout)
	assert.Equal(t, "m/44'/52752'/0'/0", hd.Accounts.Mnemonic.Path)
	assert.Equal(t, 3, hd.Accounts.Mnemonic.InitialIndex)
	assert.Equal(t, 5, hd.Accounts.Mnemonic.Count)
	assert.Equal(t, []string{"K", "M", "PASS"}, doc.EnvReferences())
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"empty":             ``,
		"root not mapping":  `- a`,
		"networks twice":    "networks: {}\nnetworks: {}\n",
		"network twice":     "networks:\n  a: {url: x}\n  a: {url: y}\n",
		"remote accounts":   "networks:\n  a:\n    url: x\n    accounts: remote\n",
		"bad chain id":      "networks:\n  a:\n    url: x\n    chainId: abc\n",
		"solidity sequence": "solidity: [a]\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestParseRecordsUnknownKeys(t *testing.T) {
	doc, err := Parse([]byte("solidity: 0.8.9\npaths:\n  sources: ./src\ndefaultNetwork: celo\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"paths"}, doc.UnknownKeys)
	assert.Equal(t, "celo", doc.DefaultNetwork)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.yml")
	require.NoError(t, os.WriteFile(path, BuiltinYAML(), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Len(t, doc.Networks, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestResolveCompilerLastDeclarationWins(t *testing.T) {
	settings, issues, err := ResolveCompiler(Builtin().Compilers)
	require.NoError(t, err)

	assert.Equal(t, "0.8.9", settings.Version)
	assert.True(t, settings.Optimizer.Enabled)
	assert.Equal(t, 200, settings.Optimizer.Runs)

	require.Len(t, issues, 1)
	assert.Equal(t, entity.IssueCompilerVersionConflict, issues[0].Kind)
	assert.Contains(t, issues[0].Message, "0.8.17")
	assert.Contains(t, issues[0].Message, "0.8.9")
}

func TestResolveCompilerIsDeterministic(t *testing.T) {
	decls := Builtin().Compilers
	first, _, err := ResolveCompiler(decls)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, _, err := ResolveCompiler(decls)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveCompilerCases(t *testing.T) {
	enabled := true
	runs := 1000

	t.Run("scalar only gets defaults", func(t *testing.T) {
		s, issues, err := ResolveCompiler([]entity.CompilerDeclaration{{Form: entity.CompilerFormScalar, Version: "0.8.17", Line: 1}})
		require.NoError(t, err)
		assert.Empty(t, issues)
		assert.Equal(t, entity.CompilerSettings{Version: "0.8.17", Optimizer: entity.OptimizerSettings{Runs: DefaultOptimizerRuns}}, s)
	})

	t.Run("settings survive a later scalar", func(t *testing.T) {
		s, issues, err := ResolveCompiler([]entity.CompilerDeclaration{
			{Form: entity.CompilerFormMapping, Version: "0.8.9", Optimizer: &entity.OptimizerDeclaration{Enabled: &enabled, Runs: &runs}, Line: 1},
			{Form: entity.CompilerFormScalar, Version: "0.8.17", Line: 9},
		})
		require.NoError(t, err)
		assert.Equal(t, "0.8.17", s.Version)
		assert.Equal(t, entity.OptimizerSettings{Enabled: true, Runs: 1000}, s.Optimizer)
		require.Len(t, issues, 1)
		assert.Equal(t, 1, issues[0].Line)
	})

	t.Run("same version twice is a duplicate not a conflict", func(t *testing.T) {
		_, issues, err := ResolveCompiler([]entity.CompilerDeclaration{
			{Form: entity.CompilerFormScalar, Version: "0.8.9", Line: 1},
			{Form: entity.CompilerFormMapping, Version: "0.8.9", Line: 4},
		})
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, entity.IssueDuplicateCompiler, issues[0].Kind)
	})

	t.Run("mapping without version falls back to earlier scalar", func(t *testing.T) {
		s, issues, err := ResolveCompiler([]entity.CompilerDeclaration{
			{Form: entity.CompilerFormScalar, Version: "0.8.17", Line: 1},
			{Form: entity.CompilerFormMapping, Optimizer: &entity.OptimizerDeclaration{Enabled: &enabled}, Line: 4},
		})
		require.NoError(t, err)
		assert.Empty(t, issues)
		assert.Equal(t, "0.8.17", s.Version)
		assert.True(t, s.Optimizer.Enabled)
	})

	t.Run("missing", func(t *testing.T) {
		_, _, err := ResolveCompiler(nil)
		assert.ErrorIs(t, err, entity.ErrMissingCompilerVersion)
	})

	t.Run("malformed", func(t *testing.T) {
		_, _, err := ResolveCompiler([]entity.CompilerDeclaration{{Version: "v0.8", Line: 2}})
		assert.ErrorIs(t, err, entity.ErrInvalidCompilerVersion)
		assert.True(t, strings.Contains(err.Error(), "line 2"))
	})
}

func TestShippedConfigMatchesBuiltin(t *testing.T) {
	doc, err := Load(filepath.Join("..", "..", "..", DefaultConfigPath))
	require.NoError(t, err)
	builtin := Builtin()

	assert.Equal(t, builtin.NetworkOrder, doc.NetworkOrder)
	assert.Equal(t, builtin.EnvReferences(), doc.EnvReferences())
	require.Len(t, doc.Compilers, len(builtin.Compilers))
	for i := range doc.Compilers {
		assert.Equal(t, builtin.Compilers[i].Version, doc.Compilers[i].Version)
	}
	for name, n := range builtin.Networks {
		assert.Equal(t, n.URL, doc.Networks[name].URL, name)
		assert.Equal(t, n.ChainID, doc.Networks[name].ChainID, name)
	}
}
