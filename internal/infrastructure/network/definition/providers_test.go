package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deploy_config/internal/domain/entity"
	"deploy_config/internal/pkg/logger"
)

func TestKnownCeloIdentifiers(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.Nop())

	alfajores, ok := p.GetNetworkDefinitionByName("alfajores")
	require.True(t, ok)
	assert.EqualValues(t, 44787, alfajores.ChainID)

	celo, ok := p.GetNetworkDefinitionByName("celo")
	require.True(t, ok)
	assert.EqualValues(t, 42220, celo.ChainID)

	byID, ok := p.GetNetworkDefinitionByChainID(42220)
	require.True(t, ok)
	assert.Equal(t, "celo", byID.Identifier)

	_, ok = p.GetNetworkDefinitionByName("nope")
	assert.False(t, ok)
}

func TestLocalChainsShareChainID(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.Nop())

	def, ok := p.GetNetworkDefinitionByChainID(31337)
	require.True(t, ok)
	assert.Equal(t, "localhost", def.Identifier)
	assert.True(t, def.Local)
}

func TestExtraDefinitionOverrides(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.Nop(), entity.NetworkDefinition{
		ChainID:    1337,
		Identifier: "localhost",
		Name:       "celo devchain",
		Local:      true,
	})

	def, ok := p.GetNetworkDefinitionByName("localhost")
	require.True(t, ok)
	assert.EqualValues(t, 1337, def.ChainID)

	all := p.GetAllNetworkDefinitions()
	assert.Len(t, all, len(allKnownDefinitions))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Identifier, all[i].Identifier)
	}
}

func TestNilProvider(t *testing.T) {
	var p *NetworkDefinitionProvider
	assert.Empty(t, p.GetAllNetworkDefinitions())
	_, ok := p.GetNetworkDefinitionByChainID(1)
	assert.False(t, ok)
}
