package solidity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBundle(t *testing.T) {
	assert.True(t, IsBundle(`  {"sources": {"a.sol": {"content": "x"}}}`))
	assert.True(t, IsBundle(`{{"language":"Solidity","sources":{"a.sol":{"content":"x"}}}}`))
	assert.False(t, IsBundle("pragma solidity ^0.8.0;\ncontract A {}"))
	assert.False(t, IsBundle(`{"abi": []}`))
}

func TestExtractBundle(t *testing.T) {
	vault := "contract Vault {}" + strings.Repeat("\n", 300)
	standard := `{
  "language": "Solidity",
  "sources": {
    "@openzeppelin/contracts/token/ERC20/ERC20.sol": {"content": "contract ERC20 {}"},
    "contracts/interfaces/IVault.sol": {"content": "interface IVault {}"},
    "contracts/Vault.sol": {"content": ` + quote(vault) + `},
    "contracts/test/VaultMock.sol": {"content": "contract VaultMock {}"}
  }
}`

	t.Run("size and penalties", func(t *testing.T) {
		path, content, err := ExtractBundle(standard, "")
		require.NoError(t, err)
		assert.Equal(t, "contracts/Vault.sol", path)
		assert.Equal(t, vault, content)
	})

	t.Run("contract hint", func(t *testing.T) {
		path, _, err := ExtractBundle(standard, "VaultMock")
		require.NoError(t, err)
		assert.Equal(t, "contracts/test/VaultMock.sol", path)
	})

	t.Run("double braces", func(t *testing.T) {
		path, _, err := ExtractBundle("{"+standard+"}", "")
		require.NoError(t, err)
		assert.Equal(t, "contracts/Vault.sol", path)
	})

	t.Run("bare source map", func(t *testing.T) {
		path, content, err := ExtractBundle(`{"src/A.sol": {"content": "contract A {}\r\n"}}`, "")
		require.NoError(t, err)
		assert.Equal(t, "src/A.sol", path)
		assert.Equal(t, "contract A {}\n", content)
	})

	t.Run("only library sources", func(t *testing.T) {
		path, _, err := ExtractBundle(`{"sources": {"@openzeppelin/B.sol": {"content": "contract B {}"}}}`, "")
		require.NoError(t, err)
		assert.Equal(t, "@openzeppelin/B.sol", path)
	})

	t.Run("invalid", func(t *testing.T) {
		_, _, err := ExtractBundle(`{"content": `, "")
		assert.Error(t, err)
	})
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, "\n", `\n`) + `"`
}
