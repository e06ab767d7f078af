package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/clearsign/src/internal/solidity"
)

const flattened = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

// File: @openzeppelin/contracts/token/ERC20/ERC20.sol
/** @dev base token */
contract ERC20 {
    function transfer(address to, uint256 amount) public returns (bool) {}
}

// File: contracts/Vault.sol
contract Vault is ERC20 {
    function deposit(uint256 amount) external {}
}
`

func TestCleanCode(t *testing.T) {
	cleaned, stripped := CleanCode(flattened)
	assert.Equal(t, 1, stripped)
	assert.Contains(t, cleaned, "// File: @openzeppelin/contracts/token/ERC20/ERC20.sol\n/* --- external library code commented out ---")
	assert.Contains(t, cleaned, "/** @dev base token * /")
	assert.Contains(t, cleaned, "// File: contracts/Vault.sol\ncontract Vault is ERC20 {")

	contract, err := solidity.Scan(cleaned)
	require.NoError(t, err)
	assert.Equal(t, "Vault", contract.Name)
	require.Len(t, contract.Functions, 1)
	assert.Equal(t, "deposit", contract.Functions[0].Name)
}

func TestCleanCode_NoHeaders(t *testing.T) {
	src := "contract A {}"
	cleaned, stripped := CleanCode(src)
	assert.Equal(t, src, cleaned)
	assert.Zero(t, stripped)
}

func TestIsLibrary(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"@openzeppelin/contracts/access/Ownable.sol", true},
		{"node_modules/solady/src/Lib.sol", true},
		{"lib/forge-std/src/Test.sol", true},
		{"contracts/test/Helper.sol", true},
		{"contracts/tokens/ERC721Enumerable.sol", true},
		{"IERC20.sol", true},
		{"BEP20Token.sol", true},
		{"contracts/Vault.sol", false},
		{"contracts/ERC4626Router.sol", true},
		{"contracts/MyERC.sol", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isLibrary(tt.path))
		})
	}
}
