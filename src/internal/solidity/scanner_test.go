package solidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Scanner:
// - Sources without a contract declaration fail with ErrNoContractFound
// - view and pure functions never appear, whatever their visibility
// - Keywords inside comments and string literals never start a candidate
// - Multi-line headers with comments, modifiers and returns are parsed
// - The block comment right above a function is attached as its doc
// - Dynamic arrays and storage locations in parameter lists are handled

const tokenSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

import "./IERC20.sol";

contract Token is ERC20, Ownable {
    uint256 public totalSupply;

    function transfer(address to, uint256 amount) external returns (bool) {
        return true;
    }

    function balanceOf(address owner) external view returns (uint256) {
        return 0;
    }

    function _move(address from, address to) internal {}
}
`

func TestScan_TransferExample(t *testing.T) {
	contract, err := Scan(tokenSource)
	require.NoError(t, err)

	assert.Equal(t, "Token", contract.Name)
	assert.Equal(t, "0.8.20", contract.Pragma)
	require.Len(t, contract.Functions, 1)

	fn := contract.Functions[0]
	assert.Equal(t, "transfer", fn.Name)
	assert.Equal(t, VisibilityExternal, fn.Visibility)
	assert.Equal(t, []Parameter{{Name: "to", Type: "address"}, {Name: "amount", Type: "uint256"}}, fn.Params)
	assert.Equal(t, "transfer(address,uint256)", fn.Signature())
	assert.Empty(t, fn.Doc)
	assert.Equal(t, 9, fn.Line)
}

func TestScan_NoContract(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"interface only", "interface IFoo { function a() external; }"},
		{"library only", "library L { function f(uint256 x) public {} }"},
		{"contract in comment", "// contract Fake {\n/* contract Other is Base { */"},
		{"contract in string", `string constant S = "contract Fake {";`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract, err := Scan(tt.src)
			require.ErrorIs(t, err, ErrNoContractFound)
			assert.Nil(t, contract)
		})
	}
}

func TestScan_ContractName(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"brace", "contract Vault{}", "Vault"},
		{"inheritance", "contract Vault is Base, Other {}", "Vault"},
		{"abstract", "abstract contract Base {}", "Base"},
		{"first wins", "contract A {}\ncontract B {}", "A"},
		{"newline before brace", "contract Vault\n{\n}", "Vault"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract, err := Scan(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, contract.Name)
		})
	}
}

func TestScan_MutabilityFilter(t *testing.T) {
	src := `contract C {
    function a() external view returns (uint256) {}
    function b() public pure returns (uint256) {}
    function c(uint256 x) external
        view
        returns (uint256);
    function previewDeposit(uint256 assets) external returns (uint256) {}
    function d() public payable {}
}`
	s := NewScanner(src)
	contract, err := s.Scan()
	require.NoError(t, err)

	var names []string
	for _, fn := range contract.Functions {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"previewDeposit", "d"}, names)
	assert.Equal(t, 3, s.Dropped)
}

func TestScan_IgnoresCommentsAndStrings(t *testing.T) {
	src := `contract C {
    // function fake(address a) external {}
    /* function alsoFake(uint256 x) public { */
    string constant S = "function bogus(uint256 x) public {";
    function real(uint256 amount) external {}
}`
	contract, err := Scan(src)
	require.NoError(t, err)
	require.Len(t, contract.Functions, 1)
	assert.Equal(t, "real", contract.Functions[0].Name)
}

func TestScan_MultiLineHeader(t *testing.T) {
	src := `contract Router {
    function swap(
        address tokenIn, // sold
        uint256 amountIn,
        uint256[] calldata ids,
        bytes memory data /* hook payload */
    )
        public
        payable
        onlyOwner
        returns (uint256 out)
    {
        out = 0;
    }
}`
	contract, err := Scan(src)
	require.NoError(t, err)
	require.Len(t, contract.Functions, 1)

	fn := contract.Functions[0]
	assert.Equal(t, VisibilityPublic, fn.Visibility)
	assert.Equal(t, []Parameter{
		{Name: "tokenIn", Type: "address"},
		{Name: "amountIn", Type: "uint256"},
		{Name: "ids", Type: "uint256[]"},
		{Name: "data", Type: "bytes"},
	}, fn.Params)
	assert.Equal(t, "swap(address,uint256,uint256[],bytes)", fn.Signature())
}

func TestScan_Declarations(t *testing.T) {
	src := `abstract contract Hooks {
    function beforeSwap(address sender) external virtual;
    function afterSwap(address sender) external virtual returns (bytes4);
}`
	contract, err := Scan(src)
	require.NoError(t, err)
	require.Len(t, contract.Functions, 2)
	assert.Equal(t, "beforeSwap", contract.Functions[0].Name)
	assert.Equal(t, "afterSwap", contract.Functions[1].Name)
}

func TestScan_FunctionTypeParameter(t *testing.T) {
	src := `contract C {
    function register(function (uint256) external returns (uint256) cb, uint256 value) external {}
    function next(address to) external {}
}`
	contract, err := Scan(src)
	require.NoError(t, err)
	require.Len(t, contract.Functions, 2)
	assert.Equal(t, "register", contract.Functions[0].Name)
	assert.Equal(t, []Parameter{{Name: "value", Type: "uint256"}}, contract.Functions[0].Params)
	assert.Equal(t, "next", contract.Functions[1].Name)
}

func TestScan_Documentation(t *testing.T) {
	src := `contract Doc {
    /**
     * @notice Sends value.
     * @param to recipient
     */
    // SEND-1
    function send(address to) external {}

    /** @notice Orphaned. */
    uint256 public counter;
    function bump() external {}

    /// @notice Triple slash is skipped.
    function ping() external {}

    /* @notice Plain block. */

    function pong() external {}
}`
	contract, err := Scan(src)
	require.NoError(t, err)
	require.Len(t, contract.Functions, 4)

	byName := make(map[string]Function)
	for _, fn := range contract.Functions {
		byName[fn.Name] = fn
	}

	assert.Equal(t, "/**\n     * @notice Sends value.\n     * @param to recipient\n     */", byName["send"].Doc)
	assert.Empty(t, byName["bump"].Doc)
	assert.Empty(t, byName["ping"].Doc)
	assert.Equal(t, "/* @notice Plain block. */", byName["pong"].Doc)
}

func TestScan_UnterminatedHeader(t *testing.T) {
	src := `contract C {
    function ok(uint256 amount) external {}
    function broken(uint256 amount) external`
	contract, err := Scan(src)
	require.NoError(t, err)
	require.Len(t, contract.Functions, 1)
	assert.Equal(t, "ok", contract.Functions[0].Name)
}

func TestScan_Deterministic(t *testing.T) {
	first, err := Scan(tokenSource)
	require.NoError(t, err)
	second, err := Scan(tokenSource)
	require.NoError(t, err)

	for i := range first.Functions {
		assert.Equal(t, first.Functions[i].Signature(), second.Functions[i].Signature())
	}
}
