package descriptor

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// CanonicalType expands the Solidity aliases uint, int and byte to their
// ABI names, keeping any array suffix.
func CanonicalType(typ string) string {
	base, suffix := typ, ""
	if i := strings.IndexByte(typ, '['); i >= 0 {
		base, suffix = typ[:i], typ[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	case "byte":
		base = "bytes1"
	}
	return base + suffix
}

// CanonicalSignature rewrites every parameter type of sig with CanonicalType.
func CanonicalSignature(sig string) string {
	open := strings.IndexByte(sig, '(')
	if open < 0 || !strings.HasSuffix(sig, ")") {
		return sig
	}
	inner := sig[open+1 : len(sig)-1]
	if inner == "" {
		return sig
	}
	types := strings.Split(inner, ",")
	for i, t := range types {
		types[i] = CanonicalType(strings.TrimSpace(t))
	}
	return sig[:open] + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector of sig as 0x-prefixed hex.
func Selector(sig string) string {
	hash := crypto.Keccak256([]byte(CanonicalSignature(sig)))
	return hexutil.Encode(hash[:4])
}
