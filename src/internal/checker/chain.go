package checker

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// checkChain verifies that every deployment on the node's chain has code.
// Deployments for other chains are only noted. All findings are warnings.
func (c *Checker) checkChain(ctx context.Context, d *document, r *Report) {
	deployments := d.deployments()
	if len(deployments) == 0 {
		return
	}

	chainID, err := c.chain.ChainID(ctx)
	if err != nil {
		r.add(SeverityWarning, fmt.Sprintf("RPC check skipped: %v", err))
		return
	}

	for i, v := range deployments {
		dep := object(v)
		addr, _ := dep["address"].(string)
		if !common.IsHexAddress(addr) {
			continue
		}
		raw, ok := chainIDOf(dep["chainId"])
		if !ok {
			continue
		}
		want, ok := new(big.Int).SetString(raw, 10)
		if !ok || want.Cmp(chainID) != 0 {
			r.add(SeverityWarning, fmt.Sprintf("Deployment %d is on chain %s, RPC endpoint serves chain %s; code not checked", i, raw, chainID))
			continue
		}

		code, err := c.chain.CodeAt(ctx, common.HexToAddress(addr), nil)
		if err != nil {
			r.add(SeverityWarning, fmt.Sprintf("Deployment %d code lookup failed: %v", i, err))
			continue
		}
		if len(code) == 0 {
			r.add(SeverityWarning, fmt.Sprintf("Deployment %d has no contract code at %s on chain %s", i, addr, chainID))
		}
	}
}
