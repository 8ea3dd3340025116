package mvc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
)

// TokenProvider resolves token metadata.
type TokenProvider interface {
	// GetTokens resolves the addresses. Addresses whose metadata cannot be read
	// are absent from the accessor.
	GetTokens(ctx context.Context, addresses []common.Address, blockNumber *uint64) (domain.TokenAccessor, error)
}
