package mvc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
)

// Simulator simulates the execution of a plan.
//
// A returned error means the simulation could not be performed and a fallback
// may be tried. A status without error is a verdict on the trade.
type Simulator interface {
	Name() string

	// Supports is the capability check run before Simulate.
	Supports(chainID domain.ChainID) bool

	Simulate(ctx context.Context, from common.Address, swapOptions domain.SwapOptions, swapRoute *domain.SwapRoute) (domain.SimulationStatus, error)
}

// SwapCalldataBuilder encodes the method parameters executing a plan.
type SwapCalldataBuilder interface {
	BuildMethodParameters(swapRoute *domain.SwapRoute, swapOptions domain.SwapOptions) (*domain.MethodParameters, error)
}
