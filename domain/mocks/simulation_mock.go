package mocks

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
)

var (
	_ mvc.Simulator           = &SimulatorMock{}
	_ mvc.SwapCalldataBuilder = &SwapCalldataBuilderMock{}
)

// SimulatorMock is a mock implementation of mvc.Simulator.
type SimulatorMock struct {
	NameValue    string
	SupportsFunc func(chainID domain.ChainID) bool
	SimulateFunc func(ctx context.Context, from common.Address, swapOptions domain.SwapOptions, swapRoute *domain.SwapRoute) (domain.SimulationStatus, error)

	// Calls counts the Simulate invocations.
	Calls int
}

// Name implements mvc.Simulator.
func (m *SimulatorMock) Name() string {
	return m.NameValue
}

// Supports implements mvc.Simulator.
func (m *SimulatorMock) Supports(chainID domain.ChainID) bool {
	if m.SupportsFunc != nil {
		return m.SupportsFunc(chainID)
	}
	return true
}

// Simulate implements mvc.Simulator.
func (m *SimulatorMock) Simulate(ctx context.Context, from common.Address, swapOptions domain.SwapOptions, swapRoute *domain.SwapRoute) (domain.SimulationStatus, error) {
	m.Calls++
	if m.SimulateFunc != nil {
		return m.SimulateFunc(ctx, from, swapOptions, swapRoute)
	}
	panic("unimplemented")
}

// WithSimulationResult returns a simulator always answering status and err.
func WithSimulationResult(name string, status domain.SimulationStatus, err error) *SimulatorMock {
	return &SimulatorMock{
		NameValue: name,
		SimulateFunc: func(ctx context.Context, from common.Address, swapOptions domain.SwapOptions, swapRoute *domain.SwapRoute) (domain.SimulationStatus, error) {
			return status, err
		},
	}
}

// SwapCalldataBuilderMock is a mock implementation of mvc.SwapCalldataBuilder.
type SwapCalldataBuilderMock struct {
	BuildMethodParametersFunc func(swapRoute *domain.SwapRoute, swapOptions domain.SwapOptions) (*domain.MethodParameters, error)
}

// BuildMethodParameters implements mvc.SwapCalldataBuilder.
func (m *SwapCalldataBuilderMock) BuildMethodParameters(swapRoute *domain.SwapRoute, swapOptions domain.SwapOptions) (*domain.MethodParameters, error) {
	if m.BuildMethodParametersFunc != nil {
		return m.BuildMethodParametersFunc(swapRoute, swapOptions)
	}
	panic("unimplemented")
}
