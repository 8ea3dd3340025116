package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
)

// FallbackSimulator tries each simulator in order until one reaches a verdict.
// Simulators that do not support the chain are skipped. A simulator returning an
// error hands over to the next one.
type FallbackSimulator struct {
	chainID    domain.ChainID
	simulators []mvc.Simulator
	logger     log.Logger
}

var _ mvc.Simulator = &FallbackSimulator{}

// NewFallbackSimulator creates a simulator chain. The order of simulators is the order of preference.
func NewFallbackSimulator(chainID domain.ChainID, logger log.Logger, simulators ...mvc.Simulator) *FallbackSimulator {
	return &FallbackSimulator{
		chainID:    chainID,
		simulators: simulators,
		logger:     logger,
	}
}

// Name implements mvc.Simulator.
func (s *FallbackSimulator) Name() string {
	return "fallback"
}

// Supports implements mvc.Simulator.
func (s *FallbackSimulator) Supports(chainID domain.ChainID) bool {
	for _, simulator := range s.simulators {
		if simulator.Supports(chainID) {
			return true
		}
	}
	return false
}

// Simulate implements mvc.Simulator.
// Returns domain.ErrNoSimulatorAvailable when every simulator declined or failed.
func (s *FallbackSimulator) Simulate(ctx context.Context, from common.Address, swapOptions domain.SwapOptions, swapRoute *domain.SwapRoute) (domain.SimulationStatus, error) {
	for _, simulator := range s.simulators {
		if !simulator.Supports(s.chainID) {
			s.logger.Debug("simulator does not support chain", zap.String("simulator", simulator.Name()), zap.Uint64("chain_id", uint64(s.chainID)))
			continue
		}

		status, err := simulator.Simulate(ctx, from, swapOptions, swapRoute)
		if err != nil {
			s.logger.Warn("simulator failed, trying next", zap.String("simulator", simulator.Name()), zap.Error(err))
			continue
		}

		return status, nil
	}

	return domain.SimulationStatusNotSupported, domain.ErrNoSimulatorAvailable
}

// swapInput returns the token and the amount spent by the plan.
func swapInput(swapRoute *domain.SwapRoute) domain.CurrencyAmount {
	if swapRoute.TradeType == domain.TradeTypeExactOutput {
		return swapRoute.Quote
	}
	return swapRoute.Amount
}

func applyGasMultiplier(gasUsed uint64, multiplierPercent int) uint64 {
	if multiplierPercent <= 0 {
		return gasUsed
	}
	return gasUsed * uint64(multiplierPercent) / 100
}
