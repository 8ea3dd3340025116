package gasmodel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
)

type gasModelFactory struct {
	protocol       domain.Protocol
	v3PoolProvider mvc.PoolProvider
	v2PoolProvider mvc.PoolProvider
	logger         log.Logger
}

var _ mvc.GasModelFactory = &gasModelFactory{}

// NewGasModelFactory returns a factory of heuristic gas models for the protocol.
// The pool providers are used to price native gas in the quote token and in USD.
// v2PoolProvider may be nil.
func NewGasModelFactory(protocol domain.Protocol, v3PoolProvider, v2PoolProvider mvc.PoolProvider, logger log.Logger) mvc.GasModelFactory {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &gasModelFactory{
		protocol:       protocol,
		v3PoolProvider: v3PoolProvider,
		v2PoolProvider: v2PoolProvider,
		logger:         logger,
	}
}

// BuildGasModel implements mvc.GasModelFactory.
func (f *gasModelFactory) BuildGasModel(ctx context.Context, params domain.GasModelParams) (domain.GasModel, error) {
	if params.GasPriceWei.IsNil() || params.GasPriceWei.IsNegative() {
		return nil, fmt.Errorf("invalid gas price %v", params.GasPriceWei)
	}

	native, err := domain.WrappedNativeToken(params.ChainID)
	if err != nil {
		return nil, err
	}

	usdToken, ok := domain.USDStablecoin(params.ChainID)
	if !ok {
		usdToken = native
	}

	var pairs []domain.TokenPair
	for _, token := range []domain.Token{params.QuoteToken, usdToken} {
		if token.Equals(native) {
			continue
		}
		for _, fee := range domain.V3FeeTiers {
			pairs = append(pairs, domain.TokenPair{TokenA: native, TokenB: token, Fee: fee})
		}
	}

	var v3Pools, v2Pools domain.PoolAccessor
	if len(pairs) > 0 {
		v3Pools, err = f.v3PoolProvider.GetPools(ctx, pairs, params.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("fetching native pricing pools: %w", err)
		}

		if f.v2PoolProvider != nil {
			v2Pools, err = f.v2PoolProvider.GetPools(ctx, v2Pairs(pairs), params.BlockNumber)
			if err != nil {
				// V3 pools are the primary pricing source.
				f.logger.Warn("failed to fetch V2 pricing pools", zap.Error(err))
				v2Pools = nil
			}
		}
	}

	pricer := newTokenPricer(native, params.QuoteToken, usdToken, v3Pools, v2Pools)
	if pricer.nativeQuotePool == nil && !params.QuoteToken.Equals(native) {
		f.logger.Debug("no native pool for the quote token, gas costs are not priced", zap.Stringer("quote_token", params.QuoteToken))
	}

	var model domain.GasModel = &heuristicGasModel{
		gasUnits:    gasUnitsForProtocol(f.protocol),
		gasPriceWei: params.GasPriceWei,
		pricer:      pricer,
	}

	if params.L1GasData != nil && domain.HasL1Fee(params.ChainID) {
		model = &l1GasModel{
			GasModel:        model,
			l1FeeCalculator: &l1FeeCalculator{data: *params.L1GasData, pricer: pricer},
		}
	}

	return model, nil
}

// v2Pairs keeps one pair per token couple with the V2 fee.
func v2Pairs(pairs []domain.TokenPair) []domain.TokenPair {
	seen := make(map[string]struct{}, len(pairs))
	out := make([]domain.TokenPair, 0, len(pairs))
	for _, pair := range pairs {
		key := domain.PoolKey(pair.TokenA, pair.TokenB, domain.V2FeeAmount)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, domain.TokenPair{TokenA: pair.TokenA, TokenB: pair.TokenB, Fee: domain.V2FeeAmount})
	}
	return out
}
