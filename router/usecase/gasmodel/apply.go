package gasmodel

import (
	"fmt"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
)

// ApplyGasModel fills the gas fields of the route and computes its gas adjusted quote.
// If the model also charges L1 fees, they are added to the gas cost of the route.
//
// Exact in: adjusted = raw - gas, floored at zero.
// Exact out: adjusted = raw + gas.
func ApplyGasModel(r *domain.RouteWithValidQuote, gasModel domain.GasModel) error {
	cost, err := gasModel.EstimateGasCost(r)
	if err != nil {
		return err
	}

	quoteToken := r.QuoteToken()
	if !cost.GasCostInToken.Token.Equals(quoteToken) {
		return fmt.Errorf("gas cost is in %s, expected the quote token %s", cost.GasCostInToken.Token, quoteToken)
	}

	gasInToken := cost.GasCostInToken
	gasInUSD := cost.GasCostInUSD
	r.GasCostL1QuoteToken = domain.ZeroAmount(quoteToken)

	if l1Calculator, ok := gasModel.(domain.L1GasFeeCalculator); ok {
		l1Costs, err := l1Calculator.CalculateL1GasFees([]*domain.RouteWithValidQuote{r})
		if err != nil {
			return err
		}
		gasInToken = gasInToken.Add(l1Costs.GasCostL1QuoteToken)
		gasInUSD = gasInUSD.Add(l1Costs.GasCostL1USD)
		r.GasCostL1QuoteToken = l1Costs.GasCostL1QuoteToken
	}

	r.GasEstimate = cost.GasEstimate
	r.GasCostInToken = gasInToken
	r.GasCostInUSD = gasInUSD

	if r.TradeType == domain.TradeTypeExactOutput {
		r.QuoteAdjustedForGas = r.RawQuote.Add(gasInToken)
		return nil
	}

	if gasInToken.Amount.GT(r.RawQuote.Amount) {
		r.QuoteAdjustedForGas = domain.NewCurrencyAmount(quoteToken, osmomath.ZeroInt())
		return nil
	}
	r.QuoteAdjustedForGas = r.RawQuote.Sub(gasInToken)
	return nil
}
