package gasmodel

import (
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/router/usecase/route"
)

const (
	zeroByteGas    = 4
	nonZeroByteGas = 16

	// l1ScalarPrecision is the denominator of domain.L1GasData.Scalar.
	l1ScalarPrecision = 1_000_000
)

// l1FeeCalculator estimates the L1 data fee of executing routes on an L2
// from the size of their encoded paths.
type l1FeeCalculator struct {
	data   domain.L1GasData
	pricer *tokenPricer
}

var _ domain.L1GasFeeCalculator = &l1FeeCalculator{}

// CalculateL1GasFees implements domain.L1GasFeeCalculator.
// fee = (calldata gas + overhead) * l1BaseFee * scalar / 1e6
func (c *l1FeeCalculator) CalculateL1GasFees(routes []*domain.RouteWithValidQuote) (domain.L1ToL2GasCosts, error) {
	gasUsed := osmomath.ZeroInt()
	for _, r := range routes {
		path, err := route.EncodePath(r.Route)
		if err != nil {
			return domain.L1ToL2GasCosts{}, err
		}
		gasUsed = gasUsed.Add(osmomath.NewInt(CalldataGas(path)))
	}
	if !c.data.Overhead.IsNil() {
		gasUsed = gasUsed.Add(c.data.Overhead)
	}

	fee := gasUsed.Mul(c.data.L1BaseFeeWei)
	if !c.data.Scalar.IsNil() {
		fee = fee.Mul(c.data.Scalar).QuoRaw(l1ScalarPrecision)
	}

	inToken, err := c.pricer.toQuote(fee)
	if err != nil {
		return domain.L1ToL2GasCosts{}, err
	}
	inUSD, err := c.pricer.toUSD(fee)
	if err != nil {
		return domain.L1ToL2GasCosts{}, err
	}

	return domain.L1ToL2GasCosts{
		GasUsedL1:           gasUsed,
		GasCostL1USD:        inUSD,
		GasCostL1QuoteToken: inToken,
	}, nil
}

// CalldataGas returns the intrinsic gas charged for the bytes.
func CalldataGas(data []byte) int64 {
	gas := int64(0)
	for _, b := range data {
		if b == 0 {
			gas += zeroByteGas
		} else {
			gas += nonZeroByteGas
		}
	}
	return gas
}

// l1GasModel is a gas model of a chain paying L1 settlement fees.
type l1GasModel struct {
	domain.GasModel
	*l1FeeCalculator
}
