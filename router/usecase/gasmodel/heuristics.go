package gasmodel

import (
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
)

const (
	v3BaseSwapCost    = 2_000
	v3CostPerHop      = 80_000
	v3CostPerInitTick = 31_000
	v2BaseSwapCost    = 135_000
	v2CostPerExtraHop = 50_000
)

// gasUnitsFunc estimates the gas units used by executing the route.
type gasUnitsFunc func(r *domain.RouteWithValidQuote) osmomath.Int

// V3GasUnits is 2000 + 80000 per hop + 31000 per initialized tick crossed.
func V3GasUnits(r *domain.RouteWithValidQuote) osmomath.Int {
	hops := int64(len(r.Route.GetPools()))
	ticks := int64(totalTicks(r.InitializedTicksCrossedList))
	return osmomath.NewInt(v3BaseSwapCost + v3CostPerHop*hops + v3CostPerInitTick*ticks)
}

// V2GasUnits is 135000 + 50000 per hop after the first.
func V2GasUnits(r *domain.RouteWithValidQuote) osmomath.Int {
	return v2SectionUnits(len(r.Route.GetPools()))
}

// MixedGasUnits sums the cost of each run of consecutive same-protocol hops.
// The V3 base cost is paid once.
func MixedGasUnits(r *domain.RouteWithValidQuote) osmomath.Int {
	pools := r.Route.GetPools()
	total := osmomath.NewInt(v3BaseSwapCost)

	for start := 0; start < len(pools); {
		protocol := pools[start].GetProtocol()
		end := start + 1
		for end < len(pools) && pools[end].GetProtocol() == protocol {
			end++
		}

		hops := end - start
		if protocol == domain.ProtocolV2 {
			total = total.Add(v2SectionUnits(hops))
		} else {
			total = total.Add(osmomath.NewInt(v3CostPerHop * int64(hops)))
		}
		start = end
	}

	ticks := int64(totalTicks(r.InitializedTicksCrossedList))
	return total.Add(osmomath.NewInt(v3CostPerInitTick * ticks))
}

func v2SectionUnits(hops int) osmomath.Int {
	if hops < 1 {
		return osmomath.ZeroInt()
	}
	return osmomath.NewInt(v2BaseSwapCost + v2CostPerExtraHop*int64(hops-1))
}

func totalTicks(ticks []uint32) uint32 {
	total := uint32(0)
	for _, t := range ticks {
		total += t
	}
	return total
}

// gasUnitsForProtocol returns the heuristic of the route family.
func gasUnitsForProtocol(protocol domain.Protocol) gasUnitsFunc {
	switch protocol {
	case domain.ProtocolV2:
		return V2GasUnits
	case domain.ProtocolMixed:
		return MixedGasUnits
	default:
		return V3GasUnits
	}
}

// heuristicGasModel prices the estimated gas units at the request gas price.
type heuristicGasModel struct {
	gasUnits    gasUnitsFunc
	gasPriceWei osmomath.Int
	pricer      *tokenPricer
}

var _ domain.GasModel = &heuristicGasModel{}

// EstimateGasCost implements domain.GasModel.
func (m *heuristicGasModel) EstimateGasCost(r *domain.RouteWithValidQuote) (domain.GasCost, error) {
	units := m.gasUnits(r)
	wei := units.Mul(m.gasPriceWei)

	inToken, err := m.pricer.toQuote(wei)
	if err != nil {
		return domain.GasCost{}, err
	}
	inUSD, err := m.pricer.toUSD(wei)
	if err != nil {
		return domain.GasCost{}, err
	}

	return domain.GasCost{
		GasEstimate:    units,
		GasCostInToken: inToken,
		GasCostInUSD:   inUSD,
	}, nil
}
