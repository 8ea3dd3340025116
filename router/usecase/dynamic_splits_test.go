package usecase_test

import (
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/router/usecase"
	"github.com/baseswapfi/sor/router/usecase/routertesting"
)

type quotedRoute struct {
	route   domain.Route
	quoteFn func(osmomath.Int) osmomath.Int
}

func splitConfig(distributionPercent, minSplits, maxSplits int) domain.RoutingConfig {
	config := routertesting.DefaultRoutingConfig()
	config.DistributionPercent = distributionPercent
	config.MinSplits = minSplits
	config.MaxSplits = maxSplits
	return config
}

func quotedCandidates(amount domain.CurrencyAmount, tradeType domain.TradeType, distributionPercent int, gasCost int64, routes ...quotedRoute) []*usecase.RouteCandidate {
	candidates := make([]*usecase.RouteCandidate, len(routes))
	for i, r := range routes {
		candidates[i] = usecase.NewQuotedCandidate(r.route, amount, tokenB, tradeType, distributionPercent, gasCost, r.quoteFn)
	}
	return candidates
}

func planIDs(plan []*domain.RouteWithValidQuote) []string {
	ids := make([]string, len(plan))
	for i, r := range plan {
		ids[i] = r.Route.ID()
	}
	return ids
}

func planAdjusted(plan []*domain.RouteWithValidQuote) osmomath.Int {
	total := osmomath.ZeroInt()
	for _, r := range plan {
		total = total.Add(r.QuoteAdjustedForGas.Amount)
	}
	return total
}

func planAllocated(plan []*domain.RouteWithValidQuote) osmomath.Int {
	total := osmomath.ZeroInt()
	for _, r := range plan {
		total = total.Add(r.Amount.Amount)
	}
	return total
}

func (s *RouterTestSuite) TestGetBestSwapRoute() {
	var (
		direct = routertesting.MustNewRoute(tokenA, tokenB, poolAB)
		twoHop = routertesting.MustNewRoute(tokenA, tokenB, poolAC, poolCB)

		amount = routertesting.Amount(tokenA, 1000)
	)

	tests := map[string]struct {
		routes  []quotedRoute
		gasCost int64
		config  domain.RoutingConfig

		// expected maps route IDs to their percent. Nil means no plan.
		expected map[string]int
	}{
		"linear direct route beats a 50/50 split": {
			routes: []quotedRoute{
				{route: direct, quoteFn: routertesting.LinearQuote(1, 1)},
				{route: twoHop, quoteFn: routertesting.LinearQuote(99, 100)},
			},
			gasCost: 1,
			config:  splitConfig(50, 1, 2),

			expected: map[string]int{direct.ID(): 100},
		},
		"concave routes are split 50/50": {
			routes: []quotedRoute{
				{route: direct, quoteFn: routertesting.ConcaveQuote(1000)},
				{route: twoHop, quoteFn: routertesting.ConcaveQuote(1000)},
			},
			gasCost: 10,
			config:  splitConfig(50, 1, 2),

			expected: map[string]int{direct.ID(): 50, twoHop.ID(): 50},
		},
		"gas cost of a second route outweighs the split gain": {
			routes: []quotedRoute{
				{route: direct, quoteFn: routertesting.ConcaveQuote(1000)},
				{route: twoHop, quoteFn: routertesting.ConcaveQuote(900)},
			},
			gasCost: 200,
			config:  splitConfig(50, 1, 2),

			expected: map[string]int{direct.ID(): 100},
		},
		"min splits forces a split": {
			routes: []quotedRoute{
				{route: direct, quoteFn: routertesting.LinearQuote(1, 1)},
				{route: twoHop, quoteFn: routertesting.LinearQuote(99, 100)},
			},
			gasCost: 1,
			config:  splitConfig(50, 2, 2),

			expected: map[string]int{direct.ID(): 50, twoHop.ID(): 50},
		},
		"routes without a full amount quote can still be split": {
			routes: []quotedRoute{
				{route: direct, quoteFn: capped(500, routertesting.LinearQuote(1, 1))},
				{route: twoHop, quoteFn: capped(500, routertesting.LinearQuote(1, 1))},
			},
			gasCost: 1,
			config:  splitConfig(50, 1, 2),

			expected: map[string]int{direct.ID(): 50, twoHop.ID(): 50},
		},
		"no feasible plan": {
			routes: []quotedRoute{
				{route: direct, quoteFn: capped(250, routertesting.LinearQuote(1, 1))},
			},
			gasCost: 1,
			config:  splitConfig(25, 1, 3),
		},
	}

	for name, tc := range tests {
		s.Run(name, func() {
			candidates := quotedCandidates(amount, domain.TradeTypeExactInput, tc.config.DistributionPercent, tc.gasCost, tc.routes...)

			plan := usecase.GetBestSwapRoute(amount, candidates, domain.TradeTypeExactInput, tc.config)

			if tc.expected == nil {
				s.Require().Nil(plan)
				return
			}

			s.Require().Len(plan, len(tc.expected))
			for _, r := range plan {
				percent, ok := tc.expected[r.Route.ID()]
				s.Require().True(ok, r.Route.ID())
				s.Require().Equal(percent, r.Percent)
			}
			s.Require().Equal(amount.Amount, planAllocated(plan))
		})
	}
}

// capped fails quotes above limit.
func capped(limit int64, fn func(osmomath.Int) osmomath.Int) func(osmomath.Int) osmomath.Int {
	return func(amount osmomath.Int) osmomath.Int {
		if amount.GT(osmomath.NewInt(limit)) {
			return osmomath.ZeroInt()
		}
		return fn(amount)
	}
}

func (s *RouterTestSuite) TestGetBestSwapRoute_AmountConservation() {
	var (
		direct = routertesting.MustNewRoute(tokenA, tokenB, poolAB)
		twoHop = routertesting.MustNewRoute(tokenA, tokenB, poolAC, poolCB)
		other  = routertesting.MustNewRoute(tokenA, tokenB, poolAC2, poolCB2)
	)

	for _, value := range []int64{1001, 999_999, 7, 1_000_003} {
		amount := routertesting.Amount(tokenA, value)
		for _, tradeType := range []domain.TradeType{domain.TradeTypeExactInput, domain.TradeTypeExactOutput} {
			candidates := quotedCandidates(amount, tradeType, 5, 1,
				quotedRoute{route: direct, quoteFn: routertesting.ConcaveQuote(value)},
				quotedRoute{route: twoHop, quoteFn: routertesting.ConcaveQuote(value / 2)},
				quotedRoute{route: other, quoteFn: routertesting.ConcaveQuote(value / 3)},
			)

			plan := usecase.GetBestSwapRoute(amount, candidates, tradeType, splitConfig(5, 1, 3))
			if plan == nil {
				continue
			}

			s.Require().Equal(amount.Amount, planAllocated(plan), "amount %d, %s", value, tradeType)

			percents := 0
			for _, r := range plan {
				percents += r.Percent
			}
			s.Require().Equal(100, percents)
		}
	}
}

func (s *RouterTestSuite) TestGetBestSwapRoute_SplitNonRegression() {
	var (
		direct = routertesting.MustNewRoute(tokenA, tokenB, poolAB)
		twoHop = routertesting.MustNewRoute(tokenA, tokenB, poolAC, poolCB)
		other  = routertesting.MustNewRoute(tokenA, tokenB, poolAC2, poolCB2)
		amount = routertesting.Amount(tokenA, 10_000)
	)

	for _, tradeType := range []domain.TradeType{domain.TradeTypeExactInput, domain.TradeTypeExactOutput} {
		candidates := quotedCandidates(amount, tradeType, 10, 25,
			quotedRoute{route: direct, quoteFn: routertesting.ConcaveQuote(20_000)},
			quotedRoute{route: twoHop, quoteFn: routertesting.ConcaveQuote(8_000)},
			quotedRoute{route: other, quoteFn: routertesting.ConcaveQuote(4_000)},
		)

		var previous []*domain.RouteWithValidQuote
		for maxSplits := 1; maxSplits <= 3; maxSplits++ {
			plan := usecase.GetBestSwapRoute(amount, candidates, tradeType, splitConfig(10, 1, maxSplits))
			s.Require().NotNil(plan)
			s.Require().LessOrEqual(len(plan), maxSplits)

			if previous != nil {
				adjusted, previousAdjusted := planAdjusted(plan), planAdjusted(previous)
				if tradeType == domain.TradeTypeExactInput {
					s.Require().True(adjusted.GTE(previousAdjusted))
				} else {
					s.Require().True(adjusted.LTE(previousAdjusted))
				}
			}
			previous = plan
		}
	}
}

func (s *RouterTestSuite) TestGetBestSwapRoute_ForceCrossProtocol() {
	var (
		v3Route = routertesting.MustNewRoute(tokenA, tokenB, poolAB)
		v2Route = routertesting.MustNewRoute(tokenA, tokenB, pairAB)
		amount  = routertesting.Amount(tokenA, 1000)
	)

	candidates := quotedCandidates(amount, domain.TradeTypeExactInput, 50, 1,
		quotedRoute{route: v3Route, quoteFn: routertesting.LinearQuote(1, 1)},
		quotedRoute{route: v2Route, quoteFn: routertesting.LinearQuote(1, 2)},
	)

	s.Run("plan covers both protocols", func() {
		config := splitConfig(50, 1, 2)
		config.ForceCrossProtocol = true

		plan := usecase.GetBestSwapRoute(amount, candidates, domain.TradeTypeExactInput, config)
		s.Require().Len(plan, 2)
		s.Require().ElementsMatch([]domain.Protocol{domain.ProtocolV3, domain.ProtocolV2}, []domain.Protocol{plan[0].Protocol, plan[1].Protocol})
	})

	s.Run("unsatisfiable", func() {
		config := splitConfig(50, 1, 1)
		config.ForceCrossProtocol = true

		plan := usecase.GetBestSwapRoute(amount, candidates, domain.TradeTypeExactInput, config)
		s.Require().Nil(plan)
	})

	s.Run("single protocol quotes are unrestricted", func() {
		config := splitConfig(50, 1, 2)
		config.ForceCrossProtocol = true

		plan := usecase.GetBestSwapRoute(amount, candidates[:1], domain.TradeTypeExactInput, config)
		s.Require().Equal([]string{v3Route.ID()}, planIDs(plan))
	})

	s.Run("without the flag the best route wins", func() {
		plan := usecase.GetBestSwapRoute(amount, candidates, domain.TradeTypeExactInput, splitConfig(50, 1, 2))
		s.Require().Equal([]string{v3Route.ID()}, planIDs(plan))
	})
}

func (s *RouterTestSuite) TestGetBestSwapRoute_SharedPoolsAreNotSplit() {
	var (
		first  = routertesting.MustNewRoute(tokenA, tokenB, poolAC, poolCB)
		second = routertesting.MustNewRoute(tokenA, tokenB, poolAC, poolCB2)
		amount = routertesting.Amount(tokenA, 1000)
	)

	candidates := quotedCandidates(amount, domain.TradeTypeExactInput, 50, 1,
		quotedRoute{route: first, quoteFn: routertesting.ConcaveQuote(1000)},
		quotedRoute{route: second, quoteFn: routertesting.ConcaveQuote(900)},
	)

	plan := usecase.GetBestSwapRoute(amount, candidates, domain.TradeTypeExactInput, splitConfig(50, 1, 2))
	s.Require().Equal([]string{first.ID()}, planIDs(plan))
	s.Require().Equal(100, plan[0].Percent)
}

func (s *RouterTestSuite) TestGetBestSwapRoute_ExactOutput() {
	var (
		direct = routertesting.MustNewRoute(tokenA, tokenB, poolAB)
		twoHop = routertesting.MustNewRoute(tokenA, tokenB, poolAC, poolCB)
		amount = routertesting.Amount(tokenA, 1000)
	)

	// Required input grows faster than linearly with the output.
	convex := func(depth int64) func(osmomath.Int) osmomath.Int {
		d := osmomath.NewInt(depth)
		return func(out osmomath.Int) osmomath.Int {
			return out.Mul(d).Quo(d.Sub(out))
		}
	}

	candidates := quotedCandidates(amount, domain.TradeTypeExactOutput, 50, 10,
		quotedRoute{route: direct, quoteFn: convex(2000)},
		quotedRoute{route: twoHop, quoteFn: convex(2000)},
	)

	plan := usecase.GetBestSwapRoute(amount, candidates, domain.TradeTypeExactOutput, splitConfig(50, 1, 2))
	s.Require().ElementsMatch([]string{direct.ID(), twoHop.ID()}, planIDs(plan))
	s.Require().Equal(amount.Amount, planAllocated(plan))
}
