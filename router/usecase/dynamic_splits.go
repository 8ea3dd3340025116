package usecase

import (
	"sort"
	"strings"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/router/usecase/route"
)

const (
	fullPercent = 100

	defaultSplitPreFilterSize = 5
)

// routeCandidate is a route with its valid quotes per percent of the distribution grid.
// A missing percent means the route has no liquidity at that size.
type routeCandidate struct {
	route  domain.Route
	quotes map[int]*domain.RouteWithValidQuote
}

func newRouteCandidate(r domain.Route) *routeCandidate {
	return &routeCandidate{
		route:  r,
		quotes: make(map[int]*domain.RouteWithValidQuote),
	}
}

// largestPercent returns the largest quoted percent, 0 if none.
func (c *routeCandidate) largestPercent() int {
	largest := 0
	for percent := range c.quotes {
		if percent > largest {
			largest = percent
		}
	}
	return largest
}

// split is a plan: routes with their allocations and the sum of their gas adjusted quotes.
type split struct {
	routes   []*domain.RouteWithValidQuote
	adjusted osmomath.Int
}

func newSplit(routes []*domain.RouteWithValidQuote) *split {
	adjusted := osmomath.ZeroInt()
	for _, r := range routes {
		adjusted = adjusted.Add(r.QuoteAdjustedForGas.Amount)
	}
	return &split{routes: routes, adjusted: adjusted}
}

func (s *split) routeList() []domain.Route {
	routes := make([]domain.Route, len(s.routes))
	for i, r := range s.routes {
		routes[i] = r.Route
	}
	return routes
}

// getBestSwapRoute returns the optimal plan for amount over the candidates, or nil if no plan
// satisfies the configuration. All comparisons use gas adjusted quotes.
//
// The best single route is the base case. For every split count k from 2 to maxSplits, each
// combination of k pool disjoint routes among the top ranked candidates is solved exactly
// with a memoised search over the distribution buckets. A plan with more routes is only
// adopted if it is strictly better than the best plan with fewer routes.
func getBestSwapRoute(amount domain.CurrencyAmount, candidates []*routeCandidate, tradeType domain.TradeType, config domain.RoutingConfig) []*domain.RouteWithValidQuote {
	candidates = quotedCandidates(candidates)
	if len(candidates) == 0 {
		return nil
	}

	buckets := fullPercent / config.DistributionPercent

	var requiredProtocols map[domain.Protocol]struct{}
	if config.ForceCrossProtocol {
		requiredProtocols = quotedProtocols(candidates)
		if len(requiredProtocols) < 2 {
			requiredProtocols = nil
		}
	}

	ranked := rankCandidates(candidates, tradeType)

	var best *split
	if config.MinSplits <= 1 && requiredProtocols == nil {
		if top := ranked[0]; top.quotes[fullPercent] != nil {
			best = newSplit([]*domain.RouteWithValidQuote{top.quotes[fullPercent]})
		}
	}

	preFilterSize := config.SplitPreFilterSize
	if preFilterSize <= 0 {
		preFilterSize = defaultSplitPreFilterSize
	}
	preFiltered := ranked[:min(preFilterSize, len(ranked))]

	maxSplits := min(config.MaxSplits, len(preFiltered), buckets)
	for k := max(2, config.MinSplits); k <= maxSplits; k++ {
		var bestK *split

		forEachCombination(len(preFiltered), k, func(indices []int) {
			subset := make([]*routeCandidate, len(indices))
			for i, idx := range indices {
				subset[i] = preFiltered[idx]
			}

			if sharesPools(subset) || !coversProtocols(subset, requiredProtocols) {
				return
			}

			plan := solveSplit(subset, buckets, config.DistributionPercent, tradeType)
			if plan == nil {
				return
			}

			if bestK == nil || isBetterSplit(tradeType, plan, bestK) {
				bestK = plan
			}
		})

		if bestK != nil && (best == nil || domain.IsBetterAdjustedQuote(tradeType, bestK.adjusted, best.adjusted)) {
			best = bestK
		}
	}

	if best == nil {
		return nil
	}

	return allocate(amount, best.routes)
}

// quotedCandidates drops candidates without any valid quote.
func quotedCandidates(candidates []*routeCandidate) []*routeCandidate {
	out := make([]*routeCandidate, 0, len(candidates))
	for _, c := range candidates {
		if len(c.quotes) > 0 {
			out = append(out, c)
		}
	}
	return out
}

func quotedProtocols(candidates []*routeCandidate) map[domain.Protocol]struct{} {
	protocols := make(map[domain.Protocol]struct{})
	for _, c := range candidates {
		protocols[c.route.GetProtocol()] = struct{}{}
	}
	return protocols
}

// rankCandidates orders candidates by their full amount gas adjusted quote. Candidates
// without a full amount quote come after, by largest quoted percent then by their quote at it.
func rankCandidates(candidates []*routeCandidate, tradeType domain.TradeType) []*routeCandidate {
	ranked := make([]*routeCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		aPercent, bPercent := a.largestPercent(), b.largestPercent()
		if aPercent != bPercent {
			return aPercent > bPercent
		}

		aQuote := a.quotes[aPercent].QuoteAdjustedForGas.Amount
		bQuote := b.quotes[bPercent].QuoteAdjustedForGas.Amount
		if !aQuote.Equal(bQuote) {
			return domain.IsBetterAdjustedQuote(tradeType, aQuote, bQuote)
		}

		return compareTieBreak([]domain.Route{a.route}, []domain.Route{b.route}) < 0
	})

	return ranked
}

// isBetterSplit returns true if a is strictly better than b, or equal and preferred by the tie-break.
func isBetterSplit(tradeType domain.TradeType, a, b *split) bool {
	if !a.adjusted.Equal(b.adjusted) {
		return domain.IsBetterAdjustedQuote(tradeType, a.adjusted, b.adjusted)
	}
	return compareTieBreak(a.routeList(), b.routeList()) < 0
}

// compareTieBreak returns a negative number if a is preferred over b: larger total pool
// liquidity, then fewer hops, then protocol priority, then lexicographic pool addresses.
func compareTieBreak(a, b []domain.Route) int {
	aLiquidity, bLiquidity := osmomath.ZeroInt(), osmomath.ZeroInt()
	aHops, bHops := 0, 0
	aPriority, bPriority := 0, 0
	for _, r := range a {
		aLiquidity = aLiquidity.Add(route.TotalLiquidity(r))
		aHops += route.NumHops(r)
		aPriority += r.GetProtocol().Priority()
	}
	for _, r := range b {
		bLiquidity = bLiquidity.Add(route.TotalLiquidity(r))
		bHops += route.NumHops(r)
		bPriority += r.GetProtocol().Priority()
	}

	switch {
	case !aLiquidity.Equal(bLiquidity):
		if aLiquidity.GT(bLiquidity) {
			return -1
		}
		return 1
	case aHops != bHops:
		return aHops - bHops
	case aPriority != bPriority:
		return aPriority - bPriority
	default:
		return strings.Compare(sortedRouteIDs(a), sortedRouteIDs(b))
	}
}

func sortedRouteIDs(routes []domain.Route) string {
	ids := make([]string, len(routes))
	for i, r := range routes {
		ids[i] = r.ID()
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// sharesPools returns true if two routes of the subset use the same pool.
func sharesPools(subset []*routeCandidate) bool {
	seen := make(map[string]struct{})
	for _, c := range subset {
		for _, address := range c.route.GetPoolAddresses() {
			key := string(address.Bytes())
			if _, ok := seen[key]; ok {
				return true
			}
			seen[key] = struct{}{}
		}
	}
	return false
}

func coversProtocols(subset []*routeCandidate, required map[domain.Protocol]struct{}) bool {
	if len(required) == 0 {
		return true
	}
	covered := make(map[domain.Protocol]struct{}, len(required))
	for _, c := range subset {
		covered[c.route.GetProtocol()] = struct{}{}
	}
	for protocol := range required {
		if _, ok := covered[protocol]; !ok {
			return false
		}
	}
	return true
}

// forEachCombination calls fn with every k-combination of [0, n) in lexicographic order.
func forEachCombination(n, k int, fn func(indices []int)) {
	if k > n || k <= 0 {
		return
	}
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	for {
		fn(indices)

		i := k - 1
		for i >= 0 && indices[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

type splitCell struct {
	solved   bool
	feasible bool
	value    osmomath.Int
	buckets  int
}

// solveSplit assigns every bucket to the routes of the subset, each route receiving at least
// one, so that the sum of gas adjusted quotes is optimal. Returns nil if no assignment is
// feasible with the available quotes.
//
// Recurrence:
// best(i, remaining) = opt over b in [1, remaining - (k - i - 1)] of quote(i, b) + best(i+1, remaining-b)
func solveSplit(subset []*routeCandidate, buckets, distributionPercent int, tradeType domain.TradeType) *split {
	k := len(subset)
	memo := make([][]splitCell, k)
	for i := range memo {
		memo[i] = make([]splitCell, buckets+1)
	}

	var solve func(i, remaining int) splitCell
	solve = func(i, remaining int) splitCell {
		cell := &memo[i][remaining]
		if cell.solved {
			return *cell
		}
		cell.solved = true

		// Base case: the last route consumes the remaining buckets.
		if i == k-1 {
			if q, ok := subset[i].quotes[remaining*distributionPercent]; ok {
				cell.feasible = true
				cell.value = q.QuoteAdjustedForGas.Amount
				cell.buckets = remaining
			}
			return *cell
		}

		for b := 1; b <= remaining-(k-i-1); b++ {
			q, ok := subset[i].quotes[b*distributionPercent]
			if !ok {
				continue
			}

			next := solve(i+1, remaining-b)
			if !next.feasible {
				continue
			}

			total := q.QuoteAdjustedForGas.Amount.Add(next.value)
			if !cell.feasible || domain.IsBetterAdjustedQuote(tradeType, total, cell.value) {
				cell.feasible = true
				cell.value = total
				cell.buckets = b
			}
		}
		return *cell
	}

	if !solve(0, buckets).feasible {
		return nil
	}

	routes := make([]*domain.RouteWithValidQuote, 0, k)
	remaining := buckets
	for i := 0; i < k; i++ {
		cell := memo[i][remaining]
		routes = append(routes, subset[i].quotes[cell.buckets*distributionPercent])
		remaining -= cell.buckets
	}

	return newSplit(routes)
}

// allocate copies the plan routes and sets their allocations so that they sum exactly
// to amount. The route with the largest allocation absorbs the rounding dust.
func allocate(amount domain.CurrencyAmount, routes []*domain.RouteWithValidQuote) []*domain.RouteWithValidQuote {
	plan := make([]*domain.RouteWithValidQuote, len(routes))
	allocated := osmomath.ZeroInt()
	largest := 0
	for i, r := range routes {
		copied := *r
		copied.Amount = amount.Percent(r.Percent)
		plan[i] = &copied

		allocated = allocated.Add(copied.Amount.Amount)
		if copied.Amount.Amount.GT(plan[largest].Amount.Amount) {
			largest = i
		}
	}

	if dust := amount.Amount.Sub(allocated); dust.IsPositive() {
		plan[largest].Amount = domain.NewCurrencyAmount(amount.Token, plan[largest].Amount.Amount.Add(dust))
	}

	return plan
}
