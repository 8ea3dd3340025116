package usecase

import (
	"go.uber.org/zap"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/router/usecase/route"
)

// routeSearch holds the state of the depth first search over the pool graph.
type routeSearch struct {
	pools     []domain.PoolI
	tokenOut  domain.Token
	maxHops   int
	maxRoutes int
	mixedOnly bool

	usedPools     []bool
	visitedTokens map[string]struct{}
	currentPools  []domain.PoolI

	// paths are the found pool sequences, in discovery order.
	paths [][]domain.PoolI
	seen  map[string]struct{}
}

// computeAllRoutes enumerates the simple paths of 1 to maxHops pools from tokenIn to tokenOut.
// A path never uses a pool twice nor revisits a token. The search stops once maxRoutes
// paths are found. Paths are deduplicated by their ordered pool addresses.
//
// For ProtocolMixed only routes using both V2 and V3 pools are returned.
// Returns an empty slice when no path exists.
func computeAllRoutes(pools []domain.PoolI, tokenIn, tokenOut domain.Token, maxHops, maxRoutes int, protocol domain.Protocol, logger log.Logger) []domain.Route {
	if maxHops < 1 || maxRoutes < 1 || tokenIn.Equals(tokenOut) {
		return nil
	}

	pools = dedupePools(pools)

	s := &routeSearch{
		pools:         pools,
		tokenOut:      tokenOut,
		maxHops:       maxHops,
		maxRoutes:     maxRoutes,
		mixedOnly:     protocol == domain.ProtocolMixed,
		usedPools:     make([]bool, len(pools)),
		visitedTokens: map[string]struct{}{tokenIn.Key(): {}},
		currentPools:  make([]domain.PoolI, 0, maxHops),
		seen:          make(map[string]struct{}),
	}
	s.search(tokenIn)

	routes := make([]domain.Route, 0, len(s.paths))
	for _, path := range s.paths {
		r, err := route.New(path, tokenIn, tokenOut)
		if err != nil {
			logger.Debug("dropping invalid route", zap.Error(err))
			continue
		}
		routes = append(routes, r)
	}

	return routes
}

func (s *routeSearch) done() bool {
	return len(s.paths) >= s.maxRoutes
}

func (s *routeSearch) search(current domain.Token) {
	if s.done() || len(s.currentPools) >= s.maxHops {
		return
	}

	for i, pool := range s.pools {
		if s.done() {
			return
		}
		if s.usedPools[i] || !pool.Involves(current) {
			continue
		}

		next, err := pool.OtherToken(current)
		if err != nil {
			continue
		}

		if next.Equals(s.tokenOut) {
			s.record(append(s.currentPools, pool))
			continue
		}

		if _, ok := s.visitedTokens[next.Key()]; ok {
			continue
		}

		s.usedPools[i] = true
		s.visitedTokens[next.Key()] = struct{}{}
		s.currentPools = append(s.currentPools, pool)

		s.search(next)

		s.currentPools = s.currentPools[:len(s.currentPools)-1]
		delete(s.visitedTokens, next.Key())
		s.usedPools[i] = false
	}
}

func (s *routeSearch) record(path []domain.PoolI) {
	if s.mixedOnly && !mixesProtocols(path) {
		return
	}

	id := poolSequenceID(path)
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}

	recorded := make([]domain.PoolI, len(path))
	copy(recorded, path)
	s.paths = append(s.paths, recorded)
}

func poolSequenceID(pools []domain.PoolI) string {
	id := make([]byte, 0, len(pools)*20)
	for _, pool := range pools {
		id = append(id, pool.GetAddress().Bytes()...)
	}
	return string(id)
}

// dedupePools keeps the first pool of every address.
func dedupePools(pools []domain.PoolI) []domain.PoolI {
	seen := make(map[string]struct{}, len(pools))
	out := make([]domain.PoolI, 0, len(pools))
	for _, pool := range pools {
		key := string(pool.GetAddress().Bytes())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, pool)
	}
	return out
}

func mixesProtocols(pools []domain.PoolI) bool {
	hasV2, hasV3 := false, false
	for _, pool := range pools {
		switch pool.GetProtocol() {
		case domain.ProtocolV2:
			hasV2 = true
		case domain.ProtocolV3:
			hasV3 = true
		}
	}
	return hasV2 && hasV3
}
