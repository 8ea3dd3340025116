package usecase

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
	poolsusecase "github.com/baseswapfi/sor/pools/usecase"
)

// poolSelector accumulates the pools picked by the selection heuristics of one protocol.
// Candidates are ranked by liquidity and every heuristic only considers pools that
// were not selected by a previous one.
type poolSelector struct {
	candidates []domain.CandidatePool
	selected   map[common.Address]struct{}
	result     []domain.CandidatePool
}

// selectCandidatePools returns the working pool subset of a protocol for a trade
// between tokenIn and tokenOut, deduplicated by address.
func selectCandidatePools(candidates []domain.CandidatePool, tokenIn, tokenOut common.Address, baseTokens []common.Address, selection domain.ProtocolPoolSelection) []domain.CandidatePool {
	sorted := make([]domain.CandidatePool, len(candidates))
	copy(sorted, candidates)
	poolsusecase.SortCandidatePools(sorted)

	s := &poolSelector{
		candidates: sorted,
		selected:   make(map[common.Address]struct{}),
	}

	// Direct swaps.
	s.take(selection.TopNDirectSwaps, func(c domain.CandidatePool) bool {
		return c.Involves(tokenIn) && c.Involves(tokenOut)
	})

	// Pools connecting either side of the trade to a base token.
	s.takeWithBaseTokens(tokenIn, baseTokens, selection)
	s.takeWithBaseTokens(tokenOut, baseTokens, selection)

	// Deepest pools overall.
	s.take(selection.TopN, func(domain.CandidatePool) bool { return true })

	tokenInPools := s.take(selection.TopNTokenInOut, func(c domain.CandidatePool) bool {
		return c.Involves(tokenIn)
	})
	tokenOutPools := s.take(selection.TopNTokenInOut, func(c domain.CandidatePool) bool {
		return c.Involves(tokenOut)
	})

	// Second hops reached through the tokenIn and tokenOut pools.
	s.take(selection.TopNSecondHop, secondHopFilter(tokenInPools, tokenIn))
	s.take(selection.TopNSecondHop, secondHopFilter(tokenOutPools, tokenOut))

	return s.result
}

// take selects up to n unselected candidates matching the filter, in ranking order.
func (s *poolSelector) take(n int, filter func(domain.CandidatePool) bool) []domain.CandidatePool {
	if n <= 0 {
		return nil
	}

	taken := make([]domain.CandidatePool, 0, n)
	for _, c := range s.candidates {
		if len(taken) >= n {
			break
		}
		if _, ok := s.selected[c.Address]; ok {
			continue
		}
		if !filter(c) {
			continue
		}
		s.selected[c.Address] = struct{}{}
		taken = append(taken, c)
	}

	s.result = append(s.result, taken...)
	return taken
}

// takeWithBaseTokens selects up to TopNWithEachBaseToken pools between the token and every
// base token, at most TopNWithBaseToken in total.
func (s *poolSelector) takeWithBaseTokens(token common.Address, baseTokens []common.Address, selection domain.ProtocolPoolSelection) {
	remaining := selection.TopNWithBaseToken
	for _, base := range baseTokens {
		if remaining <= 0 {
			return
		}
		if base == token {
			continue
		}

		taken := s.take(min(selection.TopNWithEachBaseToken, remaining), func(c domain.CandidatePool) bool {
			return c.Involves(token) && c.Involves(base)
		})
		remaining -= len(taken)
	}
}

// secondHopFilter matches pools touching the other token of any of the first hop pools.
func secondHopFilter(firstHops []domain.CandidatePool, token common.Address) func(domain.CandidatePool) bool {
	others := make(map[common.Address]struct{}, len(firstHops))
	for _, c := range firstHops {
		others[c.Other(token)] = struct{}{}
	}
	return func(c domain.CandidatePool) bool {
		if _, ok := others[c.Token0]; ok {
			return true
		}
		_, ok := others[c.Token1]
		return ok
	}
}
