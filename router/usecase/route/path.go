package route

import (
	"fmt"

	"github.com/baseswapfi/sor/domain"
)

const (
	addressSize = 20
	feeSize     = 3
)

// EncodePath packs the route as token (20 bytes), fee (3 bytes), token ... as expected by
// the quoter and swap router contracts. V2 hops inside mixed routes use the V2 fee flag.
func EncodePath(r domain.Route) ([]byte, error) {
	return encodePath(r, false)
}

// EncodeReversedPath is EncodePath from the output token to the input token.
func EncodeReversedPath(r domain.Route) ([]byte, error) {
	return encodePath(r, true)
}

func encodePath(r domain.Route, reverse bool) ([]byte, error) {
	pools := r.GetPools()
	tokens := r.GetTokenPath()
	if len(tokens) != len(pools)+1 {
		return nil, fmt.Errorf("route has %d tokens for %d pools", len(tokens), len(pools))
	}

	isMixed := r.GetProtocol() == domain.ProtocolMixed

	fees := make([]domain.FeeAmount, len(pools))
	for i, pool := range pools {
		fee := pool.GetFee()
		if isMixed && pool.GetProtocol() == domain.ProtocolV2 {
			fee = domain.MixedRouteV2FeeFlag
		}
		fees[i] = fee
	}

	if reverse {
		tokens = reversed(tokens)
		fees = reversed(fees)
	}

	path := make([]byte, 0, len(tokens)*addressSize+len(fees)*feeSize)
	for i, token := range tokens {
		path = append(path, token.Address.Bytes()...)
		if i < len(fees) {
			fee := uint32(fees[i])
			path = append(path, byte(fee>>16), byte(fee>>8), byte(fee))
		}
	}

	return path, nil
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
