package route

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
)

var _ domain.Route = &RouteImpl{}

// RouteImpl is an ordered path of pools from Input to Output.
type RouteImpl struct {
	Pools     []domain.PoolI
	TokenPath []domain.Token
	Protocol  domain.Protocol
}

// New builds a route over pools starting at input.
// Errors if a pool does not connect to the previous token or the path ends elsewhere than output.
func New(pools []domain.PoolI, input, output domain.Token) (*RouteImpl, error) {
	if len(pools) == 0 {
		return nil, fmt.Errorf("route must have at least one pool")
	}

	tokenPath := make([]domain.Token, 0, len(pools)+1)
	tokenPath = append(tokenPath, input)

	current := input
	hasV2, hasV3 := false, false
	for _, pool := range pools {
		next, err := pool.OtherToken(current)
		if err != nil {
			return nil, fmt.Errorf("pool %s does not connect %s: %w", pool.GetAddress().Hex(), current, err)
		}
		tokenPath = append(tokenPath, next)
		current = next

		switch pool.GetProtocol() {
		case domain.ProtocolV2:
			hasV2 = true
		case domain.ProtocolV3:
			hasV3 = true
		}
	}

	if !current.Equals(output) {
		return nil, fmt.Errorf("route ends at %s instead of %s", current, output)
	}

	protocol := domain.ProtocolV3
	if hasV2 && hasV3 {
		protocol = domain.ProtocolMixed
	} else if hasV2 {
		protocol = domain.ProtocolV2
	}

	return &RouteImpl{
		Pools:     pools,
		TokenPath: tokenPath,
		Protocol:  protocol,
	}, nil
}

// GetPools implements domain.Route.
func (r *RouteImpl) GetPools() []domain.PoolI {
	return r.Pools
}

// GetTokenPath implements domain.Route.
func (r *RouteImpl) GetTokenPath() []domain.Token {
	return r.TokenPath
}

// GetInput implements domain.Route.
func (r *RouteImpl) GetInput() domain.Token {
	return r.TokenPath[0]
}

// GetOutput implements domain.Route.
func (r *RouteImpl) GetOutput() domain.Token {
	return r.TokenPath[len(r.TokenPath)-1]
}

// GetProtocol implements domain.Route.
func (r *RouteImpl) GetProtocol() domain.Protocol {
	return r.Protocol
}

// GetPoolAddresses implements domain.Route.
func (r *RouteImpl) GetPoolAddresses() []common.Address {
	addresses := make([]common.Address, 0, len(r.Pools))
	for _, pool := range r.Pools {
		addresses = append(addresses, pool.GetAddress())
	}
	return addresses
}

// ID implements domain.Route.
func (r *RouteImpl) ID() string {
	return domain.RouteID(r.GetPoolAddresses())
}

// String implements domain.Route.
func (r *RouteImpl) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(r.Protocol.String())
	sb.WriteString("] ")
	sb.WriteString(r.TokenPath[0].Symbol)
	for i, pool := range r.Pools {
		fmt.Fprintf(&sb, " -- %s/%d --> %s", pool.GetProtocol(), pool.GetFee(), r.TokenPath[i+1].Symbol)
	}
	return sb.String()
}

type poolJSON struct {
	Address  common.Address   `json:"address"`
	Protocol domain.Protocol  `json:"protocol"`
	Fee      domain.FeeAmount `json:"fee"`
	TokenIn  common.Address   `json:"tokenIn"`
	TokenOut common.Address   `json:"tokenOut"`
}

type routeJSON struct {
	Protocol  domain.Protocol  `json:"protocol"`
	TokenPath []common.Address `json:"tokenPath"`
	Pools     []poolJSON       `json:"pools"`
}

// MarshalJSON returns the route topology.
func (r *RouteImpl) MarshalJSON() ([]byte, error) {
	out := routeJSON{
		Protocol:  r.Protocol,
		TokenPath: make([]common.Address, 0, len(r.TokenPath)),
		Pools:     make([]poolJSON, 0, len(r.Pools)),
	}
	for _, token := range r.TokenPath {
		out.TokenPath = append(out.TokenPath, token.Address)
	}
	for i, pool := range r.Pools {
		out.Pools = append(out.Pools, poolJSON{
			Address:  pool.GetAddress(),
			Protocol: pool.GetProtocol(),
			Fee:      pool.GetFee(),
			TokenIn:  r.TokenPath[i].Address,
			TokenOut: r.TokenPath[i+1].Address,
		})
	}
	return json.Marshal(out)
}

// NumHops returns the number of swaps in the route.
func NumHops(r domain.Route) int {
	return len(r.GetPools())
}

// TotalLiquidity sums the liquidity metric over the pools of the route.
// Liquidity metrics of different protocols are summed as is.
func TotalLiquidity(r domain.Route) osmomath.Int {
	total := osmomath.ZeroInt()
	for _, pool := range r.GetPools() {
		liquidity := pool.GetLiquidity()
		if liquidity.IsNil() {
			continue
		}
		total = total.Add(liquidity)
	}
	return total
}
