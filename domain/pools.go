package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"
)

// Protocol tags the liquidity model of a pool or route.
type Protocol int

const (
	// ProtocolV3 is concentrated liquidity, the primary protocol.
	ProtocolV3 Protocol = iota
	// ProtocolV2 is the constant-product secondary protocol.
	ProtocolV2
	// ProtocolMixed marks routes spanning both protocols.
	ProtocolMixed
)

// AllProtocols is the default enabled protocol set.
var AllProtocols = []Protocol{ProtocolV3, ProtocolV2, ProtocolMixed}

func (p Protocol) String() string {
	switch p {
	case ProtocolV3:
		return "V3"
	case ProtocolV2:
		return "V2"
	case ProtocolMixed:
		return "MIXED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(p))
	}
}

// Priority is used as the last tie-break when ranking routes. Lower wins.
func (p Protocol) Priority() int {
	switch p {
	case ProtocolV3:
		return 0
	case ProtocolMixed:
		return 1
	case ProtocolV2:
		return 2
	default:
		return 3
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Protocol) UnmarshalText(text []byte) error {
	parsed, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProtocol parses "v2", "v3" or "mixed" case-insensitively.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v3":
		return ProtocolV3, nil
	case "v2":
		return ProtocolV2, nil
	case "mixed":
		return ProtocolMixed, nil
	default:
		return 0, InvalidProtocolError{Protocol: s}
	}
}

// FeeAmount is a pool fee in hundredths of a basis point.
type FeeAmount uint32

const (
	FeeLowest FeeAmount = 100
	FeeLow    FeeAmount = 500
	FeeMedium FeeAmount = 3000
	FeeHigh   FeeAmount = 10000

	// V2FeeAmount is the fixed fee of every constant-product pair.
	V2FeeAmount FeeAmount = 3000

	// MixedRouteV2FeeFlag encodes a V2 hop inside a mixed route path.
	MixedRouteV2FeeFlag FeeAmount = 8388608
)

// V3FeeTiers lists the fee tiers enumerated when pools are derived from token pairs.
var V3FeeTiers = []FeeAmount{FeeLowest, FeeLow, FeeMedium, FeeHigh}

// PoolI is an immutable snapshot of pool state at the block it was fetched.
type PoolI interface {
	GetAddress() common.Address
	GetProtocol() Protocol
	GetToken0() Token
	GetToken1() Token
	GetFee() FeeAmount

	// GetLiquidity returns the metric used to rank pools against each other
	// when breaking ties. For V2 it is the geometric mean of the reserves,
	// for V3 the in-range liquidity.
	GetLiquidity() osmomath.Int

	// Involves returns true if the token is one of the pool's two tokens.
	Involves(token Token) bool

	// OtherToken returns the token opposite to the given one.
	OtherToken(token Token) (Token, error)

	// MidPriceQuote converts amount of one pool token to the other
	// at the current mid price, ignoring fees and price impact.
	MidPriceQuote(amount CurrencyAmount) (CurrencyAmount, error)

	String() string
}

// LocalQuotablePool is a pool whose swap output can be computed without a remote call.
type LocalQuotablePool interface {
	PoolI

	// GetOutputAmount returns the output received for an exact input.
	GetOutputAmount(amountIn CurrencyAmount) (CurrencyAmount, error)
	// GetInputAmount returns the input required for an exact output.
	GetInputAmount(amountOut CurrencyAmount) (CurrencyAmount, error)
}

// PoolAccessor provides lookups over a set of fetched pools.
type PoolAccessor interface {
	GetPool(tokenA, tokenB Token, fee FeeAmount) (PoolI, bool)
	GetPoolByAddress(address common.Address) (PoolI, bool)
	GetAllPools() []PoolI
}

// TokenPair identifies a pool to fetch. Fee is ignored for V2.
type TokenPair struct {
	TokenA Token
	TokenB Token
	Fee    FeeAmount
}

// CandidatePool is the lightweight pool metadata the route enumerator selects from.
// Liquidity is a protocol-specific ranking metric (TVL in the subgraph sense).
type CandidatePool struct {
	Protocol  Protocol       `json:"protocol"`
	Address   common.Address `json:"id"`
	Token0    common.Address `json:"token0"`
	Token1    common.Address `json:"token1"`
	Fee       FeeAmount      `json:"feeTier"`
	Liquidity osmomath.Int   `json:"tvl"`
}

// Involves returns true if the candidate touches the token address.
func (c CandidatePool) Involves(address common.Address) bool {
	return c.Token0 == address || c.Token1 == address
}

// Other returns the address opposite to the given one.
func (c CandidatePool) Other(address common.Address) common.Address {
	if c.Token0 == address {
		return c.Token1
	}
	return c.Token0
}

// PoolKey returns the canonical lookup key of a pool on (token0, token1, fee).
func PoolKey(tokenA, tokenB Token, fee FeeAmount) string {
	token0, token1 := SortTokens(tokenA, tokenB)
	return fmt.Sprintf("%s/%s/%d", token0.Key(), token1.Key(), fee)
}
