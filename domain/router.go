package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"
)

// TradeType is the direction of a trade.
type TradeType int

const (
	// TradeTypeExactInput fixes the input amount and maximizes output.
	TradeTypeExactInput TradeType = iota
	// TradeTypeExactOutput fixes the output amount and minimizes input.
	TradeTypeExactOutput
)

func (t TradeType) String() string {
	if t == TradeTypeExactOutput {
		return "EXACT_OUTPUT"
	}
	return "EXACT_INPUT"
}

// MarshalText implements encoding.TextMarshaler.
func (t TradeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TradeType) UnmarshalText(text []byte) error {
	parsed, err := ParseTradeType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTradeType accepts "exactIn", "exactOut" and their uppercase variants.
func ParseTradeType(s string) (TradeType, error) {
	switch strings.ToLower(s) {
	case "", "exactin", "exact_input", "exactinput":
		return TradeTypeExactInput, nil
	case "exactout", "exact_output", "exactoutput":
		return TradeTypeExactOutput, nil
	default:
		return 0, InvalidTradeTypeError{TradeType: s}
	}
}

// Route is an ordered path of pools where each consecutive pair shares a token.
// Routes are immutable once built.
type Route interface {
	GetPools() []PoolI
	GetTokenPath() []Token
	GetInput() Token
	GetOutput() Token
	GetProtocol() Protocol

	// GetPoolAddresses returns the pool addresses in hop order.
	GetPoolAddresses() []common.Address

	// ID uniquely identifies the topology by its ordered pool addresses.
	ID() string

	String() string
}

// ProtocolPoolSelection holds the pool selection heuristics for a protocol.
// Each value bounds how many pools a heuristic may contribute.
type ProtocolPoolSelection struct {
	TopN                  int `mapstructure:"top-n"`
	TopNDirectSwaps       int `mapstructure:"top-n-direct-swaps"`
	TopNTokenInOut        int `mapstructure:"top-n-token-in-out"`
	TopNSecondHop         int `mapstructure:"top-n-second-hop"`
	TopNWithEachBaseToken int `mapstructure:"top-n-with-each-base-token"`
	TopNWithBaseToken     int `mapstructure:"top-n-with-base-token"`
}

// RouterConfig defines the process level router configuration.
type RouterConfig struct {
	// Protocols enabled by default. Empty means all.
	Protocols []string `mapstructure:"protocols"`

	MaxSwapsPerPath     int  `mapstructure:"max-swaps-per-path"`
	MinSplits           int  `mapstructure:"min-splits"`
	MaxSplits           int  `mapstructure:"max-splits"`
	DistributionPercent int  `mapstructure:"distribution-percent"`
	ForceCrossProtocol  bool `mapstructure:"force-cross-protocol"`

	// SplitPreFilterSize is the number of top single routes the split optimizer considers.
	SplitPreFilterSize int `mapstructure:"split-pre-filter-size"`

	// MaxCandidateRoutes is the hard cap on enumerated routes per protocol.
	MaxCandidateRoutes int `mapstructure:"max-candidate-routes"`

	// QuoteTimeoutMs is the deadline for the whole quote fetching phase.
	// Zero disables the router imposed deadline.
	QuoteTimeoutMs int `mapstructure:"quote-timeout-ms"`

	V2PoolSelection ProtocolPoolSelection `mapstructure:"v2-pool-selection"`
	V3PoolSelection ProtocolPoolSelection `mapstructure:"v3-pool-selection"`

	OnChainQuote OnChainQuoteConfig `mapstructure:"on-chain-quote"`
}

// OnChainQuoteConfig configures the batched simulated-call quote fetcher.
type OnChainQuoteConfig struct {
	MultiCallChunk   int    `mapstructure:"multicall-chunk"`
	GasLimitPerCall  uint64 `mapstructure:"gas-limit-per-call"`
	MaxBatchGasLimit uint64 `mapstructure:"max-batch-gas-limit"`
	MaxConcurrency   int    `mapstructure:"max-concurrency"`
	Retries          int    `mapstructure:"retries"`
	MinBackoffMs     int    `mapstructure:"min-backoff-ms"`
	MaxBackoffMs     int    `mapstructure:"max-backoff-ms"`
}

// RoutingConfig is the per request configuration of the router.
type RoutingConfig struct {
	Protocols           []Protocol
	MaxSwapsPerPath     int
	MinSplits           int
	MaxSplits           int
	DistributionPercent int
	ForceCrossProtocol  bool
	SplitPreFilterSize  int
	MaxCandidateRoutes  int
	V2PoolSelection     ProtocolPoolSelection
	V3PoolSelection     ProtocolPoolSelection

	// BlockNumber pins all reads to a block. Nil means latest.
	BlockNumber *uint64

	// Timeout bounds the quote fetching phase. Zero means no router deadline.
	Timeout time.Duration
}

// DefaultRoutingConfig converts the process config into a request config.
func (c RouterConfig) DefaultRoutingConfig() (RoutingConfig, error) {
	protocols := make([]Protocol, 0, len(c.Protocols))
	for _, p := range c.Protocols {
		parsed, err := ParseProtocol(p)
		if err != nil {
			return RoutingConfig{}, err
		}
		protocols = append(protocols, parsed)
	}

	return RoutingConfig{
		Protocols:           protocols,
		MaxSwapsPerPath:     c.MaxSwapsPerPath,
		MinSplits:           c.MinSplits,
		MaxSplits:           c.MaxSplits,
		DistributionPercent: c.DistributionPercent,
		ForceCrossProtocol:  c.ForceCrossProtocol,
		SplitPreFilterSize:  c.SplitPreFilterSize,
		MaxCandidateRoutes:  c.MaxCandidateRoutes,
		V2PoolSelection:     c.V2PoolSelection,
		V3PoolSelection:     c.V3PoolSelection,
		Timeout:             time.Duration(c.QuoteTimeoutMs) * time.Millisecond,
	}, nil
}

// EnabledProtocols returns the configured protocols, or all of them when none are set.
func (c RoutingConfig) EnabledProtocols() []Protocol {
	if len(c.Protocols) == 0 {
		return AllProtocols
	}
	return c.Protocols
}

// Validate checks the invariants of the configuration.
func (c RoutingConfig) Validate() error {
	if c.DistributionPercent <= 0 || c.DistributionPercent > 100 || 100%c.DistributionPercent != 0 {
		return InvalidRoutingConfigError{Reason: fmt.Sprintf("distribution percent (%d) must divide 100", c.DistributionPercent)}
	}
	if c.MinSplits < 1 {
		return InvalidRoutingConfigError{Reason: fmt.Sprintf("min splits (%d) must be at least 1", c.MinSplits)}
	}
	if c.MaxSplits < c.MinSplits {
		return InvalidRoutingConfigError{Reason: fmt.Sprintf("max splits (%d) is lower than min splits (%d)", c.MaxSplits, c.MinSplits)}
	}
	if c.MaxSplits > 100/c.DistributionPercent {
		return InvalidRoutingConfigError{Reason: fmt.Sprintf("max splits (%d) exceeds the number of buckets (%d)", c.MaxSplits, 100/c.DistributionPercent)}
	}
	if c.MaxSwapsPerPath < 1 {
		return InvalidRoutingConfigError{Reason: fmt.Sprintf("max swaps per path (%d) must be at least 1", c.MaxSwapsPerPath)}
	}
	return nil
}

// PoolSelection returns the heuristics for the protocol.
func (c RoutingConfig) PoolSelection(protocol Protocol) ProtocolPoolSelection {
	if protocol == ProtocolV2 {
		return c.V2PoolSelection
	}
	return c.V3PoolSelection
}

// SwapOptions carries the optional execution parameters of a request.
type SwapOptions struct {
	Recipient         common.Address
	SlippageTolerance osmomath.Dec
	Deadline          time.Time

	// SimulateFromAddress enables simulation of the resulting plan from this address.
	SimulateFromAddress *common.Address
}

// MethodParameters is the calldata needed to execute a plan.
type MethodParameters struct {
	To       common.Address `json:"to"`
	Calldata []byte         `json:"calldata"`
	Value    osmomath.Int   `json:"value"`
}

// SwapRoute is the router's answer: a set of routes whose allocations
// sum to the requested amount, with aggregate quotes and gas.
type SwapRoute struct {
	TradeType TradeType      `json:"tradeType"`
	Amount    CurrencyAmount `json:"amount"`

	Quote            CurrencyAmount `json:"quote"`
	QuoteGasAdjusted CurrencyAmount `json:"quoteGasAdjusted"`

	EstimatedGasUsed           osmomath.Int   `json:"estimatedGasUsed"`
	EstimatedGasUsedQuoteToken CurrencyAmount `json:"estimatedGasUsedQuoteToken"`
	EstimatedGasUsedUSD        CurrencyAmount `json:"estimatedGasUsedUSD"`
	GasPriceWei                osmomath.Int   `json:"gasPriceWei"`

	Routes      []*RouteWithValidQuote `json:"route"`
	BlockNumber uint64                 `json:"blockNumber"`

	MethodParameters *MethodParameters `json:"methodParameters,omitempty"`
	SimulationStatus SimulationStatus  `json:"simulationStatus"`
}
