package chain

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/router/usecase/route"
)

var (
	// AddressThis makes the swap router keep the output of a hop for the next one.
	AddressThis = common.HexToAddress("0x0000000000000000000000000000000000000002")

	// contractBalance makes the swap router spend its whole balance of the input token.
	contractBalance = big.NewInt(0)
)

const defaultSwapDeadline = 30 * time.Minute

type exactInputParams struct {
	Path             []byte
	Recipient        common.Address
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

type exactOutputParams struct {
	Path            []byte
	Recipient       common.Address
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

// SwapRouterCalldataBuilder encodes plans as a single multicall against the swap router.
// Mixed routes are split into sections of a single protocol that hand over
// their output to the next section through the router balance.
type SwapRouterCalldataBuilder struct {
	swapRouter common.Address
	nowFn      func() time.Time
}

var _ mvc.SwapCalldataBuilder = &SwapRouterCalldataBuilder{}

// NewSwapRouterCalldataBuilder creates a builder for the swap router at the given address.
func NewSwapRouterCalldataBuilder(swapRouter common.Address) *SwapRouterCalldataBuilder {
	return &SwapRouterCalldataBuilder{
		swapRouter: swapRouter,
		nowFn:      time.Now,
	}
}

// WithNowFn overrides the clock used for default deadlines.
func (b *SwapRouterCalldataBuilder) WithNowFn(nowFn func() time.Time) *SwapRouterCalldataBuilder {
	b.nowFn = nowFn
	return b
}

// BuildMethodParameters implements mvc.SwapCalldataBuilder.
func (b *SwapRouterCalldataBuilder) BuildMethodParameters(swapRoute *domain.SwapRoute, swapOptions domain.SwapOptions) (*domain.MethodParameters, error) {
	if swapRoute == nil || len(swapRoute.Routes) == 0 {
		return nil, errors.New("no routes to encode")
	}
	if swapOptions.Recipient == (common.Address{}) {
		return nil, errors.New("recipient is required")
	}

	slippage := swapOptions.SlippageTolerance
	if slippage.IsNil() {
		slippage = osmomath.ZeroDec()
	}
	if slippage.IsNegative() || slippage.GTE(osmomath.OneDec()) {
		return nil, fmt.Errorf("invalid slippage tolerance %s", slippage)
	}

	var calls [][]byte
	for _, rwq := range swapRoute.Routes {
		var (
			routeCalls [][]byte
			err        error
		)
		if rwq.TradeType == domain.TradeTypeExactOutput {
			routeCalls, err = encodeExactOutput(rwq, swapOptions.Recipient, slippage)
		} else {
			routeCalls, err = encodeExactInput(rwq, swapOptions.Recipient, slippage)
		}
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", rwq.Route.ID(), err)
		}
		calls = append(calls, routeCalls...)
	}

	deadline := swapOptions.Deadline
	if deadline.IsZero() {
		deadline = b.nowFn().Add(defaultSwapDeadline)
	}

	calldata, err := SwapRouterABI.Pack("multicall", big.NewInt(deadline.Unix()), calls)
	if err != nil {
		return nil, err
	}

	return &domain.MethodParameters{
		To:       b.swapRouter,
		Calldata: calldata,
		Value:    osmomath.ZeroInt(),
	}, nil
}

func encodeExactInput(rwq *domain.RouteWithValidQuote, recipient common.Address, slippage osmomath.Dec) ([][]byte, error) {
	sections, err := protocolSections(rwq.Route)
	if err != nil {
		return nil, err
	}

	amountOutMinimum := rwq.RawQuote.Amount.ToLegacyDec().Mul(osmomath.OneDec().Sub(slippage)).TruncateInt()

	calls := make([][]byte, 0, len(sections))
	for i, section := range sections {
		isFirst, isLast := i == 0, i == len(sections)-1

		amountIn := contractBalance
		if isFirst {
			amountIn = rwq.Amount.Amount.BigInt()
		}
		minOut := big.NewInt(0)
		to := AddressThis
		if isLast {
			minOut = amountOutMinimum.BigInt()
			to = recipient
		}

		var (
			call []byte
			err  error
		)
		switch section.GetProtocol() {
		case domain.ProtocolV3:
			path, pathErr := route.EncodePath(section)
			if pathErr != nil {
				return nil, pathErr
			}
			call, err = SwapRouterABI.Pack("exactInput", exactInputParams{
				Path:             path,
				Recipient:        to,
				AmountIn:         amountIn,
				AmountOutMinimum: minOut,
			})
		case domain.ProtocolV2:
			call, err = SwapRouterABI.Pack("swapExactTokensForTokens", amountIn, minOut, tokenAddresses(section), to)
		default:
			return nil, fmt.Errorf("unexpected section protocol %s", section.GetProtocol())
		}
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}

	return calls, nil
}

func encodeExactOutput(rwq *domain.RouteWithValidQuote, recipient common.Address, slippage osmomath.Dec) ([][]byte, error) {
	amountOut := rwq.Amount.Amount.BigInt()
	amountInMaximum := rwq.RawQuote.Amount.ToLegacyDec().Mul(osmomath.OneDec().Add(slippage)).Ceil().TruncateInt().BigInt()

	switch rwq.Route.GetProtocol() {
	case domain.ProtocolV3:
		path, err := route.EncodeReversedPath(rwq.Route)
		if err != nil {
			return nil, err
		}
		call, err := SwapRouterABI.Pack("exactOutput", exactOutputParams{
			Path:            path,
			Recipient:       recipient,
			AmountOut:       amountOut,
			AmountInMaximum: amountInMaximum,
		})
		if err != nil {
			return nil, err
		}
		return [][]byte{call}, nil
	case domain.ProtocolV2:
		call, err := SwapRouterABI.Pack("swapTokensForExactTokens", amountOut, amountInMaximum, tokenAddresses(rwq.Route), recipient)
		if err != nil {
			return nil, err
		}
		return [][]byte{call}, nil
	default:
		return nil, fmt.Errorf("exact output is not supported for %s routes", rwq.Route.GetProtocol())
	}
}

// protocolSections splits a route into maximal runs of pools of the same protocol.
func protocolSections(r domain.Route) ([]domain.Route, error) {
	pools := r.GetPools()
	tokens := r.GetTokenPath()

	var sections []domain.Route
	start := 0
	for i := 1; i <= len(pools); i++ {
		if i < len(pools) && pools[i].GetProtocol() == pools[start].GetProtocol() {
			continue
		}

		section, err := route.New(pools[start:i], tokens[start], tokens[i])
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
		start = i
	}

	return sections, nil
}

func tokenAddresses(r domain.Route) []common.Address {
	tokens := r.GetTokenPath()
	addresses := make([]common.Address, len(tokens))
	for i, token := range tokens {
		addresses[i] = token.Address
	}
	return addresses
}
