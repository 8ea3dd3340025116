package types

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
)

// GetQuoteRequest represents swap quote request for the /router/quote endpoint.
// For exact-in trades Amount is spent from TokenIn, for exact-out trades Amount is received in TokenOut.
type GetQuoteRequest struct {
	TokenIn   common.Address
	TokenOut  common.Address
	Amount    osmomath.Int
	TradeType domain.TradeType

	// Protocols restricts routing. Empty means every configured protocol.
	Protocols          []domain.Protocol
	MaxSplits          int
	ForceCrossProtocol bool

	Recipient         *common.Address
	SlippageTolerance osmomath.Dec
	Deadline          time.Time
	SimulateFrom      *common.Address
}

func (r *GetQuoteRequest) UnmarshalHTTPRequest(c echo.Context) error {
	var err error

	if r.TokenIn, err = parseRequiredAddress(c.QueryParam("tokenIn"), ErrTokenInNotSpecified); err != nil {
		return err
	}
	if r.TokenOut, err = parseRequiredAddress(c.QueryParam("tokenOut"), ErrTokenOutNotSpecified); err != nil {
		return err
	}

	amount, ok := osmomath.NewIntFromString(c.QueryParam("amount"))
	if !ok {
		return ErrAmountNotValid
	}
	r.Amount = amount

	if r.TradeType, err = domain.ParseTradeType(c.QueryParam("tradeType")); err != nil {
		return err
	}

	if protocols := c.QueryParam("protocols"); protocols != "" {
		if r.Protocols, err = domain.ParseProtocols(protocols); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocolsNotValid, err)
		}
	}

	if r.MaxSplits, err = domain.ParseIntQueryParam(c, "maxSplits", 0); err != nil {
		return ErrMaxSplitsNotValid
	}

	if r.ForceCrossProtocol, err = domain.ParseBooleanQueryParam(c, "forceCrossProtocol"); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadParamInput, err)
	}

	if r.Recipient, err = parseOptionalAddress(c.QueryParam("recipient")); err != nil {
		return err
	}
	if r.SimulateFrom, err = parseOptionalAddress(c.QueryParam("simulateFrom")); err != nil {
		return err
	}

	if slippage := c.QueryParam("slippageTolerance"); slippage != "" {
		if r.SlippageTolerance, err = osmomath.NewDecFromStr(slippage); err != nil {
			return ErrSlippageNotValid
		}
	}

	if deadline := c.QueryParam("deadline"); deadline != "" {
		unix, err := strconv.ParseInt(deadline, 10, 64)
		if err != nil {
			return ErrDeadlineNotValid
		}
		r.Deadline = time.Unix(unix, 0)
	}

	return nil
}

// Validate validates the GetQuoteRequest
func (r *GetQuoteRequest) Validate() error {
	if r.Amount.IsNil() || !r.Amount.IsPositive() {
		return ErrAmountNotValid
	}

	if r.MaxSplits < 0 {
		return ErrMaxSplitsNotValid
	}

	if !r.SlippageTolerance.IsNil() && (r.SlippageTolerance.IsNegative() || r.SlippageTolerance.GTE(osmomath.OneDec())) {
		return ErrSlippageNotValid
	}

	if r.Recipient == nil && (!r.SlippageTolerance.IsNil() || !r.Deadline.IsZero()) {
		return ErrRecipientNotSpecified
	}

	return nil
}

// AmountToken returns the token the amount is denominated in.
func (r *GetQuoteRequest) AmountToken() common.Address {
	if r.TradeType == domain.TradeTypeExactOutput {
		return r.TokenOut
	}
	return r.TokenIn
}

// QuoteToken returns the token the quote is denominated in.
func (r *GetQuoteRequest) QuoteToken() common.Address {
	if r.TradeType == domain.TradeTypeExactOutput {
		return r.TokenIn
	}
	return r.TokenOut
}

// SwapOptions returns the swap options of the request, or nil when neither a recipient nor a simulation was requested.
func (r *GetQuoteRequest) SwapOptions() *domain.SwapOptions {
	if r.Recipient == nil && r.SimulateFrom == nil {
		return nil
	}

	options := &domain.SwapOptions{
		SlippageTolerance:   r.SlippageTolerance,
		Deadline:            r.Deadline,
		SimulateFromAddress: r.SimulateFrom,
	}
	if r.Recipient != nil {
		options.Recipient = *r.Recipient
	}
	return options
}

func parseRequiredAddress(value string, missingErr error) (common.Address, error) {
	if value == "" {
		return common.Address{}, missingErr
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, ErrTokenNotValid
	}
	return common.HexToAddress(value), nil
}

func parseOptionalAddress(value string) (*common.Address, error) {
	if value == "" {
		return nil, nil
	}
	if !common.IsHexAddress(value) {
		return nil, fmt.Errorf("%w: %s is not a hex address", domain.ErrBadParamInput, value)
	}
	address := common.HexToAddress(value)
	return &address, nil
}
