package types_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/stretchr/testify/assert"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/router/types"
)

const (
	tokenInHex  = "0x4200000000000000000000000000000000000006"
	tokenOutHex = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	accountHex  = "0x00000000000000000000000000000000000000aa"
)

func newContext(params map[string]string) echo.Context {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/router/quote?"+query.Encode(), nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetQuoteRequestUnmarshal(t *testing.T) {
	account := common.HexToAddress(accountHex)

	testcases := []struct {
		name           string
		queryParams    map[string]string
		expectedResult *types.GetQuoteRequest
		expectedError  error
	}{
		{
			name: "minimal exact in request",
			queryParams: map[string]string{
				"tokenIn":  tokenInHex,
				"tokenOut": tokenOutHex,
				"amount":   "1000000",
			},
			expectedResult: &types.GetQuoteRequest{
				TokenIn:   common.HexToAddress(tokenInHex),
				TokenOut:  common.HexToAddress(tokenOutHex),
				Amount:    osmomath.NewInt(1_000_000),
				TradeType: domain.TradeTypeExactInput,
			},
		},
		{
			name: "every option",
			queryParams: map[string]string{
				"tokenIn":            tokenInHex,
				"tokenOut":           tokenOutHex,
				"amount":             "42",
				"tradeType":          "exactOut",
				"protocols":          "v3,mixed",
				"maxSplits":          "2",
				"forceCrossProtocol": "true",
				"recipient":          accountHex,
				"simulateFrom":       accountHex,
				"slippageTolerance":  "0.005",
				"deadline":           "1700000000",
			},
			expectedResult: &types.GetQuoteRequest{
				TokenIn:            common.HexToAddress(tokenInHex),
				TokenOut:           common.HexToAddress(tokenOutHex),
				Amount:             osmomath.NewInt(42),
				TradeType:          domain.TradeTypeExactOutput,
				Protocols:          []domain.Protocol{domain.ProtocolV3, domain.ProtocolMixed},
				MaxSplits:          2,
				ForceCrossProtocol: true,
				Recipient:          &account,
				SimulateFrom:       &account,
				SlippageTolerance:  osmomath.MustNewDecFromStr("0.005"),
				Deadline:           time.Unix(1_700_000_000, 0),
			},
		},
		{
			name:          "missing tokenIn",
			queryParams:   map[string]string{"tokenOut": tokenOutHex, "amount": "1"},
			expectedError: types.ErrTokenInNotSpecified,
		},
		{
			name:          "missing tokenOut",
			queryParams:   map[string]string{"tokenIn": tokenInHex, "amount": "1"},
			expectedError: types.ErrTokenOutNotSpecified,
		},
		{
			name:          "invalid token",
			queryParams:   map[string]string{"tokenIn": "weth", "tokenOut": tokenOutHex, "amount": "1"},
			expectedError: types.ErrTokenNotValid,
		},
		{
			name:          "decimal amount",
			queryParams:   map[string]string{"tokenIn": tokenInHex, "tokenOut": tokenOutHex, "amount": "1.5"},
			expectedError: types.ErrAmountNotValid,
		},
		{
			name:          "invalid protocols",
			queryParams:   map[string]string{"tokenIn": tokenInHex, "tokenOut": tokenOutHex, "amount": "1", "protocols": "v4"},
			expectedError: types.ErrProtocolsNotValid,
		},
		{
			name:          "invalid maxSplits",
			queryParams:   map[string]string{"tokenIn": tokenInHex, "tokenOut": tokenOutHex, "amount": "1", "maxSplits": "many"},
			expectedError: types.ErrMaxSplitsNotValid,
		},
		{
			name:          "invalid deadline",
			queryParams:   map[string]string{"tokenIn": tokenInHex, "tokenOut": tokenOutHex, "amount": "1", "deadline": "tomorrow"},
			expectedError: types.ErrDeadlineNotValid,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			var req types.GetQuoteRequest
			err := req.UnmarshalHTTPRequest(newContext(tc.queryParams))

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Equal(t, http.StatusBadRequest, domain.GetStatusCode(err))
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedResult.TokenIn, req.TokenIn)
			assert.Equal(t, tc.expectedResult.TokenOut, req.TokenOut)
			assert.Equal(t, tc.expectedResult.Amount.String(), req.Amount.String())
			assert.Equal(t, tc.expectedResult.TradeType, req.TradeType)
			assert.Equal(t, tc.expectedResult.Protocols, req.Protocols)
			assert.Equal(t, tc.expectedResult.MaxSplits, req.MaxSplits)
			assert.Equal(t, tc.expectedResult.ForceCrossProtocol, req.ForceCrossProtocol)
			assert.Equal(t, tc.expectedResult.Recipient, req.Recipient)
			assert.Equal(t, tc.expectedResult.SimulateFrom, req.SimulateFrom)
			assert.True(t, tc.expectedResult.Deadline.Equal(req.Deadline))
			if tc.expectedResult.SlippageTolerance.IsNil() {
				assert.True(t, req.SlippageTolerance.IsNil())
			} else {
				assert.True(t, tc.expectedResult.SlippageTolerance.Equal(req.SlippageTolerance))
			}
		})
	}
}

func TestGetQuoteRequestValidate(t *testing.T) {
	account := common.HexToAddress(accountHex)

	testcases := []struct {
		name          string
		req           types.GetQuoteRequest
		expectedError error
	}{
		{
			name: "valid",
			req:  types.GetQuoteRequest{Amount: osmomath.NewInt(1)},
		},
		{
			name:          "zero amount",
			req:           types.GetQuoteRequest{Amount: osmomath.ZeroInt()},
			expectedError: types.ErrAmountNotValid,
		},
		{
			name:          "negative maxSplits",
			req:           types.GetQuoteRequest{Amount: osmomath.NewInt(1), MaxSplits: -1},
			expectedError: types.ErrMaxSplitsNotValid,
		},
		{
			name:          "slippage of one hundred percent",
			req:           types.GetQuoteRequest{Amount: osmomath.NewInt(1), Recipient: &account, SlippageTolerance: osmomath.OneDec()},
			expectedError: types.ErrSlippageNotValid,
		},
		{
			name:          "slippage without recipient",
			req:           types.GetQuoteRequest{Amount: osmomath.NewInt(1), SlippageTolerance: osmomath.MustNewDecFromStr("0.01")},
			expectedError: types.ErrRecipientNotSpecified,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetQuoteRequestTokens(t *testing.T) {
	tokenIn, tokenOut := common.HexToAddress(tokenInHex), common.HexToAddress(tokenOutHex)

	exactIn := types.GetQuoteRequest{TokenIn: tokenIn, TokenOut: tokenOut, TradeType: domain.TradeTypeExactInput}
	assert.Equal(t, tokenIn, exactIn.AmountToken())
	assert.Equal(t, tokenOut, exactIn.QuoteToken())
	assert.Nil(t, exactIn.SwapOptions())

	account := common.HexToAddress(accountHex)
	exactOut := types.GetQuoteRequest{TokenIn: tokenIn, TokenOut: tokenOut, TradeType: domain.TradeTypeExactOutput, SimulateFrom: &account}
	assert.Equal(t, tokenOut, exactOut.AmountToken())
	assert.Equal(t, tokenIn, exactOut.QuoteToken())

	options := exactOut.SwapOptions()
	assert.NotNil(t, options)
	assert.Equal(t, &account, options.SimulateFromAddress)
	assert.Equal(t, common.Address{}, options.Recipient)
}
