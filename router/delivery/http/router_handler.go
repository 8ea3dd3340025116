package http

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	sorhttp "github.com/baseswapfi/sor/delivery/http"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/router/types"
)

// RouterHandler  represent the httphandler for the router
type RouterHandler struct {
	RUsecase  mvc.RouterUsecase
	TProvider mvc.TokenProvider
	logger    log.Logger
}

const routerResource = "/router"

func formatRouterResource(resource string) string {
	return routerResource + resource
}

// NewRouterHandler will initialize the router/ resources endpoint
func NewRouterHandler(e *echo.Echo, us mvc.RouterUsecase, tp mvc.TokenProvider, logger log.Logger) {
	handler := &RouterHandler{
		RUsecase:  us,
		TProvider: tp,
		logger:    logger,
	}
	e.GET(formatRouterResource("/quote"), handler.GetQuote)
}

// @Summary Swap Quote
// @Description returns the best plan to trade amount of tokenIn for tokenOut, or the reverse for exact output trades.
// The plan may be split across several routes and protocols.
// @ID get-route-quote
// @Produce  json
// @Param  tokenIn  query  string  true  "Address of the token in."
// @Param  tokenOut  query  string  true  "Address of the token out."
// @Param  amount  query  string  true  "Integer amount in the smallest unit of the amount token."
// @Param  tradeType  query  string  false  "exactIn (default) or exactOut."
// @Param  protocols  query  string  false  "Comma separated subset of v2, v3, mixed."
// @Param  maxSplits  query  int  false  "Overrides the maximum number of routes in a split."
// @Param  forceCrossProtocol  query  bool  false  "Only consider plans using more than one protocol."
// @Param  recipient  query  string  false  "Recipient of the swap. Enables calldata generation."
// @Param  slippageTolerance  query  string  false  "Slippage tolerance as a decimal fraction."
// @Param  deadline  query  int  false  "Unix timestamp after which the swap reverts."
// @Param  simulateFrom  query  string  false  "Sender address used to simulate the swap."
// @Success 200  {object}  domain.SwapRoute  "The best plan"
// @Failure 400  {object}  domain.ResponseError  "Invalid request"
// @Failure 404  {object}  domain.ResponseError  "No route found"
// @Failure 503  {object}  domain.ResponseError  "Every upstream source failed"
// @Router /router/quote [get]
func (a *RouterHandler) GetQuote(c echo.Context) error {
	ctx, span := sorhttp.Span(c)

	var req types.GetQuoteRequest
	if err := sorhttp.ParseRequest(c, &req); err != nil {
		return respondError(c, span, err)
	}

	span.SetAttributes(
		attribute.String("token_in", req.TokenIn.Hex()),
		attribute.String("token_out", req.TokenOut.Hex()),
		attribute.String("amount", req.Amount.String()),
		attribute.String("trade_type", req.TradeType.String()),
	)

	tokens, err := a.TProvider.GetTokens(ctx, []common.Address{req.TokenIn, req.TokenOut}, nil)
	if err != nil {
		return respondError(c, span, err)
	}

	amountToken, ok := tokens.GetTokenByAddress(req.AmountToken())
	if !ok {
		return respondError(c, span, fmt.Errorf("%w: %s", types.ErrTokenNotValid, req.AmountToken().Hex()))
	}
	quoteToken, ok := tokens.GetTokenByAddress(req.QuoteToken())
	if !ok {
		return respondError(c, span, fmt.Errorf("%w: %s", types.ErrTokenNotValid, req.QuoteToken().Hex()))
	}

	routingConfig, err := a.routingConfig(&req)
	if err != nil {
		return respondError(c, span, err)
	}

	swapRoute, err := a.RUsecase.Route(ctx, domain.NewCurrencyAmount(amountToken, req.Amount), quoteToken, req.TradeType, req.SwapOptions(), &routingConfig)
	if err != nil {
		a.logger.Error("failed to route", zap.String("path", domain.GetURLPathFromContext(ctx)), zap.String("token_in", req.TokenIn.Hex()), zap.String("token_out", req.TokenOut.Hex()), zap.Error(err))
		return respondError(c, span, err)
	}

	if swapRoute == nil {
		return c.JSON(http.StatusNotFound, domain.ResponseError{Message: "no route found"})
	}

	return c.JSON(http.StatusOK, swapRoute)
}

// respondError records err on the request span and answers with its status code.
func respondError(c echo.Context, span trace.Span, err error) error {
	sorhttp.RecordSpanError(span, err)
	return c.JSON(domain.GetStatusCode(err), domain.ResponseError{Message: err.Error()})
}

// routingConfig applies the request overrides to the process level defaults.
func (a *RouterHandler) routingConfig(req *types.GetQuoteRequest) (domain.RoutingConfig, error) {
	config, err := a.RUsecase.GetConfig().DefaultRoutingConfig()
	if err != nil {
		return domain.RoutingConfig{}, err
	}

	if len(req.Protocols) > 0 {
		config.Protocols = req.Protocols
	}

	if req.MaxSplits > 0 {
		config.MaxSplits = req.MaxSplits
		if config.MinSplits > config.MaxSplits {
			config.MinSplits = config.MaxSplits
		}
	}

	if req.ForceCrossProtocol {
		config.ForceCrossProtocol = true
	}

	return config, nil
}
