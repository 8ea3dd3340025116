package quoteprovider

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"
	"go.uber.org/zap"

	"github.com/baseswapfi/sor/chain"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/domain/workerpool"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/router/usecase/route"
)

const (
	quoteExactInputMethod  = "quoteExactInput"
	quoteExactOutputMethod = "quoteExactOutput"
)

// ErrExactOutputNotSupported is returned by quoters that can only quote exact input.
var ErrExactOutputNotSupported = errors.New("quoter does not support exact output")

// quoteRequest is one (route, amount) pair of a batch. The indices locate
// the result slot so that failures never shift alignment.
type quoteRequest struct {
	routeIdx  int
	amountIdx int
	call      domain.Call
}

type onChainQuoteProvider struct {
	protocol      domain.Protocol
	quoterAddress common.Address
	multicall     mvc.MulticallProvider
	config        domain.OnChainQuoteConfig
	// exactOutput is false for the mixed route quoter.
	exactOutput bool
	logger      log.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ mvc.QuoteProvider = &onChainQuoteProvider{}

// NewOnChainQuoteProvider returns a quote provider simulating quoter calls through
// the batched call executor. For ProtocolMixed the quoter only supports exact input.
func NewOnChainQuoteProvider(protocol domain.Protocol, quoterAddress common.Address, multicall mvc.MulticallProvider, config domain.OnChainQuoteConfig, logger log.Logger) mvc.QuoteProvider {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &onChainQuoteProvider{
		protocol:      protocol,
		quoterAddress: quoterAddress,
		multicall:     multicall,
		config:        config,
		exactOutput:   protocol != domain.ProtocolMixed,
		logger:        logger,
		sleep:         sleepContext,
	}
}

// GetQuotesManyExactIn implements mvc.QuoteProvider.
func (p *onChainQuoteProvider) GetQuotesManyExactIn(ctx context.Context, amountIns []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
	return p.getQuotes(ctx, amountIns, routes, blockNumber, domain.TradeTypeExactInput)
}

// GetQuotesManyExactOut implements mvc.QuoteProvider.
func (p *onChainQuoteProvider) GetQuotesManyExactOut(ctx context.Context, amountOuts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
	if !p.exactOutput {
		return nil, ErrExactOutputNotSupported
	}
	return p.getQuotes(ctx, amountOuts, routes, blockNumber, domain.TradeTypeExactOutput)
}

// getQuotes returns one RouteWithQuotes per route with one AmountQuote per amount.
// When the context expires, the quotes of completed batches are returned together
// with the context error.
func (p *onChainQuoteProvider) getQuotes(ctx context.Context, amounts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64, tradeType domain.TradeType) ([]domain.RouteWithQuotes, error) {
	results := NewEmptyRouteWithQuotes(routes, amounts)

	method := quoteExactInputMethod
	encode := route.EncodePath
	if tradeType == domain.TradeTypeExactOutput {
		method = quoteExactOutputMethod
		encode = route.EncodeReversedPath
	}

	requests := make([]quoteRequest, 0, len(routes)*len(amounts))
	for i, r := range routes {
		path, err := encode(r)
		if err != nil {
			p.logger.Debug("skipping unencodable route", zap.String("route", r.String()), zap.Error(err))
			continue
		}

		for j, amount := range amounts {
			callData, err := chain.QuoterABI.Pack(method, path, amount.Amount.BigInt())
			if err != nil {
				return nil, err
			}
			requests = append(requests, quoteRequest{
				routeIdx:  i,
				amountIdx: j,
				call: domain.Call{
					Target:   p.quoterAddress,
					CallData: callData,
					GasLimit: p.config.GasLimitPerCall,
				},
			})
		}
	}

	chunk := p.config.MultiCallChunk
	if chunk <= 0 {
		chunk = len(requests)
	}

	jobs := make([]workerpool.Job[struct{}], 0, len(requests)/max(chunk, 1)+1)
	for start := 0; start < len(requests); start += chunk {
		batch := requests[start:min(start+chunk, len(requests))]
		jobs = append(jobs, workerpool.Job[struct{}]{
			Task: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, p.executeBatch(ctx, method, batch, results, blockNumber)
			},
		})
	}

	dispatcher := workerpool.NewDispatcher[struct{}](p.config.MaxConcurrency)
	jobResults := dispatcher.Run(ctx, jobs)

	var batchErrs []error
	for _, jobResult := range jobResults {
		if jobResult.Err != nil {
			batchErrs = append(batchErrs, jobResult.Err)
		}
	}

	if ctx.Err() != nil {
		return results, ctx.Err()
	}

	if len(batchErrs) > 0 {
		return nil, domain.ProtocolFetchError{Protocol: p.protocol, Err: errors.Join(batchErrs...)}
	}

	return results, nil
}

// executeBatch runs the batch with retries. A batch exceeding the gas ceiling is
// split in halves until single requests remain, a single request that still exceeds
// it is marked failed.
func (p *onChainQuoteProvider) executeBatch(ctx context.Context, method string, batch []quoteRequest, results []domain.RouteWithQuotes, blockNumber *uint64) error {
	var lastErr error
	for attempt := 0; attempt <= p.config.Retries; attempt++ {
		err := p.callBatch(ctx, method, batch, results, blockNumber)
		if err == nil {
			return nil
		}

		var gasErr domain.BatchGasLimitExceededError
		if errors.As(err, &gasErr) {
			if len(batch) == 1 {
				p.logger.Debug("quote exceeds the batch gas limit", zap.String("protocol", p.protocol.String()), zap.Error(err))
				domain.QuoteFailuresCounter.WithLabelValues(p.protocol.String()).Inc()
				return nil
			}

			domain.QuoteBatchSubdivisionsCounter.Inc()
			half := len(batch) / 2
			if err := p.executeBatch(ctx, method, batch[:half], results, blockNumber); err != nil {
				return err
			}
			return p.executeBatch(ctx, method, batch[half:], results, blockNumber)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err
		if attempt < p.config.Retries {
			p.logger.Debug("retrying quote batch", zap.String("protocol", p.protocol.String()), zap.Int("attempt", attempt+1), zap.Error(err))
			if err := p.sleep(ctx, p.backoff(attempt)); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("batch of %d quotes failed after %d retries: %w", len(batch), p.config.Retries, lastErr)
}

func (p *onChainQuoteProvider) callBatch(ctx context.Context, method string, batch []quoteRequest, results []domain.RouteWithQuotes, blockNumber *uint64) error {
	calls := make([]domain.Call, len(batch))
	for i, req := range batch {
		calls[i] = req.call
	}

	_, callResults, err := p.multicall.CallMany(ctx, calls, blockNumber)
	if err != nil {
		return err
	}
	if len(callResults) != len(batch) {
		return fmt.Errorf("received %d results for %d quotes", len(callResults), len(batch))
	}

	for i, req := range batch {
		quote := &results[req.routeIdx].Quotes[req.amountIdx]

		if !callResults[i].Success {
			domain.QuoteFailuresCounter.WithLabelValues(p.protocol.String()).Inc()
			continue
		}

		if err := decodeQuote(method, callResults[i].ReturnData, quote); err != nil {
			p.logger.Debug("failed to decode quote", zap.String("protocol", p.protocol.String()), zap.Error(err))
			domain.QuoteFailuresCounter.WithLabelValues(p.protocol.String()).Inc()
		}
	}

	return nil
}

// backoff returns min(MinBackoff * 2^attempt, MaxBackoff).
func (p *onChainQuoteProvider) backoff(attempt int) time.Duration {
	d := time.Duration(p.config.MinBackoffMs) * time.Millisecond << attempt
	maxBackoff := time.Duration(p.config.MaxBackoffMs) * time.Millisecond
	if maxBackoff > 0 && d > maxBackoff {
		return maxBackoff
	}
	return d
}

func decodeQuote(method string, data []byte, quote *domain.AmountQuote) error {
	out, err := chain.QuoterABI.Unpack(method, data)
	if err != nil {
		return err
	}
	if len(out) != 4 {
		return fmt.Errorf("quoter returned %d values", len(out))
	}

	amount, ok := out[0].(*big.Int)
	if !ok {
		return fmt.Errorf("unexpected amount type %T", out[0])
	}
	sqrtPrices, ok := out[1].([]*big.Int)
	if !ok {
		return fmt.Errorf("unexpected sqrtPriceX96AfterList type %T", out[1])
	}
	ticksCrossed, ok := out[2].([]uint32)
	if !ok {
		return fmt.Errorf("unexpected initializedTicksCrossedList type %T", out[2])
	}
	gasEstimate, ok := out[3].(*big.Int)
	if !ok {
		return fmt.Errorf("unexpected gasEstimate type %T", out[3])
	}

	quote.Quote = osmomath.NewIntFromBigInt(amount)
	quote.SqrtPriceX96AfterList = make([]osmomath.Int, len(sqrtPrices))
	for i, p := range sqrtPrices {
		quote.SqrtPriceX96AfterList[i] = osmomath.NewIntFromBigInt(p)
	}
	quote.InitializedTicksCrossedList = ticksCrossed
	quote.GasEstimate = osmomath.NewIntFromBigInt(gasEstimate)

	return nil
}

// NewEmptyRouteWithQuotes returns results for every route and amount with all quotes absent.
func NewEmptyRouteWithQuotes(routes []domain.Route, amounts []domain.CurrencyAmount) []domain.RouteWithQuotes {
	results := make([]domain.RouteWithQuotes, len(routes))
	for i, r := range routes {
		quotes := make([]domain.AmountQuote, len(amounts))
		for j, amount := range amounts {
			quotes[j] = domain.AmountQuote{Amount: amount}
		}
		results[i] = domain.RouteWithQuotes{Route: r, Quotes: quotes}
	}
	return results
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
