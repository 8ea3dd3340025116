package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/baseswapfi/sor/chain"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/domain/slices"
	"github.com/baseswapfi/sor/log"
)

// symbolDecoder decodes the return data of symbol() under one ABI encoding.
type symbolDecoder struct {
	name string
	abi  abi.ABI
}

// symbolDecoders are tried in order. Some older tokens return bytes32 instead of string.
var symbolDecoders = []symbolDecoder{
	{name: "string", abi: chain.ERC20ABI},
	{name: "bytes32", abi: chain.ERC20Bytes32ABI},
}

// TokenProviderConfig configures the token provider.
type TokenProviderConfig struct {
	MulticallChunk  int
	GasLimitPerCall uint64
	CacheSize       int
	CacheExpiry     time.Duration
}

type tokenProvider struct {
	chainID   domain.ChainID
	multicall mvc.MulticallProvider
	chunkSize int
	gasLimit  uint64
	cache     *expirable.LRU[common.Address, domain.Token]
	logger    log.Logger
}

var _ mvc.TokenProvider = &tokenProvider{}

// NewTokenProvider returns a token provider reading ERC20 metadata through the multicall executor.
// Resolved tokens are memoised. The base tokens of the chain are preloaded.
func NewTokenProvider(chainID domain.ChainID, multicall mvc.MulticallProvider, config TokenProviderConfig, logger log.Logger) mvc.TokenProvider {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}

	cache := expirable.NewLRU[common.Address, domain.Token](config.CacheSize, nil, config.CacheExpiry)
	for _, token := range domain.BaseTokens(chainID) {
		cache.Add(token.Address, token)
	}

	return &tokenProvider{
		chainID:   chainID,
		multicall: multicall,
		chunkSize: config.MulticallChunk,
		gasLimit:  config.GasLimitPerCall,
		cache:     cache,
		logger:    logger,
	}
}

// GetTokens implements mvc.TokenProvider.
func (p *tokenProvider) GetTokens(ctx context.Context, addresses []common.Address, blockNumber *uint64) (domain.TokenAccessor, error) {
	resolved := make([]domain.Token, 0, len(addresses))
	missing := make([]common.Address, 0, len(addresses))

	for _, address := range slices.Unique(addresses) {
		if token, ok := p.cache.Get(address); ok {
			resolved = append(resolved, token)
			continue
		}
		missing = append(missing, address)
	}

	if len(missing) == 0 {
		return NewTokenAccessor(resolved), nil
	}

	symbolData, err := chain.ERC20ABI.Pack("symbol")
	if err != nil {
		return nil, err
	}
	decimalsData, err := chain.ERC20ABI.Pack("decimals")
	if err != nil {
		return nil, err
	}

	calls := make([]domain.Call, 0, 2*len(missing))
	for _, address := range missing {
		calls = append(calls,
			domain.Call{Target: address, CallData: symbolData, GasLimit: p.gasLimit},
			domain.Call{Target: address, CallData: decimalsData, GasLimit: p.gasLimit},
		)
	}

	chunk := p.chunkSize
	if chunk > 0 && chunk%2 != 0 {
		chunk++
	}

	_, results, err := chain.CallManyChunked(ctx, p.multicall, calls, chunk, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch token metadata: %w", err)
	}

	for i, address := range missing {
		symbol, err := decodeSymbol(results[2*i])
		if err != nil {
			p.logger.Debug("dropping token with invalid symbol", zap.String("token", address.Hex()), zap.Error(err))
			continue
		}
		decimals, err := decodeDecimals(results[2*i+1])
		if err != nil {
			p.logger.Debug("dropping token with invalid decimals", zap.String("token", address.Hex()), zap.Error(err))
			continue
		}

		token := domain.Token{
			ChainID:  p.chainID,
			Address:  address,
			Decimals: decimals,
			Symbol:   symbol,
		}
		p.cache.Add(address, token)
		resolved = append(resolved, token)
	}

	return NewTokenAccessor(resolved), nil
}

func decodeSymbol(result domain.CallResult) (string, error) {
	if !result.Success {
		return "", fmt.Errorf("symbol reverted")
	}

	errs := make([]string, 0, len(symbolDecoders))
	for _, decoder := range symbolDecoders {
		symbol, err := decodeSymbolWith(decoder, result.ReturnData)
		if err == nil {
			return symbol, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", decoder.name, err))
	}

	return "", fmt.Errorf("undecodable symbol (%s)", strings.Join(errs, "; "))
}

func decodeSymbolWith(decoder symbolDecoder, data []byte) (string, error) {
	out, err := decoder.abi.Unpack("symbol", data)
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("no values")
	}

	var symbol string
	switch v := out[0].(type) {
	case string:
		symbol = v
	case [32]byte:
		symbol = string(bytes.TrimRight(v[:], "\x00"))
	default:
		return "", fmt.Errorf("unexpected type %T", out[0])
	}

	if symbol == "" || !utf8.ValidString(symbol) {
		return "", fmt.Errorf("invalid symbol %q", symbol)
	}

	return symbol, nil
}

func decodeDecimals(result domain.CallResult) (uint8, error) {
	if !result.Success {
		return 0, fmt.Errorf("decimals reverted")
	}

	out, err := chain.ERC20ABI.Unpack("decimals", result.ReturnData)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("no values")
	}

	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", out[0])
	}

	return decimals, nil
}
