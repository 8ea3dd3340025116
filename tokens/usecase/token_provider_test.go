package usecase_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/baseswapfi/sor/chain"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mocks"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/tokens/usecase"
)

type TokenProviderTestSuite struct {
	suite.Suite
}

var (
	stringSymbolToken  = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	bytes32SymbolToken = common.HexToAddress("0x0000000000000000000000000000000000000a02")
	noDecimalsToken    = common.HexToAddress("0x0000000000000000000000000000000000000a03")
	notAToken          = common.HexToAddress("0x0000000000000000000000000000000000000a04")
)

func TestTokenProviderTestSuite(t *testing.T) {
	suite.Run(t, new(TokenProviderTestSuite))
}

func (s *TokenProviderTestSuite) multicall(numCalls *atomic.Int32) *mocks.MulticallProviderMock {
	symbolSelector := string(chain.ERC20ABI.Methods["symbol"].ID)

	return &mocks.MulticallProviderMock{
		CallManyFunc: func(ctx context.Context, calls []domain.Call, blockNumber *uint64) (uint64, []domain.CallResult, error) {
			numCalls.Add(1)

			results := make([]domain.CallResult, len(calls))
			for i, call := range calls {
				isSymbol := string(call.CallData[:4]) == symbolSelector

				var (
					data []byte
					err  error
				)
				switch {
				case call.Target == stringSymbolToken && isSymbol:
					data, err = chain.ERC20ABI.Methods["symbol"].Outputs.Pack("USDC")
				case call.Target == bytes32SymbolToken && isSymbol:
					var symbol [32]byte
					copy(symbol[:], "MKR")
					data, err = chain.ERC20Bytes32ABI.Methods["symbol"].Outputs.Pack(symbol)
				case call.Target == noDecimalsToken && isSymbol:
					data, err = chain.ERC20ABI.Methods["symbol"].Outputs.Pack("BAD")
				case call.Target == noDecimalsToken:
					results[i] = domain.CallResult{Success: false}
					continue
				case call.Target == notAToken:
					results[i] = domain.CallResult{Success: true}
					continue
				default:
					data, err = chain.ERC20ABI.Methods["decimals"].Outputs.Pack(uint8(6))
				}
				s.Require().NoError(err)

				results[i] = domain.CallResult{Success: true, ReturnData: data}
			}
			return 1, results, nil
		},
	}
}

func (s *TokenProviderTestSuite) TestGetTokens() {
	var numCalls atomic.Int32
	provider := usecase.NewTokenProvider(domain.ChainBase, s.multicall(&numCalls), usecase.TokenProviderConfig{
		MulticallChunk:  4,
		GasLimitPerCall: 50_000,
		CacheSize:       100,
		CacheExpiry:     time.Minute,
	}, nil)

	accessor, err := provider.GetTokens(context.Background(), []common.Address{
		stringSymbolToken,
		bytes32SymbolToken,
		noDecimalsToken,
		notAToken,
		stringSymbolToken,
	}, nil)
	s.Require().NoError(err)

	s.Require().Len(accessor.GetAllTokens(), 2)

	usdc, ok := accessor.GetTokenByAddress(stringSymbolToken)
	s.Require().True(ok)
	s.Require().Equal("USDC", usdc.Symbol)
	s.Require().Equal(uint8(6), usdc.Decimals)
	s.Require().Equal(domain.ChainBase, usdc.ChainID)

	// Falls back to the bytes32 encoding.
	mkr, ok := accessor.GetTokenBySymbol("mkr")
	s.Require().True(ok)
	s.Require().Equal(bytes32SymbolToken, mkr.Address)

	_, ok = accessor.GetTokenByAddress(noDecimalsToken)
	s.Require().False(ok)
	_, ok = accessor.GetTokenByAddress(notAToken)
	s.Require().False(ok)

	// Resolved tokens are memoised.
	callsBefore := numCalls.Load()
	accessor, err = provider.GetTokens(context.Background(), []common.Address{stringSymbolToken, bytes32SymbolToken}, nil)
	s.Require().NoError(err)
	s.Require().Len(accessor.GetAllTokens(), 2)
	s.Require().Equal(callsBefore, numCalls.Load())
}

func (s *TokenProviderTestSuite) TestGetTokens_BaseTokensPreloaded() {
	var numCalls atomic.Int32
	provider := usecase.NewTokenProvider(domain.ChainBase, s.multicall(&numCalls), usecase.TokenProviderConfig{
		CacheSize:   10,
		CacheExpiry: time.Minute,
	}, &log.NoOpLogger{})

	accessor, err := provider.GetTokens(context.Background(), []common.Address{domain.WETHBase.Address, domain.USDCBase.Address}, nil)
	s.Require().NoError(err)
	s.Require().Len(accessor.GetAllTokens(), 2)
	s.Require().Equal(int32(0), numCalls.Load())

	weth, ok := accessor.GetTokenBySymbol("WETH")
	s.Require().True(ok)
	s.Require().True(weth.Equals(domain.WETHBase))
}
