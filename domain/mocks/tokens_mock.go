package mocks

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
)

var _ mvc.TokenProvider = &TokenProviderMock{}

// TokenProviderMock is a mock implementation of mvc.TokenProvider.
type TokenProviderMock struct {
	GetTokensFunc func(ctx context.Context, addresses []common.Address, blockNumber *uint64) (domain.TokenAccessor, error)
}

// GetTokens implements mvc.TokenProvider.
func (m *TokenProviderMock) GetTokens(ctx context.Context, addresses []common.Address, blockNumber *uint64) (domain.TokenAccessor, error) {
	if m.GetTokensFunc != nil {
		return m.GetTokensFunc(ctx, addresses, blockNumber)
	}
	panic("unimplemented")
}

// WithTokens returns a mock resolving only the given tokens.
func WithTokens(tokens ...domain.Token) *TokenProviderMock {
	return &TokenProviderMock{
		GetTokensFunc: func(ctx context.Context, addresses []common.Address, blockNumber *uint64) (domain.TokenAccessor, error) {
			known := make(map[common.Address]domain.Token, len(tokens))
			for _, t := range tokens {
				known[t.Address] = t
			}

			resolved := make([]domain.Token, 0, len(addresses))
			for _, a := range addresses {
				if t, ok := known[a]; ok {
					resolved = append(resolved, t)
				}
			}
			return TokenAccessorMock(resolved), nil
		},
	}
}

// TokenAccessorMock is a slice backed domain.TokenAccessor.
type TokenAccessorMock []domain.Token

var _ domain.TokenAccessor = TokenAccessorMock{}

// GetTokenByAddress implements domain.TokenAccessor.
func (m TokenAccessorMock) GetTokenByAddress(address common.Address) (domain.Token, bool) {
	for _, t := range m {
		if t.Address == address {
			return t, true
		}
	}
	return domain.Token{}, false
}

// GetTokenBySymbol implements domain.TokenAccessor.
func (m TokenAccessorMock) GetTokenBySymbol(symbol string) (domain.Token, bool) {
	for _, t := range m {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return domain.Token{}, false
}

// GetAllTokens implements domain.TokenAccessor.
func (m TokenAccessorMock) GetAllTokens() []domain.Token {
	return m
}
