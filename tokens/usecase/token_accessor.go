package usecase

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
)

type tokenAccessor struct {
	tokens    []domain.Token
	byAddress map[common.Address]domain.Token
	bySymbol  map[string]domain.Token
}

var _ domain.TokenAccessor = &tokenAccessor{}

// NewTokenAccessor indexes tokens by address and by lowercased symbol.
// When two tokens share a symbol, the first one wins.
func NewTokenAccessor(tokens []domain.Token) domain.TokenAccessor {
	accessor := &tokenAccessor{
		tokens:    make([]domain.Token, 0, len(tokens)),
		byAddress: make(map[common.Address]domain.Token, len(tokens)),
		bySymbol:  make(map[string]domain.Token, len(tokens)),
	}

	for _, token := range tokens {
		if _, ok := accessor.byAddress[token.Address]; ok {
			continue
		}
		accessor.tokens = append(accessor.tokens, token)
		accessor.byAddress[token.Address] = token

		symbol := strings.ToLower(token.Symbol)
		if _, ok := accessor.bySymbol[symbol]; !ok && symbol != "" {
			accessor.bySymbol[symbol] = token
		}
	}

	return accessor
}

// GetTokenByAddress implements domain.TokenAccessor.
func (a *tokenAccessor) GetTokenByAddress(address common.Address) (domain.Token, bool) {
	token, ok := a.byAddress[address]
	return token, ok
}

// GetTokenBySymbol implements domain.TokenAccessor.
func (a *tokenAccessor) GetTokenBySymbol(symbol string) (domain.Token, bool) {
	token, ok := a.bySymbol[strings.ToLower(symbol)]
	return token, ok
}

// GetAllTokens implements domain.TokenAccessor.
func (a *tokenAccessor) GetAllTokens() []domain.Token {
	return a.tokens
}
