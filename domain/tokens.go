package domain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Token is an ERC20 asset on a specific chain.
type Token struct {
	ChainID  ChainID        `json:"chainId"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name,omitempty"`
}

// NewToken returns a token for the given hex address.
func NewToken(chainID ChainID, address string, decimals uint8, symbol, name string) Token {
	return Token{
		ChainID:  chainID,
		Address:  common.HexToAddress(address),
		Decimals: decimals,
		Symbol:   symbol,
		Name:     name,
	}
}

// Equals returns true if both tokens live on the same chain at the same address.
// Address comparison is case insensitive since addresses are stored as bytes.
func (t Token) Equals(other Token) bool {
	return t.ChainID == other.ChainID && t.Address == other.Address
}

// SortsBefore returns true if t is token0 of a pool formed with other.
func (t Token) SortsBefore(other Token) bool {
	return bytes.Compare(t.Address.Bytes(), other.Address.Bytes()) < 0
}

// IsZero returns true if the token has no address set.
func (t Token) IsZero() bool {
	return t.Address == (common.Address{})
}

// Key returns the lowercased hex address, used as a map key.
func (t Token) Key() string {
	return strings.ToLower(t.Address.Hex())
}

func (t Token) String() string {
	if t.Symbol != "" {
		return fmt.Sprintf("%s(%s)", t.Symbol, t.Address.Hex())
	}
	return t.Address.Hex()
}

// SortTokens returns the pair ordered as token0, token1.
func SortTokens(a, b Token) (Token, Token) {
	if a.SortsBefore(b) {
		return a, b
	}
	return b, a
}

// TokenAccessor provides read access to a resolved set of tokens.
type TokenAccessor interface {
	// GetTokenByAddress returns the token at the given address, if it was resolved.
	GetTokenByAddress(address common.Address) (Token, bool)
	// GetTokenBySymbol returns the token matching the symbol (case insensitive).
	GetTokenBySymbol(symbol string) (Token, bool)
	// GetAllTokens returns every resolved token.
	GetAllTokens() []Token
}
