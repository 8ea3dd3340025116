package domain

import (
	"fmt"
	"strconv"
)

// ChainID is an EVM chain identifier.
type ChainID uint64

const (
	ChainBase          ChainID = 8453
	ChainBaseGoerli    ChainID = 84531
	ChainScroll        ChainID = 534352
	ChainScrollSepolia ChainID = 534351
)

var supportedChains = map[ChainID]string{
	ChainBase:          "base",
	ChainBaseGoerli:    "base-goerli",
	ChainScroll:        "scroll",
	ChainScrollSepolia: "scroll-sepolia",
}

// chains that settle to L1 and charge a data fee on top of L2 execution.
var l1FeeChains = map[ChainID]struct{}{
	ChainBase:          {},
	ChainBaseGoerli:    {},
	ChainScroll:        {},
	ChainScrollSepolia: {},
}

func (c ChainID) String() string {
	if name, ok := supportedChains[c]; ok {
		return name
	}
	return strconv.FormatUint(uint64(c), 10)
}

// IsSupportedChain returns true if the router knows about the chain.
func IsSupportedChain(chainID ChainID) bool {
	_, ok := supportedChains[chainID]
	return ok
}

// HasL1Fee returns true if transactions on the chain pay an L1 settlement fee.
func HasL1Fee(chainID ChainID) bool {
	_, ok := l1FeeChains[chainID]
	return ok
}

var (
	WETHBase        = NewToken(ChainBase, "0x4200000000000000000000000000000000000006", 18, "WETH", "Wrapped Ether")
	USDCBase        = NewToken(ChainBase, "0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA", 6, "USDbC", "USD Base Coin")
	DAIBase         = NewToken(ChainBase, "0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb", 18, "DAI", "Dai Stablecoin")
	WETHBaseGoerli  = NewToken(ChainBaseGoerli, "0x4200000000000000000000000000000000000006", 18, "WETH", "Wrapped Ether")
	WETHScroll      = NewToken(ChainScroll, "0x5300000000000000000000000000000000000004", 18, "WETH", "Wrapped Ether")
	USDCScroll      = NewToken(ChainScroll, "0x06eFdBFf2a14a7c8E15944D1F4A48F9F95F663A4", 6, "USDC", "USD Coin")
	WETHScrollTest  = NewToken(ChainScrollSepolia, "0x5300000000000000000000000000000000000004", 18, "WETH", "Wrapped Ether")
	wrappedNative   = map[ChainID]Token{ChainBase: WETHBase, ChainBaseGoerli: WETHBaseGoerli, ChainScroll: WETHScroll, ChainScrollSepolia: WETHScrollTest}
	usdStablecoins  = map[ChainID]Token{ChainBase: USDCBase, ChainScroll: USDCScroll}
	baseTokensChain = map[ChainID][]Token{
		ChainBase:          {WETHBase, USDCBase, DAIBase},
		ChainBaseGoerli:    {WETHBaseGoerli},
		ChainScroll:        {WETHScroll, USDCScroll},
		ChainScrollSepolia: {WETHScrollTest},
	}
)

// WrappedNativeToken returns the wrapped gas token of the chain.
func WrappedNativeToken(chainID ChainID) (Token, error) {
	token, ok := wrappedNative[chainID]
	if !ok {
		return Token{}, UnsupportedChainError{ChainID: chainID}
	}
	return token, nil
}

// USDStablecoin returns the stablecoin used to express gas costs in USD.
// The second return value is false on chains without one.
func USDStablecoin(chainID ChainID) (Token, bool) {
	token, ok := usdStablecoins[chainID]
	return token, ok
}

// BaseTokens returns the intermediary tokens used for route discovery on the chain.
func BaseTokens(chainID ChainID) []Token {
	return baseTokensChain[chainID]
}

// ParseChainID parses a decimal chain id.
func ParseChainID(s string) (ChainID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	return ChainID(v), nil
}
