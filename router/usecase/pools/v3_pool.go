package pools

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
)

var _ domain.PoolI = &V3Pool{}

// V3Pool is a concentrated liquidity pool snapshot.
// Swaps over it are quoted remotely, the snapshot only serves pricing and ranking.
type V3Pool struct {
	Address      common.Address
	Token0       domain.Token
	Token1       domain.Token
	Fee          domain.FeeAmount
	SqrtPriceX96 osmomath.Int
	Liquidity    osmomath.Int
	Tick         int64
}

// NewV3Pool returns a pool with tokens sorted.
func NewV3Pool(address common.Address, tokenA, tokenB domain.Token, fee domain.FeeAmount, sqrtPriceX96, liquidity osmomath.Int, tick int64) *V3Pool {
	token0, token1 := domain.SortTokens(tokenA, tokenB)
	return &V3Pool{
		Address:      address,
		Token0:       token0,
		Token1:       token1,
		Fee:          fee,
		SqrtPriceX96: sqrtPriceX96,
		Liquidity:    liquidity,
		Tick:         tick,
	}
}

func (p *V3Pool) GetAddress() common.Address { return p.Address }

func (p *V3Pool) GetProtocol() domain.Protocol { return domain.ProtocolV3 }

func (p *V3Pool) GetToken0() domain.Token { return p.Token0 }

func (p *V3Pool) GetToken1() domain.Token { return p.Token1 }

func (p *V3Pool) GetFee() domain.FeeAmount { return p.Fee }

func (p *V3Pool) GetLiquidity() osmomath.Int { return p.Liquidity }

func (p *V3Pool) Involves(token domain.Token) bool {
	return p.Token0.Equals(token) || p.Token1.Equals(token)
}

func (p *V3Pool) OtherToken(token domain.Token) (domain.Token, error) {
	switch {
	case p.Token0.Equals(token):
		return p.Token1, nil
	case p.Token1.Equals(token):
		return p.Token0, nil
	default:
		return domain.Token{}, domain.TokenNotInPoolError{Token: token.String(), Pool: p.Address.Hex()}
	}
}

// MidPriceQuote implements domain.PoolI.
// price(token1/token0) = sqrtPriceX96^2 / 2^192.
func (p *V3Pool) MidPriceQuote(amount domain.CurrencyAmount) (domain.CurrencyAmount, error) {
	if p.SqrtPriceX96.IsNil() || p.SqrtPriceX96.IsZero() {
		return domain.CurrencyAmount{}, domain.InsufficientReservesError{Pool: p.Address.Hex()}
	}

	sqrtPrice := p.SqrtPriceX96.BigInt()
	priceX192 := new(big.Int).Mul(sqrtPrice, sqrtPrice)

	var (
		quoted   *big.Int
		tokenOut domain.Token
	)
	switch {
	case p.Token0.Equals(amount.Token):
		quoted = mulDiv(amount.Amount.BigInt(), priceX192, q192)
		tokenOut = p.Token1
	case p.Token1.Equals(amount.Token):
		quoted = mulDiv(amount.Amount.BigInt(), q192, priceX192)
		tokenOut = p.Token0
	default:
		return domain.CurrencyAmount{}, domain.TokenNotInPoolError{Token: amount.Token.String(), Pool: p.Address.Hex()}
	}

	quotedAmount, err := toInt(quoted)
	if err != nil {
		return domain.CurrencyAmount{}, err
	}
	return domain.NewCurrencyAmount(tokenOut, quotedAmount), nil
}

func (p *V3Pool) String() string {
	return fmt.Sprintf("V3 %s %s/%s fee %d liquidity %s", p.Address.Hex(), p.Token0.Symbol, p.Token1.Symbol, p.Fee, p.Liquidity)
}
