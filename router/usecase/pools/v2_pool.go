package pools

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
)

var _ domain.LocalQuotablePool = &V2Pool{}

var (
	v2FeeNumerator   = big.NewInt(997)
	v2FeeDenominator = big.NewInt(1000)
)

// V2Pool is a constant-product pair with a 0.3% fee.
type V2Pool struct {
	Address  common.Address
	Token0   domain.Token
	Token1   domain.Token
	Reserve0 osmomath.Int
	Reserve1 osmomath.Int
}

// NewV2Pool returns a pair with tokens sorted. Reserves follow the given token order.
func NewV2Pool(address common.Address, tokenA, tokenB domain.Token, reserveA, reserveB osmomath.Int) *V2Pool {
	if tokenB.SortsBefore(tokenA) {
		tokenA, tokenB = tokenB, tokenA
		reserveA, reserveB = reserveB, reserveA
	}
	return &V2Pool{
		Address:  address,
		Token0:   tokenA,
		Token1:   tokenB,
		Reserve0: reserveA,
		Reserve1: reserveB,
	}
}

func (p *V2Pool) GetAddress() common.Address { return p.Address }

func (p *V2Pool) GetProtocol() domain.Protocol { return domain.ProtocolV2 }

func (p *V2Pool) GetToken0() domain.Token { return p.Token0 }

func (p *V2Pool) GetToken1() domain.Token { return p.Token1 }

func (p *V2Pool) GetFee() domain.FeeAmount { return domain.V2FeeAmount }

// GetLiquidity returns sqrt(reserve0 * reserve1).
func (p *V2Pool) GetLiquidity() osmomath.Int {
	k := new(big.Int).Mul(p.Reserve0.BigInt(), p.Reserve1.BigInt())
	return osmomath.NewIntFromBigInt(new(big.Int).Sqrt(k))
}

func (p *V2Pool) Involves(token domain.Token) bool {
	return p.Token0.Equals(token) || p.Token1.Equals(token)
}

func (p *V2Pool) OtherToken(token domain.Token) (domain.Token, error) {
	switch {
	case p.Token0.Equals(token):
		return p.Token1, nil
	case p.Token1.Equals(token):
		return p.Token0, nil
	default:
		return domain.Token{}, domain.TokenNotInPoolError{Token: token.String(), Pool: p.Address.Hex()}
	}
}

// reserves returns (reserveIn, reserveOut, tokenOut) for a swap from tokenIn.
func (p *V2Pool) reserves(tokenIn domain.Token) (*big.Int, *big.Int, domain.Token, error) {
	switch {
	case p.Token0.Equals(tokenIn):
		return p.Reserve0.BigInt(), p.Reserve1.BigInt(), p.Token1, nil
	case p.Token1.Equals(tokenIn):
		return p.Reserve1.BigInt(), p.Reserve0.BigInt(), p.Token0, nil
	default:
		return nil, nil, domain.Token{}, domain.TokenNotInPoolError{Token: tokenIn.String(), Pool: p.Address.Hex()}
	}
}

// GetOutputAmount implements domain.LocalQuotablePool.
func (p *V2Pool) GetOutputAmount(amountIn domain.CurrencyAmount) (domain.CurrencyAmount, error) {
	reserveIn, reserveOut, tokenOut, err := p.reserves(amountIn.Token)
	if err != nil {
		return domain.CurrencyAmount{}, err
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return domain.CurrencyAmount{}, domain.InsufficientReservesError{Pool: p.Address.Hex()}
	}

	amountInWithFee := new(big.Int).Mul(amountIn.Amount.BigInt(), v2FeeNumerator)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, v2FeeDenominator)
	denominator.Add(denominator, amountInWithFee)

	out := numerator.Quo(numerator, denominator)
	if out.Sign() == 0 {
		return domain.CurrencyAmount{}, domain.InsufficientReservesError{Pool: p.Address.Hex()}
	}

	outAmount, err := toInt(out)
	if err != nil {
		return domain.CurrencyAmount{}, err
	}
	return domain.NewCurrencyAmount(tokenOut, outAmount), nil
}

// GetInputAmount implements domain.LocalQuotablePool.
func (p *V2Pool) GetInputAmount(amountOut domain.CurrencyAmount) (domain.CurrencyAmount, error) {
	tokenIn, err := p.OtherToken(amountOut.Token)
	if err != nil {
		return domain.CurrencyAmount{}, err
	}
	reserveIn, reserveOut, _, err := p.reserves(tokenIn)
	if err != nil {
		return domain.CurrencyAmount{}, err
	}

	out := amountOut.Amount.BigInt()
	if reserveIn.Sign() == 0 || reserveOut.Cmp(out) <= 0 {
		return domain.CurrencyAmount{}, domain.InsufficientReservesError{Pool: p.Address.Hex()}
	}

	numerator := new(big.Int).Mul(reserveIn, out)
	numerator.Mul(numerator, v2FeeDenominator)
	denominator := new(big.Int).Sub(reserveOut, out)
	denominator.Mul(denominator, v2FeeNumerator)

	in := numerator.Quo(numerator, denominator)
	in.Add(in, big.NewInt(1))

	inAmount, err := toInt(in)
	if err != nil {
		return domain.CurrencyAmount{}, err
	}
	return domain.NewCurrencyAmount(tokenIn, inAmount), nil
}

// MidPriceQuote implements domain.PoolI.
func (p *V2Pool) MidPriceQuote(amount domain.CurrencyAmount) (domain.CurrencyAmount, error) {
	reserveIn, reserveOut, tokenOut, err := p.reserves(amount.Token)
	if err != nil {
		return domain.CurrencyAmount{}, err
	}
	if reserveIn.Sign() == 0 {
		return domain.CurrencyAmount{}, domain.InsufficientReservesError{Pool: p.Address.Hex()}
	}

	quoted, err := toInt(mulDiv(amount.Amount.BigInt(), reserveOut, reserveIn))
	if err != nil {
		return domain.CurrencyAmount{}, err
	}
	return domain.NewCurrencyAmount(tokenOut, quoted), nil
}

func (p *V2Pool) String() string {
	return fmt.Sprintf("V2 %s %s/%s reserves %s/%s", p.Address.Hex(), p.Token0.Symbol, p.Token1.Symbol, p.Reserve0, p.Reserve1)
}
