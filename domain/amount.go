package domain

import (
	"fmt"

	"github.com/osmosis-labs/osmosis/osmomath"
)

// CurrencyAmount is an exact non-negative integer quantity of a token in its smallest unit.
// All arithmetic is exact. Mixing tokens panics.
type CurrencyAmount struct {
	Token  Token        `json:"token"`
	Amount osmomath.Int `json:"amount"`
}

// NewCurrencyAmount returns an amount of the given token.
func NewCurrencyAmount(token Token, amount osmomath.Int) CurrencyAmount {
	return CurrencyAmount{Token: token, Amount: amount}
}

// ZeroAmount returns a zero amount of the token.
func ZeroAmount(token Token) CurrencyAmount {
	return CurrencyAmount{Token: token, Amount: osmomath.ZeroInt()}
}

func (c CurrencyAmount) mustMatch(other CurrencyAmount) {
	if !c.Token.Equals(other.Token) {
		panic(fmt.Sprintf("token mismatch: %s vs %s", c.Token, other.Token))
	}
}

// Add returns c + other.
func (c CurrencyAmount) Add(other CurrencyAmount) CurrencyAmount {
	c.mustMatch(other)
	return CurrencyAmount{Token: c.Token, Amount: c.Amount.Add(other.Amount)}
}

// Sub returns c - other. Callers are responsible for ensuring the result is non-negative.
func (c CurrencyAmount) Sub(other CurrencyAmount) CurrencyAmount {
	c.mustMatch(other)
	return CurrencyAmount{Token: c.Token, Amount: c.Amount.Sub(other.Amount)}
}

// Percent returns floor(c * percent / 100).
func (c CurrencyAmount) Percent(percent int) CurrencyAmount {
	return CurrencyAmount{Token: c.Token, Amount: c.Amount.MulRaw(int64(percent)).QuoRaw(100)}
}

func (c CurrencyAmount) GT(other CurrencyAmount) bool {
	c.mustMatch(other)
	return c.Amount.GT(other.Amount)
}

func (c CurrencyAmount) LT(other CurrencyAmount) bool {
	c.mustMatch(other)
	return c.Amount.LT(other.Amount)
}

func (c CurrencyAmount) Equal(other CurrencyAmount) bool {
	return c.Token.Equals(other.Token) && c.Amount.Equal(other.Amount)
}

// IsZero returns true for a nil or zero amount.
func (c CurrencyAmount) IsZero() bool {
	return c.Amount.IsNil() || c.Amount.IsZero()
}

// IsPositive returns true if the amount is set and strictly greater than zero.
func (c CurrencyAmount) IsPositive() bool {
	return !c.Amount.IsNil() && c.Amount.IsPositive()
}

func (c CurrencyAmount) String() string {
	return fmt.Sprintf("%s%s", c.Amount, c.Token)
}
