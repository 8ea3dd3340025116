package pools

import (
	"fmt"
	"math/big"

	"github.com/osmosis-labs/osmosis/osmomath"
)

const maxIntBitLen = 255

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// toInt converts an intermediate result back to osmomath.Int, erroring instead of panicking
// when it does not fit.
func toInt(v *big.Int) (osmomath.Int, error) {
	if v.BitLen() > maxIntBitLen {
		return osmomath.Int{}, fmt.Errorf("result overflows 256 bits")
	}
	return osmomath.NewIntFromBigInt(v), nil
}

// mulDiv returns floor(a * b / c) using arbitrary precision intermediates.
func mulDiv(a, b, c *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, c)
}
