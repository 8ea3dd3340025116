package domain

import (
	"github.com/osmosis-labs/osmosis/osmomath"
)

// bitLenLookup maps a bit length to the order of magnitude of the amounts having it.
// When cmpValue is set, amounts below it belong to the previous order of magnitude.
type bitLenLookup struct {
	orderOfMagnitude int
	cmpValue         *osmomath.Int
}

var (
	bitLenToOrderOfMagnitude []bitLenLookup
	maxLookupPowTen          = 9
	maxLookupValue           osmomath.Int
)

func init() {
	ten := osmomath.NewInt(10)
	nextPowTen := osmomath.NewInt(10)
	nextBitLen := nextPowTen.BigIntMut().BitLen()
	curIndex := 0
	curBitLen := 1

	bitLenToOrderOfMagnitude = append(bitLenToOrderOfMagnitude, bitLenLookup{orderOfMagnitude: 0})
	for curIndex <= maxLookupPowTen {
		if curBitLen < nextBitLen {
			bitLenToOrderOfMagnitude = append(bitLenToOrderOfMagnitude, bitLenLookup{orderOfMagnitude: curIndex})
		} else {
			cmpTen := nextPowTen
			nextPowTen = nextPowTen.Mul(ten)
			nextBitLen = nextPowTen.BigIntMut().BitLen()
			curIndex++
			bitLenToOrderOfMagnitude = append(bitLenToOrderOfMagnitude, bitLenLookup{orderOfMagnitude: curIndex, cmpValue: &cmpTen})
		}

		curBitLen++
	}

	maxLookupValue = nextPowTen.QuoRaw(100)
}

// OrderOfMagnitude returns floor(log10(amount)), with 0 for amounts below 10.
// Uses a lookup table over bit lengths and recurses for amounts beyond it.
func OrderOfMagnitude(amount osmomath.Int) int {
	bitLen := amount.BigIntMut().BitLen()
	if bitLen >= len(bitLenToOrderOfMagnitude) {
		return maxLookupPowTen + OrderOfMagnitude(amount.Quo(maxLookupValue))
	}

	val := bitLenToOrderOfMagnitude[bitLen]
	if val.cmpValue == nil {
		return val.orderOfMagnitude
	}
	if amount.LT(*val.cmpValue) {
		return val.orderOfMagnitude - 1
	}
	return val.orderOfMagnitude
}

// AmountBucket returns the route cache bucket of an amount.
// Amounts within the same order of magnitude share cached routes.
func AmountBucket(amount CurrencyAmount) int {
	if amount.IsZero() {
		return 0
	}
	return OrderOfMagnitude(amount.Amount)
}
