package domain

import "github.com/ethereum/go-ethereum/common"

// Call is a single simulated contract call in a batch.
type Call struct {
	Target   common.Address
	CallData []byte
	GasLimit uint64
}

// CallResult is the outcome of a Call, aligned by index with the request.
type CallResult struct {
	Success    bool
	GasUsed    uint64
	ReturnData []byte
}

// TotalGasLimit sums the gas limits of the calls.
func TotalGasLimit(calls []Call) uint64 {
	total := uint64(0)
	for _, c := range calls {
		total += c.GasLimit
	}
	return total
}
