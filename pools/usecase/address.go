package usecase

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/baseswapfi/sor/domain"
)

// ComputeV2PairAddress derives the CREATE2 address of a constant-product pair.
// salt = keccak256(token0 ++ token1)
func ComputeV2PairAddress(factory common.Address, initCodeHash common.Hash, tokenA, tokenB domain.Token) common.Address {
	token0, token1 := domain.SortTokens(tokenA, tokenB)

	salt := crypto.Keccak256Hash(token0.Address.Bytes(), token1.Address.Bytes())

	return crypto.CreateAddress2(factory, salt, initCodeHash.Bytes())
}

// ComputeV3PoolAddress derives the CREATE2 address of a concentrated liquidity pool.
// salt = keccak256(abi.encode(token0, token1, fee))
func ComputeV3PoolAddress(factory common.Address, initCodeHash common.Hash, tokenA, tokenB domain.Token, fee domain.FeeAmount) common.Address {
	token0, token1 := domain.SortTokens(tokenA, tokenB)

	encoded := make([]byte, 0, 96)
	encoded = append(encoded, common.LeftPadBytes(token0.Address.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(token1.Address.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(big.NewInt(int64(fee)).Bytes(), 32)...)

	salt := crypto.Keccak256Hash(encoded)

	return crypto.CreateAddress2(factory, salt, initCodeHash.Bytes())
}
