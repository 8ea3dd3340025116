package chain_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/baseswapfi/sor/chain"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mocks"
)

var multicallAddress = common.HexToAddress("0x00000000000000000000000000000000000000cc")

type multicallCallArgs struct {
	Target   common.Address
	GasLimit *big.Int
	CallData []byte
}

type multicallResult struct {
	Success    bool
	GasUsed    *big.Int
	ReturnData []byte
}

// echoEthClient answers multicalls by echoing the call data of each call.
// Calls with empty call data fail.
type echoEthClient struct {
	blockNumber uint64
	err         error

	mu      sync.Mutex
	lastMsg ethereum.CallMsg
}

func (c *echoEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.blockNumber, nil
}

func (c *echoEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}

func (c *echoEthClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 21_000, nil
}

func (c *echoEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	c.lastMsg = msg
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}

	method := chain.MulticallABI.Methods["multicall"]
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	calls := *abi.ConvertType(args[0], new([]multicallCallArgs)).(*[]multicallCallArgs)

	results := make([]multicallResult, len(calls))
	for i, call := range calls {
		results[i] = multicallResult{
			Success:    len(call.CallData) > 0,
			GasUsed:    call.GasLimit,
			ReturnData: call.CallData,
		}
	}

	block := new(big.Int).SetUint64(c.blockNumber)
	if blockNumber != nil {
		block = blockNumber
	}
	return method.Outputs.Pack(block, results)
}

func TestCallMany(t *testing.T) {
	eth := &echoEthClient{blockNumber: 77}
	client := chain.NewClient(eth, chain.ClientConfig{
		ChainID:          domain.ChainBase,
		MulticallAddress: multicallAddress,
		MaxBatchGasLimit: 1_000,
	})

	calls := []domain.Call{
		{Target: common.HexToAddress("0x1"), CallData: []byte{0x01}, GasLimit: 100},
		{Target: common.HexToAddress("0x2"), CallData: nil, GasLimit: 200},
		{Target: common.HexToAddress("0x3"), CallData: []byte{0x03, 0x04}, GasLimit: 300},
	}

	blockNumber, results, err := client.CallMany(context.Background(), calls, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(77), blockNumber)
	require.Len(t, results, 3)

	require.True(t, results[0].Success)
	require.Equal(t, []byte{0x01}, results[0].ReturnData)
	require.Equal(t, uint64(100), results[0].GasUsed)
	require.False(t, results[1].Success)
	require.Equal(t, []byte{0x03, 0x04}, results[2].ReturnData)

	require.Equal(t, multicallAddress, *eth.lastMsg.To)
	require.Equal(t, uint64(600+1_000_000), eth.lastMsg.Gas)

	pinned := uint64(70)
	blockNumber, _, err = client.CallMany(context.Background(), calls[:1], &pinned)
	require.NoError(t, err)
	require.Equal(t, pinned, blockNumber)
}

func TestCallMany_GasLimits(t *testing.T) {
	calls := []domain.Call{
		{Target: common.HexToAddress("0x1"), CallData: []byte{0x01}, GasLimit: 600},
		{Target: common.HexToAddress("0x2"), CallData: []byte{0x02}, GasLimit: 600},
	}

	t.Run("batch above the configured limit", func(t *testing.T) {
		eth := &echoEthClient{}
		client := chain.NewClient(eth, chain.ClientConfig{MulticallAddress: multicallAddress, MaxBatchGasLimit: 1_000})

		_, _, err := client.CallMany(context.Background(), calls, nil)

		var gasErr domain.BatchGasLimitExceededError
		require.ErrorAs(t, err, &gasErr)
		require.Equal(t, 2, gasErr.BatchSize)
		require.Equal(t, uint64(1_200), gasErr.RequestedGas)
		require.Nil(t, eth.lastMsg.Data)
	})

	t.Run("node runs out of gas", func(t *testing.T) {
		eth := &echoEthClient{err: errors.New("execution reverted: out of gas")}
		client := chain.NewClient(eth, chain.ClientConfig{MulticallAddress: multicallAddress})

		_, _, err := client.CallMany(context.Background(), calls, nil)

		var gasErr domain.BatchGasLimitExceededError
		require.ErrorAs(t, err, &gasErr)
	})

	t.Run("other node errors are passed through", func(t *testing.T) {
		nodeErr := errors.New("connection refused")
		client := chain.NewClient(&echoEthClient{err: nodeErr}, chain.ClientConfig{MulticallAddress: multicallAddress})

		_, _, err := client.CallMany(context.Background(), calls, nil)
		require.ErrorIs(t, err, nodeErr)
	})

	t.Run("no calls", func(t *testing.T) {
		eth := &echoEthClient{}
		client := chain.NewClient(eth, chain.ClientConfig{MulticallAddress: multicallAddress})

		_, results, err := client.CallMany(context.Background(), nil, nil)
		require.NoError(t, err)
		require.Empty(t, results)
		require.Nil(t, eth.lastMsg.Data)
	})
}

func TestCallManyChunked(t *testing.T) {
	calls := make([]domain.Call, 7)
	for i := range calls {
		calls[i] = domain.Call{CallData: []byte{byte(i)}}
	}

	var batches atomic.Int32
	multicall := &mocks.MulticallProviderMock{
		CallManyFunc: func(ctx context.Context, chunk []domain.Call, blockNumber *uint64) (uint64, []domain.CallResult, error) {
			batches.Add(1)
			results := make([]domain.CallResult, len(chunk))
			for i, call := range chunk {
				results[i] = domain.CallResult{Success: true, ReturnData: call.CallData}
			}
			// Later chunks observe later blocks.
			return uint64(100 + chunk[0].CallData[0]), results, nil
		},
	}

	blockNumber, results, err := chain.CallManyChunked(context.Background(), multicall, calls, 3, nil)
	require.NoError(t, err)
	require.Equal(t, int32(3), batches.Load())
	require.Equal(t, uint64(106), blockNumber)
	require.Len(t, results, len(calls))
	for i, result := range results {
		require.Equal(t, []byte{byte(i)}, result.ReturnData)
	}

	failing := &mocks.MulticallProviderMock{
		CallManyFunc: func(ctx context.Context, chunk []domain.Call, blockNumber *uint64) (uint64, []domain.CallResult, error) {
			if chunk[0].CallData[0] == 3 {
				return 0, nil, errors.New("boom")
			}
			return 1, make([]domain.CallResult, len(chunk)), nil
		},
	}
	_, _, err = chain.CallManyChunked(context.Background(), failing, calls, 3, nil)
	require.Error(t, err)
}
