package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
)

// EthClient is the subset of the JSON-RPC client used by the router.
type EthClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

var _ EthClient = (*ethclient.Client)(nil)

// Client executes batched calls and reads chain parameters.
type Client interface {
	mvc.MulticallProvider
	mvc.GasPriceProvider
	mvc.BlockNumberProvider
	mvc.L1GasDataProvider

	// CallContract executes a single read-only call.
	CallContract(ctx context.Context, to common.Address, data []byte, blockNumber *uint64) ([]byte, error)
	// EstimateGas estimates the gas of a transaction.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)

	GetChainID() domain.ChainID
}

// ClientConfig configures a chain client.
type ClientConfig struct {
	ChainID          domain.ChainID
	MulticallAddress common.Address
	GasOracleAddress common.Address
	// MaxBatchGasLimit bounds the summed gas limits of a batch. Zero disables the check.
	MaxBatchGasLimit uint64
}

type chainClient struct {
	eth    EthClient
	config ClientConfig
}

var _ Client = &chainClient{}

// multicallOverheadGas is added on top of the summed per-call limits.
const multicallOverheadGas = 1_000_000

type multicallCall struct {
	Target   common.Address
	GasLimit *big.Int
	CallData []byte
}

type multicallOutput struct {
	BlockNumber *big.Int
	ReturnData  []struct {
		Success    bool
		GasUsed    *big.Int
		ReturnData []byte
	}
}

// Dial connects to the RPC endpoint.
func Dial(ctx context.Context, rpcEndpoint string, config ClientConfig) (Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcEndpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcEndpoint, err)
	}
	return NewClient(eth, config), nil
}

// NewClient wraps an existing JSON-RPC client.
func NewClient(eth EthClient, config ClientConfig) Client {
	return &chainClient{
		eth:    eth,
		config: config,
	}
}

// GetChainID implements Client.
func (c *chainClient) GetChainID() domain.ChainID {
	return c.config.ChainID
}

// BlockNumber implements mvc.BlockNumberProvider.
func (c *chainClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// GetGasPrice implements mvc.GasPriceProvider.
func (c *chainClient) GetGasPrice(ctx context.Context) (domain.GasPrice, error) {
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return domain.GasPrice{}, err
	}
	return domain.GasPrice{GasPriceWei: osmomath.NewIntFromBigInt(gasPrice)}, nil
}

// CallMany implements mvc.MulticallProvider.
func (c *chainClient) CallMany(ctx context.Context, calls []domain.Call, blockNumber *uint64) (uint64, []domain.CallResult, error) {
	if len(calls) == 0 {
		return 0, nil, nil
	}

	totalGas := domain.TotalGasLimit(calls)
	if c.config.MaxBatchGasLimit > 0 && totalGas > c.config.MaxBatchGasLimit {
		return 0, nil, domain.BatchGasLimitExceededError{
			BatchSize:    len(calls),
			RequestedGas: totalGas,
			MaxGas:       c.config.MaxBatchGasLimit,
		}
	}

	multicallCalls := make([]multicallCall, len(calls))
	for i, call := range calls {
		multicallCalls[i] = multicallCall{
			Target:   call.Target,
			GasLimit: new(big.Int).SetUint64(call.GasLimit),
			CallData: call.CallData,
		}
	}

	data, err := MulticallABI.Pack("multicall", multicallCalls)
	if err != nil {
		return 0, nil, fmt.Errorf("pack multicall: %w", err)
	}

	msg := ethereum.CallMsg{
		To:   &c.config.MulticallAddress,
		Data: data,
	}
	if totalGas > 0 {
		msg.Gas = totalGas + multicallOverheadGas
	}

	raw, err := c.eth.CallContract(ctx, msg, toBigBlock(blockNumber))
	if err != nil {
		if isOutOfGas(err) {
			return 0, nil, domain.BatchGasLimitExceededError{BatchSize: len(calls), RequestedGas: totalGas}
		}
		return 0, nil, err
	}

	var out multicallOutput
	if err := MulticallABI.UnpackIntoInterface(&out, "multicall", raw); err != nil {
		return 0, nil, fmt.Errorf("unpack multicall: %w", err)
	}

	if len(out.ReturnData) != len(calls) {
		return 0, nil, fmt.Errorf("multicall returned %d results for %d calls", len(out.ReturnData), len(calls))
	}

	results := make([]domain.CallResult, len(calls))
	for i, r := range out.ReturnData {
		results[i] = domain.CallResult{
			Success:    r.Success,
			ReturnData: r.ReturnData,
		}
		if r.GasUsed != nil {
			results[i].GasUsed = r.GasUsed.Uint64()
		}
	}

	return out.BlockNumber.Uint64(), results, nil
}

// CallContract implements Client.
func (c *chainClient) CallContract(ctx context.Context, to common.Address, data []byte, blockNumber *uint64) ([]byte, error) {
	return c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, toBigBlock(blockNumber))
}

// EstimateGas implements Client.
func (c *chainClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return c.eth.EstimateGas(ctx, msg)
}

// GetL1GasData implements mvc.L1GasDataProvider.
// Reads the parameters of the OP stack gas price oracle.
func (c *chainClient) GetL1GasData(ctx context.Context) (domain.L1GasData, error) {
	if c.config.GasOracleAddress == (common.Address{}) {
		return domain.L1GasData{}, errors.New("gas price oracle address is not configured")
	}

	values := make([]osmomath.Int, 0, 3)
	for _, method := range []string{"l1BaseFee", "overhead", "scalar"} {
		data, err := GasPriceOracleABI.Pack(method)
		if err != nil {
			return domain.L1GasData{}, err
		}
		raw, err := c.CallContract(ctx, c.config.GasOracleAddress, data, nil)
		if err != nil {
			return domain.L1GasData{}, fmt.Errorf("call %s: %w", method, err)
		}
		out, err := GasPriceOracleABI.Unpack(method, raw)
		if err != nil {
			return domain.L1GasData{}, fmt.Errorf("unpack %s: %w", method, err)
		}
		value, ok := out[0].(*big.Int)
		if !ok {
			return domain.L1GasData{}, fmt.Errorf("unexpected %s output %T", method, out[0])
		}
		values = append(values, osmomath.NewIntFromBigInt(value))
	}

	return domain.L1GasData{
		L1BaseFeeWei: values[0],
		Overhead:     values[1],
		Scalar:       values[2],
	}, nil
}

func toBigBlock(blockNumber *uint64) *big.Int {
	if blockNumber == nil {
		return nil
	}
	return new(big.Int).SetUint64(*blockNumber)
}

func isOutOfGas(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "out of gas") || strings.Contains(msg, "gas required exceeds")
}
