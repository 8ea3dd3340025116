package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/chain"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
)

// ChainCaller is the subset of chain.Client used by the estimate gas simulator.
type ChainCaller interface {
	CallContract(ctx context.Context, to common.Address, data []byte, blockNumber *uint64) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

var _ ChainCaller = chain.Client(nil)

// EthEstimateGasSimulator checks the balance and allowance of the sender and
// then estimates the gas of the swap transaction against the node.
type EthEstimateGasSimulator struct {
	client            ChainCaller
	multiplierPercent int
}

var _ mvc.Simulator = &EthEstimateGasSimulator{}

// NewEthEstimateGasSimulator creates a simulator backed by eth_call and eth_estimateGas.
func NewEthEstimateGasSimulator(client ChainCaller, multiplierPercent int) *EthEstimateGasSimulator {
	return &EthEstimateGasSimulator{
		client:            client,
		multiplierPercent: multiplierPercent,
	}
}

// Name implements mvc.Simulator.
func (s *EthEstimateGasSimulator) Name() string {
	return "eth_estimateGas"
}

// Supports implements mvc.Simulator.
func (s *EthEstimateGasSimulator) Supports(chainID domain.ChainID) bool {
	return domain.IsSupportedChain(chainID)
}

// Simulate implements mvc.Simulator.
func (s *EthEstimateGasSimulator) Simulate(ctx context.Context, from common.Address, swapOptions domain.SwapOptions, swapRoute *domain.SwapRoute) (domain.SimulationStatus, error) {
	if swapRoute.MethodParameters == nil {
		return domain.SimulationStatusNotSupported, domain.ErrSimulationInconclusive
	}

	input := swapInput(swapRoute)
	spender := swapRoute.MethodParameters.To

	balance, err := s.callUint256(ctx, input.Token.Address, "balanceOf", from)
	if err != nil {
		return domain.SimulationStatusNotSupported, err
	}
	if balance.LT(input.Amount) {
		return domain.SimulationStatusInsufficientBalance, nil
	}

	allowance, err := s.callUint256(ctx, input.Token.Address, "allowance", from, spender)
	if err != nil {
		return domain.SimulationStatusNotSupported, err
	}
	if allowance.LT(input.Amount) {
		return domain.SimulationStatusNotApproved, nil
	}

	msg := ethereum.CallMsg{
		From: from,
		To:   &spender,
		Data: swapRoute.MethodParameters.Calldata,
	}
	if value := swapRoute.MethodParameters.Value; !value.IsNil() && value.IsPositive() {
		msg.Value = value.BigInt()
	}

	gasUsed, err := s.client.EstimateGas(ctx, msg)
	if err != nil {
		if isExecutionError(err) {
			return domain.SimulationStatusFailed, nil
		}
		return domain.SimulationStatusNotSupported, fmt.Errorf("estimate gas: %w", err)
	}

	swapRoute.EstimatedGasUsed = osmomath.NewIntFromUint64(applyGasMultiplier(gasUsed, s.multiplierPercent))
	return domain.SimulationStatusSucceeded, nil
}

// executionErrorCode is the JSON-RPC code nodes answer reverted calls with.
const executionErrorCode = 3

var executionErrorMessages = []string{
	"execution reverted",
	"out of gas",
	"gas required exceeds allowance",
	"insufficient funds",
}

// isExecutionError reports whether the node executed the transaction and rejected it,
// as opposed to failing to answer.
func isExecutionError(err error) bool {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == executionErrorCode {
		return true
	}

	message := strings.ToLower(err.Error())
	for _, executionMessage := range executionErrorMessages {
		if strings.Contains(message, executionMessage) {
			return true
		}
	}
	return false
}

func (s *EthEstimateGasSimulator) callUint256(ctx context.Context, token common.Address, method string, args ...interface{}) (osmomath.Int, error) {
	data, err := chain.ERC20ABI.Pack(method, args...)
	if err != nil {
		return osmomath.Int{}, err
	}

	raw, err := s.client.CallContract(ctx, token, data, nil)
	if err != nil {
		return osmomath.Int{}, fmt.Errorf("%s: %w", method, err)
	}

	out, err := chain.ERC20ABI.Unpack(method, raw)
	if err != nil {
		return osmomath.Int{}, fmt.Errorf("unpack %s: %w", method, err)
	}

	value, ok := out[0].(*big.Int)
	if !ok {
		return osmomath.Int{}, fmt.Errorf("unexpected %s output %T", method, out[0])
	}

	return osmomath.NewIntFromBigInt(value), nil
}
