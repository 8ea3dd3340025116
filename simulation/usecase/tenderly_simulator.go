package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/chain"
	sorhttp "github.com/baseswapfi/sor/delivery/http"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/json"
	"github.com/baseswapfi/sor/domain/mvc"
)

const (
	tenderlyAccessKeyHeader = "X-Access-Key"
	defaultTenderlyBaseURL  = "https://api.tenderly.co"
)

type tenderlySimulation struct {
	NetworkID      string `json:"network_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Input          string `json:"input"`
	Value          string `json:"value"`
	EstimateGas    bool   `json:"estimate_gas"`
	Save           bool   `json:"save"`
	SaveIfFails    bool   `json:"save_if_fails"`
	SimulationType string `json:"simulation_type"`
}

type tenderlyBundleRequest struct {
	Simulations []tenderlySimulation `json:"simulations"`
}

type tenderlyBundleResponse struct {
	SimulationResults []struct {
		Transaction struct {
			Status  bool   `json:"status"`
			GasUsed uint64 `json:"gas_used"`
		} `json:"transaction"`
	} `json:"simulation_results"`
}

// TenderlySimulator simulates an approval followed by the swap as a bundle on the Tenderly API.
type TenderlySimulator struct {
	config domain.SimulationConfig
}

var _ mvc.Simulator = &TenderlySimulator{}

// NewTenderlySimulator creates a Tenderly backed simulator.
func NewTenderlySimulator(config domain.SimulationConfig) *TenderlySimulator {
	if config.TenderlyBaseURL == "" {
		config.TenderlyBaseURL = defaultTenderlyBaseURL
	}
	return &TenderlySimulator{config: config}
}

// Name implements mvc.Simulator.
func (s *TenderlySimulator) Name() string {
	return "tenderly"
}

// Supports implements mvc.Simulator.
// Requires credentials in addition to a supported chain.
func (s *TenderlySimulator) Supports(chainID domain.ChainID) bool {
	return domain.IsSupportedChain(chainID) &&
		s.config.TenderlyUser != "" &&
		s.config.TenderlyProject != "" &&
		s.config.TenderlyAccessKey != ""
}

// Simulate implements mvc.Simulator.
func (s *TenderlySimulator) Simulate(ctx context.Context, from common.Address, swapOptions domain.SwapOptions, swapRoute *domain.SwapRoute) (domain.SimulationStatus, error) {
	if swapRoute.MethodParameters == nil {
		return domain.SimulationStatusNotSupported, domain.ErrSimulationInconclusive
	}

	input := swapInput(swapRoute)
	params := swapRoute.MethodParameters

	approve, err := chain.ERC20ABI.Pack("approve", params.To, math.MaxBig256)
	if err != nil {
		return domain.SimulationStatusNotSupported, err
	}

	value := big.NewInt(0)
	if !params.Value.IsNil() {
		value = params.Value.BigInt()
	}

	networkID := fmt.Sprintf("%d", input.Token.ChainID)
	request := tenderlyBundleRequest{
		Simulations: []tenderlySimulation{
			{
				NetworkID:      networkID,
				From:           from.Hex(),
				To:             input.Token.Address.Hex(),
				Input:          hexutil.Encode(approve),
				Value:          "0",
				EstimateGas:    true,
				SimulationType: "quick",
			},
			{
				NetworkID:      networkID,
				From:           from.Hex(),
				To:             params.To.Hex(),
				Input:          hexutil.Encode(params.Calldata),
				Value:          value.String(),
				EstimateGas:    true,
				SimulationType: "quick",
			},
		},
	}

	if s.config.TenderlyTimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.TenderlyTimeoutSecs)*time.Second)
		defer cancel()
	}

	body, err := sorhttp.PostJSON(ctx, s.bundleURL(), map[string]string{tenderlyAccessKeyHeader: s.config.TenderlyAccessKey}, request)
	if err != nil {
		return domain.SimulationStatusNotSupported, err
	}

	var response tenderlyBundleResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return domain.SimulationStatusNotSupported, fmt.Errorf("failed to unmarshal tenderly response: %w", err)
	}

	if len(response.SimulationResults) != len(request.Simulations) {
		return domain.SimulationStatusNotSupported, errors.New("tenderly returned an incomplete bundle")
	}

	swap := response.SimulationResults[len(response.SimulationResults)-1].Transaction
	if !swap.Status {
		return domain.SimulationStatusFailed, nil
	}

	swapRoute.EstimatedGasUsed = osmomath.NewIntFromUint64(applyGasMultiplier(swap.GasUsed, s.config.EstimateGasMultiplier))
	return domain.SimulationStatusSucceeded, nil
}

func (s *TenderlySimulator) bundleURL() string {
	return fmt.Sprintf("%s/api/v1/account/%s/project/%s/simulate-bundle",
		strings.TrimSuffix(s.config.TenderlyBaseURL, "/"),
		s.config.TenderlyUser,
		s.config.TenderlyProject,
	)
}
