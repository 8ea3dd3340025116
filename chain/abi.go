package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const quoterABIJSON = `[
  {"name":"quoteExactInput","type":"function","stateMutability":"nonpayable",
   "inputs":[{"name":"path","type":"bytes"},{"name":"amountIn","type":"uint256"}],
   "outputs":[{"name":"amountOut","type":"uint256"},{"name":"sqrtPriceX96AfterList","type":"uint160[]"},{"name":"initializedTicksCrossedList","type":"uint32[]"},{"name":"gasEstimate","type":"uint256"}]},
  {"name":"quoteExactOutput","type":"function","stateMutability":"nonpayable",
   "inputs":[{"name":"path","type":"bytes"},{"name":"amountOut","type":"uint256"}],
   "outputs":[{"name":"amountIn","type":"uint256"},{"name":"sqrtPriceX96AfterList","type":"uint160[]"},{"name":"initializedTicksCrossedList","type":"uint32[]"},{"name":"gasEstimate","type":"uint256"}]}
]`

const multicallABIJSON = `[
  {"name":"multicall","type":"function","stateMutability":"nonpayable",
   "inputs":[{"name":"calls","type":"tuple[]","components":[{"name":"target","type":"address"},{"name":"gasLimit","type":"uint256"},{"name":"callData","type":"bytes"}]}],
   "outputs":[{"name":"blockNumber","type":"uint256"},{"name":"returnData","type":"tuple[]","components":[{"name":"success","type":"bool"},{"name":"gasUsed","type":"uint256"},{"name":"returnData","type":"bytes"}]}]}
]`

const erc20ABIJSON = `[
  {"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const erc20Bytes32ABIJSON = `[
  {"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]}
]`

const v2PairABIJSON = `[
  {"name":"getReserves","type":"function","stateMutability":"view","inputs":[],
   "outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}]}
]`

const v3PoolABIJSON = `[
  {"name":"slot0","type":"function","stateMutability":"view","inputs":[],
   "outputs":[{"name":"sqrtPriceX96","type":"uint160"},{"name":"tick","type":"int24"},{"name":"observationIndex","type":"uint16"},{"name":"observationCardinality","type":"uint16"},{"name":"observationCardinalityNext","type":"uint16"},{"name":"feeProtocol","type":"uint8"},{"name":"unlocked","type":"bool"}]},
  {"name":"liquidity","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint128"}]}
]`

const gasPriceOracleABIJSON = `[
  {"name":"l1BaseFee","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"overhead","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"scalar","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

const swapRouterABIJSON = `[
  {"name":"exactInput","type":"function","stateMutability":"payable",
   "inputs":[{"name":"params","type":"tuple","components":[{"name":"path","type":"bytes"},{"name":"recipient","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"amountOutMinimum","type":"uint256"}]}],
   "outputs":[{"name":"amountOut","type":"uint256"}]},
  {"name":"exactOutput","type":"function","stateMutability":"payable",
   "inputs":[{"name":"params","type":"tuple","components":[{"name":"path","type":"bytes"},{"name":"recipient","type":"address"},{"name":"amountOut","type":"uint256"},{"name":"amountInMaximum","type":"uint256"}]}],
   "outputs":[{"name":"amountIn","type":"uint256"}]},
  {"name":"swapExactTokensForTokens","type":"function","stateMutability":"payable",
   "inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"}],
   "outputs":[{"name":"amountOut","type":"uint256"}]},
  {"name":"swapTokensForExactTokens","type":"function","stateMutability":"payable",
   "inputs":[{"name":"amountOut","type":"uint256"},{"name":"amountInMax","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"}],
   "outputs":[{"name":"amountIn","type":"uint256"}]},
  {"name":"multicall","type":"function","stateMutability":"payable",
   "inputs":[{"name":"deadline","type":"uint256"},{"name":"data","type":"bytes[]"}],
   "outputs":[{"name":"","type":"bytes[]"}]}
]`

var (
	// QuoterABI covers both the V3 quoter and the mixed route quoter, which share signatures.
	QuoterABI         = mustParseABI(quoterABIJSON)
	MulticallABI      = mustParseABI(multicallABIJSON)
	ERC20ABI          = mustParseABI(erc20ABIJSON)
	ERC20Bytes32ABI   = mustParseABI(erc20Bytes32ABIJSON)
	V2PairABI         = mustParseABI(v2PairABIJSON)
	V3PoolABI         = mustParseABI(v3PoolABIJSON)
	GasPriceOracleABI = mustParseABI(gasPriceOracleABIJSON)
	SwapRouterABI     = mustParseABI(swapRouterABIJSON)
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}
