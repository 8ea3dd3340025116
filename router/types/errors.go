package types

import (
	"fmt"

	"github.com/baseswapfi/sor/domain"
)

// Handler Errors
var (
	ErrTokenInNotSpecified   = fmt.Errorf("%w: tokenIn is required", domain.ErrBadParamInput)
	ErrTokenOutNotSpecified  = fmt.Errorf("%w: tokenOut is required", domain.ErrBadParamInput)
	ErrTokenNotValid         = fmt.Errorf("%w: token must be a hex address", domain.ErrBadParamInput)
	ErrAmountNotValid        = fmt.Errorf("%w: amount must be a positive integer in base units", domain.ErrBadParamInput)
	ErrProtocolsNotValid     = fmt.Errorf("%w: protocols must be a comma separated list of v2, v3 and mixed", domain.ErrBadParamInput)
	ErrMaxSplitsNotValid     = fmt.Errorf("%w: maxSplits must be a positive integer", domain.ErrBadParamInput)
	ErrSlippageNotValid      = fmt.Errorf("%w: slippageTolerance must be a decimal in [0, 1)", domain.ErrBadParamInput)
	ErrDeadlineNotValid      = fmt.Errorf("%w: deadline must be a unix timestamp", domain.ErrBadParamInput)
	ErrRecipientNotSpecified = fmt.Errorf("%w: recipient is required when slippageTolerance or deadline is set", domain.ErrBadParamInput)
)
