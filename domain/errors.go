package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given Param is not valid")

	// ErrNoSimulatorAvailable is returned when every simulator in the chain declined or failed.
	ErrNoSimulatorAvailable = errors.New("no simulator available")
	// ErrSimulationInconclusive is returned by simulators that ran but could not reach a verdict.
	ErrSimulationInconclusive = errors.New("simulation inconclusive")
	// ErrCallDataTooLarge is returned by executors when a batch exceeds the payload ceiling.
	ErrCallDataTooLarge = errors.New("call data too large")
	// ErrUnexpectedCacheValue is returned when a cache holds a value of the wrong type.
	ErrUnexpectedCacheValue = errors.New("unexpected cache value type")
)

// GetStatusCode returns the HTTP status code for the error.
func GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if IsInvalidInput(err) || errors.Is(err, ErrBadParamInput) {
		return http.StatusBadRequest
	}

	var upstreamErr UpstreamUnavailableError
	if errors.As(err, &upstreamErr) {
		return http.StatusServiceUnavailable
	}

	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// invalidInputError marks errors rejected before any remote work.
type invalidInputError interface {
	error
	invalidInput()
}

// IsInvalidInput returns true if err is, or wraps, an input validation error.
func IsInvalidInput(err error) bool {
	var target invalidInputError
	return errors.As(err, &target)
}

type InvalidAmountError struct {
	Amount string
}

func (e InvalidAmountError) Error() string {
	return fmt.Sprintf("amount (%s) must be positive", e.Amount)
}

func (InvalidAmountError) invalidInput() {}

type SameTokenError struct {
	Token Token
}

func (e SameTokenError) Error() string {
	return fmt.Sprintf("token in and token out are the same (%s)", e.Token)
}

func (SameTokenError) invalidInput() {}

type UnsupportedChainError struct {
	ChainID ChainID
}

func (e UnsupportedChainError) Error() string {
	return fmt.Sprintf("chain (%d) is not supported", e.ChainID)
}

func (UnsupportedChainError) invalidInput() {}

type ChainMismatchError struct {
	Expected ChainID
	Actual   ChainID
}

func (e ChainMismatchError) Error() string {
	return fmt.Sprintf("token chain (%d) does not match router chain (%d)", e.Actual, e.Expected)
}

func (ChainMismatchError) invalidInput() {}

type InvalidTokenError struct {
	Address string
}

func (e InvalidTokenError) Error() string {
	return fmt.Sprintf("token (%s) is invalid or could not be resolved", e.Address)
}

func (InvalidTokenError) invalidInput() {}

type InvalidProtocolError struct {
	Protocol string
}

func (e InvalidProtocolError) Error() string {
	return fmt.Sprintf("invalid protocol (%s)", e.Protocol)
}

func (InvalidProtocolError) invalidInput() {}

type InvalidTradeTypeError struct {
	TradeType string
}

func (e InvalidTradeTypeError) Error() string {
	return fmt.Sprintf("invalid trade type (%s)", e.TradeType)
}

func (InvalidTradeTypeError) invalidInput() {}

type InvalidRoutingConfigError struct {
	Reason string
}

func (e InvalidRoutingConfigError) Error() string {
	return "invalid routing config: " + e.Reason
}

func (InvalidRoutingConfigError) invalidInput() {}

// ProtocolFetchError is a failure of one protocol's data or quote fetching.
type ProtocolFetchError struct {
	Protocol Protocol
	Err      error
}

func (e ProtocolFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s quotes: %v", e.Protocol, e.Err)
}

func (e ProtocolFetchError) Unwrap() error {
	return e.Err
}

// UpstreamUnavailableError is returned when every enabled protocol failed.
type UpstreamUnavailableError struct {
	Errors []error
}

func (e UpstreamUnavailableError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return "all upstream sources are unavailable: " + strings.Join(msgs, "; ")
}

func (e UpstreamUnavailableError) Unwrap() []error {
	return e.Errors
}

// BatchGasLimitExceededError is returned when a batch of calls asks for more gas than the executor allows.
type BatchGasLimitExceededError struct {
	BatchSize    int
	RequestedGas uint64
	MaxGas       uint64
}

func (e BatchGasLimitExceededError) Error() string {
	return fmt.Sprintf("batch of %d calls requests %d gas which exceeds the limit of %d", e.BatchSize, e.RequestedGas, e.MaxGas)
}

type PoolNotFoundError struct {
	Address string
}

func (e PoolNotFoundError) Error() string {
	return fmt.Sprintf("pool (%s) is not found", e.Address)
}

type TokenNotInPoolError struct {
	Token string
	Pool  string
}

func (e TokenNotInPoolError) Error() string {
	return fmt.Sprintf("token (%s) is not in pool (%s)", e.Token, e.Pool)
}

type InsufficientReservesError struct {
	Pool string
}

func (e InsufficientReservesError) Error() string {
	return fmt.Sprintf("pool (%s) has insufficient reserves", e.Pool)
}

type RouteCacheDecodeError struct {
	Key string
	Err error
}

func (e RouteCacheDecodeError) Error() string {
	return fmt.Sprintf("failed to decode cached routes for key (%s): %v", e.Key, e.Err)
}

func (e RouteCacheDecodeError) Unwrap() error {
	return e.Err
}
