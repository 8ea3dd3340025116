package domain

// SimulationStatus is the outcome of simulating a plan.
type SimulationStatus int

const (
	// SimulationStatusNotSupported also marks plans whose simulation was inconclusive.
	SimulationStatusNotSupported SimulationStatus = iota
	SimulationStatusFailed
	SimulationStatusSucceeded
	SimulationStatusInsufficientBalance
	SimulationStatusNotApproved
)

func (s SimulationStatus) String() string {
	switch s {
	case SimulationStatusFailed:
		return "FAILED"
	case SimulationStatusSucceeded:
		return "SUCCEEDED"
	case SimulationStatusInsufficientBalance:
		return "INSUFFICIENT_BALANCE"
	case SimulationStatusNotApproved:
		return "NOT_APPROVED"
	default:
		return "NOT_SUPPORTED"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SimulationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsVerdict returns true if the status is a trade verdict rather than an inconclusive result.
func (s SimulationStatus) IsVerdict() bool {
	return s != SimulationStatusNotSupported
}

// SimulationConfig configures the simulation fallback chain.
type SimulationConfig struct {
	Enabled bool `mapstructure:"enabled"`

	TenderlyBaseURL     string `mapstructure:"tenderly-base-url"`
	TenderlyUser        string `mapstructure:"tenderly-user"`
	TenderlyProject     string `mapstructure:"tenderly-project"`
	TenderlyAccessKey   string `mapstructure:"tenderly-access-key"`
	TenderlyTimeoutSecs int    `mapstructure:"tenderly-timeout-secs"`

	// EstimateGasMultiplier inflates simulated gas estimates, in percent.
	EstimateGasMultiplier int `mapstructure:"estimate-gas-multiplier"`
}
