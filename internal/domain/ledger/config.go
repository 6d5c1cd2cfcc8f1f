package ledger

// Config holds ledger pricing and quota settings.
type Config struct {
	// UnitCostCents is charged to the paid balance for one generation.
	UnitCostCents int64

	// InitialFreeGenerations is granted when an account is provisioned.
	InitialFreeGenerations int

	// ReserveAttempts bounds re-decisions after losing a reservation race.
	ReserveAttempts int
}

// DefaultConfig returns default ledger configuration.
func DefaultConfig() *Config {
	return &Config{
		UnitCostCents:          200,
		InitialFreeGenerations: 1,
		ReserveAttempts:        3,
	}
}
