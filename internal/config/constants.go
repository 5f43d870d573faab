package config

// Error messages
const (
	ErrMsgProcessEnvFailed  = "failed to read environment: %w"
	ErrMsgAPIKeyRequired    = "API_KEY environment variable must be set for security"
	ErrMsgInvalidConfig     = "invalid configuration: %w"
	ErrMsgInvalidAdminEntry = "invalid ADMIN_USERS entry %q: %w"
)

// Example values shipped in .env.example that must not reach production
const (
	ExampleDBPassword = "change_this_secure_password"
	ExampleAPIKey     = "generate_with_openssl_rand_hex_32"
)

// Entitlement store backends
const (
	StoreBackendPostgres = "postgres"
	// StoreBackendMemory keeps everything in process memory. Every purchase and
	// gate check runs under one store-wide lock, including the ledger call, so
	// it is meant for tests and local development only.
	StoreBackendMemory = "memory"
)
