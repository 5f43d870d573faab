package config

// Warnings reports non-fatal configuration issues worth logging at startup
func (c *Config) Warnings() []string {
	var warnings []string

	if c.DBPassword == ExampleDBPassword {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}

	if c.APIKey == ExampleAPIKey {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}

	if c.LedgerFailOpen {
		warnings = append(warnings, "LEDGER_FAIL_OPEN is enabled - an unreachable ledger will report DEFAULT_BALANCE instead of failing")
	}

	if c.StoreBackend == StoreBackendMemory {
		warnings = append(warnings, "STORE_BACKEND is memory - purchases and gate checks run one at a time and nothing survives a restart; use postgres outside tests and local development")
	}

	if len(c.Admins) == 0 {
		warnings = append(warnings, "ADMIN_USERS is empty - catalog administration is disabled")
	}

	return warnings
}
