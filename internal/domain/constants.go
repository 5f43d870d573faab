package domain

// IdentitySeparator separates platform and user ID in the textual identity form.
const IdentitySeparator = ":"

// Stock sentinel values
const (
	// UnlimitedStock marks an item that never runs out
	UnlimitedStock = -1
)

// Role level bounds
const (
	MinRoleLevel = 0
	MaxRoleLevel = 5
)

// Defaults applied to catalog items when the creator leaves a field unset.
// Deployments override the command and role defaults through configuration.
const (
	DefaultCommandMaxUses         = 10
	DefaultCommandCooldownMinutes = 5
	DefaultRoleLevel              = 1
	DefaultItemMaxUses            = 1
)

// Pagination bounds
const (
	DefaultStorefrontPageSize = 5
	DefaultAdminPageSize      = 10
	MaxPageSize               = 100
)
