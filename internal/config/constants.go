package config

// Default paths for local state
const (
	// DefaultDatabasePath is the default path for the content database
	DefaultDatabasePath = "./frenchmaster.db"

	// DefaultKVStorePath is the default path for the auxiliary key/value file
	DefaultKVStorePath = "./frenchmaster-kv.json"

	// DefaultRefreshSchedule reloads content every 6 hours
	DefaultRefreshSchedule = "0 */6 * * *"
)
