package driven

// ConfigStore provides typed access to persisted configuration.
type ConfigStore interface {
	// Get retrieves a raw configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, "" if absent.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 if absent.
	GetInt(key string) int

	// GetBool retrieves a boolean value, false if absent.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice value, nil if absent.
	GetStringSlice(key string) []string

	// Set stores a value under key.
	Set(key string, value any) error

	// Save persists the configuration.
	Save() error
}
