package driven

// ConfigStore is the key/value view of the settings file.
// Keys are dotted section paths such as "embedding.api_key" or "auth.keys".
// Reads see environment overrides; writes only touch the stored file.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	// GetString returns "" for unset or non-string keys.
	GetString(key string) string

	// GetInt returns 0 for unset keys and accepts numeric strings from the environment.
	GetInt(key string) int

	// GetBool returns false for unset or non-boolean keys.
	GetBool(key string) bool

	// GetStringSlice returns nil for unset keys. auth.keys is stored this way.
	GetStringSlice(key string) []string

	// Set stores a value. The file adapter writes it through at once.
	Set(key string, value any) error

	// Save writes the stored values back to the file.
	Save() error

	// Load re-reads the file and the environment.
	Load() error

	// Path is the settings file location, shown by "settings show".
	Path() string
}
