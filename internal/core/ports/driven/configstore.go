package driven

// ConfigStore is the key/value table settings are read from and written to.
// Keys are dotted ("routes.tolerance_percent"). Typed getters return the
// zero value when a key is missing or holds an incompatible type; numeric
// getters convert between integers and floats.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set persists immediately in file-backed stores.
	Set(key string, value any) error
	Save() error
	Load() error

	// Path identifies the backing file, ":memory:" when there is none.
	Path() string
}
