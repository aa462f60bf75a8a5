package config

const (
	// Monitor config defaults
	DefaultTimeoutMillis = 30000
	DefaultRetries       = 1
	DefaultUserAgent     = "PageWatch/1.0"

	// Storage defaults
	DefaultDataDir            = "./data"
	DefaultStateBackend       = "json"
	DefaultParquetCompression = "zstd"

	// Browser defaults
	DefaultBrowserHeadless = true

	// HTTP defaults
	DefaultMaxContentSizeMB = 10
	DefaultMaxRedirects     = 10

	// LocalOverrideSuffix marks the optional override file merged over an
	// application config, e.g. pagewatch.local.yaml next to pagewatch.yaml.
	LocalOverrideSuffix = ".local"
)
