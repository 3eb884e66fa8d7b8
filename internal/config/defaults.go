package config

const (
	defaultConfigPath      = "~/.config/dupicheck/config.toml"
	defaultThreshold       = 5
	defaultManualThreshold = 2
	defaultWorkers         = 1
	defaultCacheFileName   = ".dupicheck.db"
	defaultManualDirName   = "manual_check"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// DefaultExtensions lists the recognized image extensions, lower-case with a leading dot.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			Threshold:       defaultThreshold,
			ManualThreshold: defaultManualThreshold,
			Workers:         defaultWorkers,
			Extensions:      append([]string(nil), DefaultExtensions...),
		},
		Cache: Cache{
			Enabled:  true,
			FileName: defaultCacheFileName,
		},
		Paths: Paths{
			ManualDirName: defaultManualDirName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
