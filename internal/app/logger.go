package app

import "github.com/domainlens/whoisproxy/pkg/logger"

// ConfigureLogging initialises the global logger from the logging section.
func ConfigureLogging(cfg LoggingConfig) error {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
	}
	return logger.Init(level, encoding)
}
