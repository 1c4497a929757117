package config

type LogConfig interface {
	GetLogLevel() string
	GetLogFile() string
}

func (c mainConfig) GetLogLevel() string {
	return c.get("LOG_LEVEL", "info")
}

// GetLogFile enables a size-rotated log file in addition to the console
func (c mainConfig) GetLogFile() string {
	return c.get("LOG_FILE", "")
}
