package config

type HostConfig interface {
	GetInitDataVar() string
	GetInitDataFile() string
	GetInitDataCache() string
}

// GetInitDataVar names the environment variable the terminal host reads init data from
func (c mainConfig) GetInitDataVar() string {
	return c.get("INIT_DATA_VAR", "TWA_INIT_DATA")
}

// GetInitDataFile takes precedence over GetInitDataVar when set
func (c mainConfig) GetInitDataFile() string {
	return c.get("INIT_DATA_FILE", "")
}

// GetInitDataCache is the file used to keep the last raw init data for diagnostics.
// Empty keeps it in memory only.
func (c mainConfig) GetInitDataCache() string {
	return c.get("INIT_DATA_CACHE", "")
}
