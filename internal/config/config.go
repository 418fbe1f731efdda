package config

// Config is the engine configuration.
type Config struct {
	Version string `yaml:"version"`

	Sqlite struct {
		Dsn    string `yaml:"dsn"`
		Prefix string `yaml:"prefix"`
	} `yaml:"sqlite"`

	Log struct {
		Level  string   `yaml:"level"`
		File   string   `yaml:"file"`
		Writer []string `yaml:"writer"`
	} `yaml:"log"`

	Mock struct {
		DefaultDelayMS int `yaml:"defaultDelayMS"`
	} `yaml:"mock"`
}

// NewConfig creates the default configuration. The journal is disabled until
// a sqlite DSN is set.
func NewConfig() *Config {
	c := &Config{Version: "1.0.0"}
	c.Sqlite.Dsn = ""
	c.Sqlite.Prefix = "netmock_"
	c.Log.Level = "debug"
	c.Log.File = "netmock.log"
	c.Log.Writer = []string{"console"}
	c.Mock.DefaultDelayMS = 1
	return c
}
