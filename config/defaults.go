package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.path", ".")
	v.SetDefault("input.manifest", "")
	v.SetDefault("input.extension", ".json")

	v.SetDefault("output.dir", "src/services")
	v.SetDefault("output.extension", ".rs")
	v.SetDefault("output.index", true)

	v.SetDefault("templates.dir", "")

	v.SetDefault("generate.jobs", 0)

	v.SetDefault("log.json", false)
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always unmarshal
		panic(err)
	}
	return cfg
}
