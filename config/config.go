// Package config loads krpcgen settings from defaults, TOML files, the
// environment and command-line flags using Viper.
package config

// Config represents the krpcgen configuration
type Config struct {
	Input     InputConfig     `mapstructure:"input" toml:"input" json:"input" yaml:"input"`
	Output    OutputConfig    `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Templates TemplatesConfig `mapstructure:"templates" toml:"templates" json:"templates" yaml:"templates"`
	Generate  GenerateConfig  `mapstructure:"generate" toml:"generate" json:"generate" yaml:"generate"`
	Log       LogConfig       `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// InputConfig selects the service definition documents to compile
type InputConfig struct {
	Path      string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`                     // file or directory of service files
	Manifest  string `mapstructure:"manifest" toml:"manifest" json:"manifest" yaml:"manifest"`     // optional file listing document paths, one per line
	Extension string `mapstructure:"extension" toml:"extension" json:"extension" yaml:"extension"` // extension matched during directory discovery
}

// OutputConfig controls where generated modules are written
type OutputConfig struct {
	Dir       string `mapstructure:"dir" toml:"dir" json:"dir" yaml:"dir"`
	Extension string `mapstructure:"extension" toml:"extension" json:"extension" yaml:"extension"`
	Index     bool   `mapstructure:"index" toml:"index" json:"index" yaml:"index"` // write mod.rs listing every generated module
}

// TemplatesConfig allows overriding the embedded templates
type TemplatesConfig struct {
	Dir string `mapstructure:"dir" toml:"dir" json:"dir" yaml:"dir"` // empty = embedded templates
}

// GenerateConfig tunes the emission driver
type GenerateConfig struct {
	Jobs int `mapstructure:"jobs" toml:"jobs" json:"jobs" yaml:"jobs"` // services rendered in parallel, 0 = number of CPUs
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// File and directory names
const (
	ProjectConfigName = "krpcgen.toml"
	UserConfigDirName = "krpcgen"
	EnvPrefix         = "KRPCGEN"

	DefaultFilePermissions = 0644
	DefaultDirPermissions  = 0755
)
