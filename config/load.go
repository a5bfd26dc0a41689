package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

// Source describes one configuration file merged into the settings
type Source struct {
	Kind string // "user", "project" or "file"
	Path string
}

// Loader builds a Viper instance from every configuration source
type Loader struct {
	// WorkDir is where the project config search starts (default: cwd)
	WorkDir string
	// HomeDir locates the user config (default: os.UserHomeDir)
	HomeDir string
	// File is an explicit config file merged last; it must exist
	File string

	sources []Source
}

// Viper returns a Viper instance with defaults, user, project and explicit
// config files merged in precedence order, and KRPCGEN_* environment
// variables bound.
// CLI flags are bound by the caller on top.
func (l *Loader) Viper() (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	l.sources = nil
	for _, src := range l.candidates() {
		if _, err := os.Stat(src.Path); err != nil {
			continue
		}
		if err := mergeFile(v, src.Path); err != nil {
			return nil, err
		}
		warnUnknownKeys(src.Path)
		l.sources = append(l.sources, src)
	}

	if l.File != "" {
		if err := mergeFile(v, l.File); err != nil {
			return nil, err
		}
		warnUnknownKeys(l.File)
		l.sources = append(l.sources, Source{Kind: "file", Path: l.File})
	}

	return v, nil
}

// Sources returns the config files merged by the last call to Viper
func (l *Loader) Sources() []Source {
	return l.sources
}

// Load merges every source and unmarshals the result
func (l *Loader) Load() (*Config, *viper.Viper, error) {
	v, err := l.Viper()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// candidates lists config files lowest precedence first
func (l *Loader) candidates() []Source {
	var out []Source

	home := l.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home != "" {
		out = append(out, Source{Kind: "user", Path: UserConfigPath(home)})
	}

	workDir := l.WorkDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	if project := FindProjectConfig(workDir); project != "" {
		out = append(out, Source{Kind: "project", Path: project})
	}
	return out
}

// UserConfigPath returns ~/.config/krpcgen/krpcgen.toml for the given home
func UserConfigPath(home string) string {
	return filepath.Join(home, ".config", UserConfigDirName, ProjectConfigName)
}

// FindProjectConfig searches for krpcgen.toml by walking up from dir.
// Returns the path to the first config file found, or empty string if none found.
func FindProjectConfig(dir string) string {
	if dir == "" {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func mergeFile(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WrapIO(err, "open config %s", path)
	}
	defer f.Close()

	v.SetConfigType("toml")
	if err := v.MergeConfig(f); err != nil {
		return errors.WithHint(
			errors.Mark(errors.Wrapf(err, "failed to parse config %s", path), errors.ErrParse),
			"config files use TOML, see 'krpcgen init' for a starting point",
		)
	}
	return nil
}

// LoadWithViper unmarshals configuration from a prepared Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path on top of defaults
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := mergeFile(v, path); err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}
