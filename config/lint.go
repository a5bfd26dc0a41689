package config

import (
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

// UnknownKeys decodes the TOML file at path against Config and returns the
// dotted keys that do not map onto any setting, sorted. Viper drops such
// keys without a word.
func UnknownKeys(path string) ([]string, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse config %s", path), errors.ErrParse)
	}

	var keys []string
	for _, key := range md.Undecoded() {
		keys = append(keys, key.String())
	}
	sort.Strings(keys)
	return keys, nil
}

// warnUnknownKeys logs every unknown key of a merged config file
func warnUnknownKeys(path string) {
	keys, err := UnknownKeys(path)
	if err != nil {
		return
	}
	for _, key := range keys {
		logger.Warnw("Unknown configuration key", "key", key, logger.FieldFile, path)
	}
}
