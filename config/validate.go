package config

import (
	"strings"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

// Validate checks that the configuration is usable by the generator
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.WithHint(
			errors.New("output.dir cannot be empty"),
			"set output.dir in krpcgen.toml or pass --out",
		)
	}

	// Jobs: 0 = one per CPU, negative = invalid
	if c.Generate.Jobs < 0 {
		return errors.Newf("generate.jobs must be >= 0, got %d", c.Generate.Jobs)
	}

	if err := validateExtension("input.extension", c.Input.Extension); err != nil {
		return err
	}
	if err := validateExtension("output.extension", c.Output.Extension); err != nil {
		return err
	}

	if c.Input.Path == "" && c.Input.Manifest == "" {
		return errors.New("either input.path or input.manifest must be set")
	}

	return nil
}

func validateExtension(key, ext string) error {
	if ext == "" {
		return errors.Newf("%s cannot be empty", key)
	}
	if strings.ContainsAny(ext, `/\`) {
		return errors.Newf("%s must not contain a path separator, got %q", key, ext)
	}
	if !strings.HasPrefix(ext, ".") {
		return errors.WithHintf(
			errors.Newf("%s must start with a dot, got %q", key, ext),
			"did you mean %q?", "."+ext,
		)
	}
	return nil
}
