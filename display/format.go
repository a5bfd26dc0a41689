// Package display encodes structured command output as TOML, JSON or YAML.
package display

import (
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

// Format is an output encoding selectable with a command flag
type Format string

const (
	TOML Format = "toml"
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFlag reads the named string flag of cmd and checks it against
// allowed. The first allowed format is the default for an empty value.
func FormatFlag(cmd *cobra.Command, name string, allowed ...Format) (Format, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", errors.Wrapf(err, "read --%s", name)
	}
	if value == "" && len(allowed) > 0 {
		return allowed[0], nil
	}

	format := Format(strings.ToLower(value))
	if !slices.Contains(allowed, format) {
		names := make([]string, len(allowed))
		for i, f := range allowed {
			names[i] = string(f)
		}
		return "", errors.Newf("unsupported format: %s (supported: %s)", value, strings.Join(names, ", "))
	}
	return format, nil
}

// Marshal encodes v in format. JSON is indented with two spaces; every
// encoding ends with a newline.
func Marshal(v any, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case JSON:
		data, err = json.MarshalIndent(v, "", "  ")
	case YAML:
		data, err = yaml.Marshal(v)
	case TOML:
		data, err = toml.Marshal(v)
	default:
		return nil, errors.Newf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s", strings.ToUpper(string(format)))
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

// ShouldOutputJSON reports whether cmd's --json flag was set
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup("json"); f != nil {
		on, _ := cmd.Flags().GetBool("json")
		return on
	}
	return false
}
