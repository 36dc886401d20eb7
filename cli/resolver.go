package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nia/interp"
)

// resolve returns a [kong.ConfigurationLoader] that evaluates a nia script
// and reads its top-level variable named name as the flag configuration.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config")
//
// The nia object is converted as follows:
//   - Keys become flag names; a keyword key ":log-level" resolves the flag
//     "log-level" (and its underscore variant "log_level")
//   - Nested objects become nested configuration, read only at the top level
//     (Kong resolves flags by name, not by path)
//   - Kong requires numeric values as strings, so integers and floats are
//     formatted before being returned
//
// Example nia config file:
//
//	(defv config {:log-level "debug" :log-format "json" :log-pretty #t})
//
// This configuration will be applied to Kong flags:
//
//	--log-level=debug
//	--log-format=json
//	--log-pretty=true
//
// Command-line flags override config file values.
func resolve(ctx context.Context, name string) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return config{}, nil
		}

		i := interp.New()

		if _, evalErr := i.Execute(string(data)); evalErr != nil {
			// Parse or eval error - return empty config, let flags/defaults apply.
			return config{}, nil
		}

		v, lookupErr := i.LookupVariable(i.RootEnvironment(), name)
		if lookupErr != nil {
			return config{}, nil
		}

		native, nativeErr := i.ToNative(v)
		if nativeErr != nil {
			return config{}, nil
		}

		m, ok := native.(map[string]any)
		if !ok {
			return config{}, nil
		}

		return config(normalizeConfigValues(m)), nil
	}
}

// config implements [kong.Resolver] for nia-sourced configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed - the config was already parsed successfully.
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but nia object keys read
	// back from a keyword may use either hyphens or underscores.
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	if value, ok := r[name]; ok {
		return value, nil
	}

	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	return nil, nil
}

// normalizeConfigValues stringifies numeric values, as Kong expects string
// representations of flag values regardless of the source type.
func normalizeConfigValues(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))

	for k, v := range m {
		switch n := v.(type) {
		case int64:
			result[k] = strconv.FormatInt(n, 10)
		case float64:
			result[k] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			result[k] = v
		}
	}

	return result
}
