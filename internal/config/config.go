// Package config loads the run configuration.
//
// Sources are layered with koanf, lowest precedence first: built-in
// defaults, the configuration file (YAML or the INI dwh.cfg layout),
// DWH_<SECTION>__<KEY> environment variables, and explicitly set command
// line flags. Section and key names are case-insensitive.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

const (
	// EnvPrefix is the prefix of configuration environment variables.
	EnvPrefix = "DWH_"

	// envSectionSeparator separates section and key in variable names,
	// since keys themselves contain single underscores.
	envSectionSeparator = "__"
)

// SearchNames are the file names looked up in the working directory when
// no path is given, in order.
var SearchNames = []string{"dwh.yaml", "dwh.yml", "dwh.cfg"}

// ErrConfigNotFound is returned when an explicitly named file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// flagKeys maps flag names to the configuration keys they override.
var flagKeys = map[string]string{
	"dialect":             "warehouse.dialect",
	"region":              "warehouse.region",
	"load-mode":           "warehouse.load_mode",
	"parallel-transforms": "warehouse.parallel_transforms",
}

func defaults() map[string]any {
	return map[string]any{
		"warehouse.dialect":           dwhload.DialectRedshift,
		"warehouse.region":            dwhload.DefaultRegion,
		"warehouse.auth_method":       dwhload.AuthMethodPassword,
		"warehouse.path":              dwhload.DefaultDuckDBPath,
		"warehouse.insert_batch_size": dwhload.DefaultInsertBatchSize,
	}
}

// Load builds the configuration and validates it.
//
// path names the configuration file. When empty, the SearchNames are tried
// in the working directory and a missing file is not an error: the values
// may come entirely from the environment. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*dwhload.Config, error) {
	cfg, err := Read(path, flags)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation. It lets commands that only render
// statements or templates work with a partial configuration.
func Read(path string, flags *pflag.FlagSet) (*dwhload.Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if resolved != "" {
		values, err := readFile(resolved)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w: %w", resolved, err, dwhload.ErrConfig)
		}
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", resolved, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg dwhload.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w: %w", err, dwhload.ErrConfig)
	}
	return &cfg, nil
}

// envKey turns DWH_CLUSTER__DB_PASSWORD into cluster.db_password.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, envSectionSeparator, ".")
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%s: %w: %w", path, ErrConfigNotFound, dwhload.ErrConfig)
			}
			return "", fmt.Errorf("failed to stat %s: %w: %w", path, err, dwhload.ErrConfig)
		}
		return path, nil
	}
	for _, name := range SearchNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// readFile returns the file's values as a flat map of lowercased
// "section.key" paths.
func readFile(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readYAML(path)
	default:
		return readINI(path)
	}
}

func readYAML(path string) (map[string]any, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(k.Keys()))
	for key, v := range k.All() {
		out[strings.ToLower(key)] = v
	}
	return out, nil
}

// readINI reads the dwh.cfg layout. The ini parser drops the quotes around
// values written for string interpolation ('s3://bucket/prefix').
func readINI(path string) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:         true,
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any)
	for _, section := range f.Sections() {
		if strings.EqualFold(section.Name(), ini.DefaultSection) {
			continue
		}
		for _, key := range section.Keys() {
			out[section.Name()+"."+key.Name()] = strings.TrimSpace(key.Value())
		}
	}
	return out, nil
}
