// Package configloader loads typed configuration from a yaml file, a .env file and the environment.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Validator is implemented by every configuration root.
type Validator interface {
	Validate() error
}

// Options control where the loader looks for its sources.
type Options struct {
	// ConfigFile is the yaml file to read. Defaults to config.yaml.
	ConfigFile string
	// EnvFile is the dotenv file to read. Defaults to .env.
	EnvFile string
	// Defaults are applied before any other source.
	Defaults map[string]any
}

// Load reads configuration for the given application name.
// Sources are applied in order of increasing priority:
// defaults, yaml file, .env file, system environment.
// Environment keys use the <APP>_ prefix and "_" as the level separator,
// e.g. KASIR_DATABASE_DRIVER maps to database.driver.
func Load[T Validator](appName string, cfg T, opts Options) (T, error) {
	k := koanf.New(".")

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = "config.yaml"
	}
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(appName))

	// 0. Defaults
	if len(opts.Defaults) > 0 {
		if err := loadLower(k, confmap.Provider(opts.Defaults, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading defaults: %w", err)
		}
	}

	// 1. Load configuration from yaml file
	if err := loadLower(k, file.Provider(configFile), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	// 2. Load environment variables from .env file
	envTransformer := keyTransformer(envPrefix)
	if envFileMap, err := godotenv.Read(envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[envTransformer(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 4. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 5. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadLower merges a provider into k with every key lowercased.
// Environment keys arrive lowercased, so all sources must agree on case
// for later sources to override earlier ones.
func loadLower(k *koanf.Koanf, p koanf.Provider, parser koanf.Parser) error {
	tmp := koanf.New(".")
	if err := tmp.Load(p, parser); err != nil {
		return err
	}
	flat := make(map[string]any)
	for key, value := range tmp.All() {
		flat[strings.ToLower(key)] = value
	}
	return k.Load(confmap.Provider(flat, "."), nil)
}

// keyTransformer maps KASIR_SERVER_PORT to server.port.
func keyTransformer(envPrefix string) func(string) string {
	lowerPrefix := strings.ToLower(envPrefix)
	return func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, lowerPrefix)
		return strings.ReplaceAll(key, "_", ".")
	}
}
