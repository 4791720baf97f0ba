package core

import (
	"fmt"
	"os"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadPoolConfigFromEnv populates a PoolConfig from process environment
// variables using struct tags, the same pattern SinaTadayon-OrderService's
// configs.Config uses for its service configuration. If envFile is
// non-empty, it is preloaded with godotenv before the environment is read,
// so a local .env file can seed values during development.
func LoadPoolConfigFromEnv(envFile string) (*PoolConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("threadpool: loading env file %s: %w", envFile, err)
		}
	}

	cfg := &PoolConfig{}
	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return nil, fmt.Errorf("threadpool: unmarshalling environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadPoolConfigFromYAML reads a PoolConfig from a YAML file, the same
// pattern used by the fluxor pack member's pkg/config.LoadYAML helper.
func LoadPoolConfigFromYAML(path string) (*PoolConfig, error) {
	// #nosec G304 -- path is supplied by the caller of this library function.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("threadpool: reading config file %s: %w", path, err)
	}

	cfg := &PoolConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("threadpool: unmarshalling YAML config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}
