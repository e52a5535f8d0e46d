package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgeworks-io/forge-client/internal/constants"
	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/forgeworks-io/forge-client/pkg/forgeclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CreateClient builds a Forge client from the active configuration: flags,
// environment and the config file, in viper's usual precedence.
func CreateClient() (forge.Client, error) {
	apiEndpoint := viper.GetString("api")
	if apiEndpoint == "" {
		return nil, forge.ErrAPIEndpointRequired
	}

	config := &forge.Config{
		APIEndpoint: apiEndpoint,
		Proxy:       viper.GetString("proxy"),
		Debug:       viper.GetBool("verbose"),
		UserAgent:   "forge-cli",
		TokenProvider: func() (string, error) {
			token := viper.GetString("token")
			if token == "" {
				return "", forge.ErrNotAuthenticated
			}

			return token, nil
		},
	}

	if viper.GetBool("verbose") {
		config.Logger = NewConsoleLogger()
	}

	var err error

	config.CAFiles, err = forge.NormalizePathList(viper.Get("ssl.cafile"))
	if err != nil {
		return nil, fmt.Errorf("reading ssl.cafile: %w", err)
	}

	config.CertFiles, err = forge.NormalizePathList(viper.Get("ssl.certfile"))
	if err != nil {
		return nil, fmt.Errorf("reading ssl.certfile: %w", err)
	}

	config.KeyFiles, err = forge.NormalizePathList(viper.Get("ssl.keyfile"))
	if err != nil {
		return nil, fmt.Errorf("reading ssl.keyfile: %w", err)
	}

	if cacheType := viper.GetString("cache.type"); cacheType != "" {
		config.Cache = &forge.CacheConfig{
			Type:    forge.CacheType(cacheType),
			MaxSize: viper.GetInt("cache.max_size"),
		}

		if config.Cache.Type == forge.CacheTypeNATS {
			config.Cache.NATS = &forge.NATSKVConfig{
				URL:         viper.GetString("cache.nats.url"),
				Bucket:      viper.GetString("cache.nats.bucket"),
				Credentials: viper.GetString("cache.nats.credentials"),
			}
		}
	}

	return forgeclient.New(config)
}

// configFilePath returns the path the config file is (or will be) stored at.
func configFilePath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, ".forge", "config.yml"), nil
}

// saveConfigValue persists one key into the config file, creating the config
// directory on first use.
func saveConfigValue(key string, value interface{}) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	settings := map[string]interface{}{}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}

	settings[key] = value
	viper.Set(key, value)

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
