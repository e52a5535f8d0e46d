package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Static errors for err113 compliance.
var (
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

// configKeys are the keys the config command accepts.
var configKeys = []string{
	"api", "token", "output", "proxy",
	"ssl.cafile", "ssl.certfile", "ssl.keyfile",
	"cache.type", "cache.max_size",
	"cache.nats.url", "cache.nats.bucket", "cache.nats.credentials",
}

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "View and modify the Forge CLI configuration",
	}

	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigViewCommand())

	return cmd
}

func knownConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}

	return false
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !knownConfigKey(key) {
				return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
			}

			fmt.Println(viper.Get(key))

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if !knownConfigKey(key) {
				return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
			}

			return saveConfigValue(key, value)
		},
	}
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Key", "Value")

			for _, key := range configKeys {
				value := viper.Get(key)
				if key == "token" && viper.GetString(key) != "" {
					value = "***"
				}

				if value == nil {
					continue
				}

				_ = table.Append(key, fmt.Sprint(value))
			}

			return table.Render()
		},
	}
}
