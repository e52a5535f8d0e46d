package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// VersionInfo describes the running CLI build and the Forge deployment it
// talks to. APIEndpoint is empty when no endpoint has been configured yet.
type VersionInfo struct {
	Version     string `json:"version" yaml:"version"`
	Commit      string `json:"commit" yaml:"commit"`
	Built       string `json:"built" yaml:"built"`
	GoVersion   string `json:"go_version" yaml:"go_version"`
	Platform    string `json:"platform" yaml:"platform"`
	APIEndpoint string `json:"api_endpoint,omitempty" yaml:"api_endpoint,omitempty"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display the Forge CLI build details and the configured API endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:     version,
				Commit:      commit,
				Built:       date,
				GoVersion:   runtime.Version(),
				Platform:    runtime.GOOS + "/" + runtime.GOARCH,
				APIEndpoint: viper.GetString("api"),
			}

			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case "json":
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			case "yaml":
				encoder := yaml.NewEncoder(out)
				return encoder.Encode(info)
			default:
				table := tablewriter.NewWriter(out)
				table.Header("Property", "Value")
				_ = table.Append("Version", info.Version)
				_ = table.Append("Commit", info.Commit)
				_ = table.Append("Built", info.Built)
				_ = table.Append("Go", info.GoVersion)
				_ = table.Append("Platform", info.Platform)
				if info.APIEndpoint != "" {
					_ = table.Append("API Endpoint", info.APIEndpoint)
				}
				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}
