package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint string
		token       string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a Forge API",
		Long:  "Store an API endpoint and access token, verifying them against the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
			}

			if apiEndpoint == "" {
				return forge.ErrAPIEndpointRequired
			}

			if token == "" {
				fmt.Print("Access token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token = strings.TrimSpace(string(byteToken))

				fmt.Println()
			}

			viper.Set("api", apiEndpoint)
			viper.Set("token", token)

			client, err := CreateClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			// Verify the credentials with a cheap list call.
			cursor := client.Jobs().List(forge.WithPageSize[forge.Job](1))
			if _, err := cursor.Next(context.Background()); err != nil {
				return fmt.Errorf("failed to connect to API: %w", err)
			}

			if err := saveConfigValue("api", apiEndpoint); err != nil {
				return err
			}

			if err := saveConfigValue("token", token); err != nil {
				return err
			}

			NewConsoleLogger().Ok("Logged in to " + apiEndpoint)

			return nil
		},
	}

	cmd.Flags().StringVarP(&apiEndpoint, "api", "a", "", "API endpoint URL")
	cmd.Flags().StringVarP(&token, "token", "t", "", "access token")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the current Forge API",
		Long:  "Remove the stored access token for the current API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := saveConfigValue("token", ""); err != nil {
				return err
			}

			NewConsoleLogger().Ok("Logged out")

			return nil
		},
	}
}
