package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/virl2-client/internal/constants"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2client"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a CML controller",
		Long:  "Authenticate against a CML controller and persist the connection settings",
		RunE:  runLoginCommand,
	}

	return cmd
}

func runLoginCommand(cmd *cobra.Command, args []string) error {
	controllerURL := viper.GetString("url")
	if controllerURL == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Controller URL: ")
		controllerURL, _ = reader.ReadString('\n')
		controllerURL = strings.TrimSpace(controllerURL)
	}

	username := viper.GetString("username")
	if username == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Username: ")
		username, _ = reader.ReadString('\n')
		username = strings.TrimSpace(username)
	}

	if username == "" {
		return constants.ErrUsernameRequired
	}

	password := viper.GetString("password")
	if password == "" {
		fmt.Print("Password: ")

		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		password = string(bytePassword)

		fmt.Println()
	}

	config := &virl2.Config{
		URL:                 controllerURL,
		Username:            username,
		Password:            password,
		CACertFile:          viper.GetString("ca-bundle"),
		SkipVerify:          viper.GetBool("insecure"),
		AllowHTTP:           viper.GetBool("allow-http"),
		RaiseForAuthFailure: true,
	}

	client, err := virl2client.New(context.Background(), config)
	if err != nil {
		return fmt.Errorf("failed to connect to controller: %w", err)
	}

	// Persist everything except the password.
	path, err := configFilePath()
	if err != nil {
		return err
	}

	err = saveConfigFile(path, &Config{
		URL:        controllerURL,
		Username:   username,
		CABundle:   config.CACertFile,
		SkipVerify: config.SkipVerify,
		AllowHTTP:  config.AllowHTTP,
	})
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Successfully logged in to %s\n", client.BaseURL())

	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the CML controller",
		Long:  "Clear the persisted connection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			err = saveConfigFile(path, &Config{})
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Println("Successfully logged out")

			return nil
		},
	}
}
