package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/virl2-client/cmd/virl2/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "virl2",
	Short: "CML network simulation CLI",
	Long: `A command-line interface for a CML (VIRL2) network simulation controller.

This CLI manages simulation labs: listing, creating, starting, stopping,
and importing topology files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.virl2/config.yml)")
	rootCmd.PersistentFlags().String("url", "", "controller URL or hostname")
	rootCmd.PersistentFlags().StringP("username", "u", "", "controller username")
	rootCmd.PersistentFlags().StringP("password", "p", "", "controller password")
	rootCmd.PersistentFlags().String("ca-bundle", "", "path to a CA certificate bundle")
	rootCmd.PersistentFlags().BoolP("insecure", "k", false, "skip TLS certificate verification")
	rootCmd.PersistentFlags().Bool("allow-http", false, "allow plain http controller URLs")
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "log requests and responses")

	// Bind flags to viper
	_ = viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	_ = viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("ca-bundle", rootCmd.PersistentFlags().Lookup("ca-bundle"))
	_ = viper.BindPFlag("insecure", rootCmd.PersistentFlags().Lookup("insecure"))
	_ = viper.BindPFlag("allow-http", rootCmd.PersistentFlags().Lookup("allow-http"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewLabsCommand())
	rootCmd.AddCommand(commands.NewWaitCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.virl2/config.yml
		viper.AddConfigPath(filepath.Join(home, ".virl2"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match. The controller's canonical
	// variables do not follow the prefix scheme, so bind them explicitly.
	viper.SetEnvPrefix("VIRL2")
	viper.AutomaticEnv()
	_ = viper.BindEnv("url", "VIRL2_URL")
	_ = viper.BindEnv("username", "VIRL2_USER")
	_ = viper.BindEnv("password", "VIRL2_PASS")
	_ = viper.BindEnv("ca-bundle", "CA_BUNDLE")

	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
