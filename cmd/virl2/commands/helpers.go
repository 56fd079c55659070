package commands

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2client"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	defaultJSONIndent = 2
)

// CreateClient builds an authenticated client from the effective
// configuration (flags, config file, environment).
func CreateClient(ctx context.Context) (virl2.Client, error) {
	return virl2client.New(ctx, &virl2.Config{
		URL:                 viper.GetString("url"),
		Username:            viper.GetString("username"),
		Password:            viper.GetString("password"),
		CACertFile:          viper.GetString("ca-bundle"),
		SkipVerify:          viper.GetBool("insecure"),
		AllowHTTP:           viper.GetBool("allow-http"),
		Debug:               viper.GetBool("debug"),
		RaiseForAuthFailure: true,
	})
}

// StandardJSONRenderer writes data as indented JSON to stdout.
func StandardJSONRenderer(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}

// StandardYAMLRenderer writes data as YAML to stdout.
func StandardYAMLRenderer(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(defaultJSONIndent)

	return encoder.Encode(data)
}
