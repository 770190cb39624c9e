package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gogofolio/modules/config"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(viper.New())
}

func newRootCmdWith(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "gogofolio",
		Short:         "Personal website server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a TOML config file")
	flags.Int("port", 0, "port to listen on (overrides config and PORT)")
	flags.String("host", "", "host to listen on")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("posts", "", "posts directory")

	for _, name := range []string{"config", "port", "host", "log-level", "posts"} {
		v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix("GOGOFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(newServeCmd(v), newRoutesCmd(v), newResolveCmd())
	return root
}

// loadConfig reads the config file and lays flags and GOGOFOLIO_* variables
// over it.
func loadConfig(v *viper.Viper) (config.Config, error) {
	cfg, err := config.LoadConfig(v.GetString("config"))
	if err != nil {
		return config.Config{}, err
	}

	if v.IsSet("port") && v.GetInt("port") != 0 {
		cfg.Server.Port = v.GetInt("port")
	}
	if host := v.GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if level := v.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if posts := v.GetString("posts"); posts != "" {
		cfg.Directories.Posts = posts
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
