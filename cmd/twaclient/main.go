package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/twa-auth/internal/config"
	"github.com/jrsteele09/twa-auth/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configFile string
	noColour   bool
)

func main() {
	err := rootCmd().Execute()
	logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "twaclient",
		Short:        "Telegram Mini App authentication client",
		Long:         "Runs the Mini App handshake against an auth backend: authenticate with init data, sign the agreement and validate the issued token.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", config.GetEnv("TWA_CONFIG_FILE", ""), "optional TOML config file")
	cmd.PersistentFlags().BoolVar(&noColour, "no-colour", false, "disable coloured output")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(mintCmd())
	return cmd
}

// loadConfig loads configuration and sets up logging for a subcommand.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logging.Configure(logging.Config{
		App:    c.GetAppName(),
		Level:  c.GetLogLevel(),
		File:   c.GetLogFile(),
		Output: cmd.ErrOrStderr(),
		JSON:   c.GetEnv() != "DEV",
	})
	return c, nil
}

func displayAppname(cmd *cobra.Command, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(cmd.OutOrStdout(), myFigure.String())
}
