package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/twa-auth/backend"
	"github.com/jrsteele09/twa-auth/diagnostics"
	"github.com/jrsteele09/twa-auth/host"
	"github.com/jrsteele09/twa-auth/internal/config"
	"github.com/jrsteele09/twa-auth/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var initDataFlag string
	var autoAuth bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive handshake session",
		Long:  "Reads init data from --init-data, INIT_DATA_FILE or the INIT_DATA_VAR environment variable and drives the handshake from a prompt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			displayAppname(cmd, c.GetAppName())

			client, err := backend.New(c.GetBackendURL(),
				backend.WithTimeout(c.GetRequestTimeout()),
				backend.WithUserAgent(c.GetUserAgent()),
				backend.WithDebug(c.GetDebugRequests()),
			)
			if err != nil {
				return err
			}

			view := newConsoleView(cmd.OutOrStdout(), noColour)
			controller, err := session.New(selectHost(c, initDataFlag), client,
				session.WithListener(view),
				session.WithInitDataCache(selectCache(c)),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("backend", c.GetBackendURL()).Msg("starting session")
			if err := controller.Initialize(); err == nil {
				view.status(controller.Snapshot())
				if autoAuth {
					_ = controller.Handle(ctx, session.AuthenticateRequested)
				}
			}

			r := &repl{controller: controller, view: view, copier: diagnostics.Clipboard{}}
			view.printf(helpText)
			return r.run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&initDataFlag, "init-data", "", "raw init data, overrides the environment")
	cmd.Flags().BoolVar(&autoAuth, "auth", false, "authenticate immediately after start")
	return cmd
}

// selectHost picks the init data source: explicit flag, then file, then environment variable.
func selectHost(c config.HostConfig, initData string) host.Environment {
	if initData != "" {
		return &host.Static{Raw: initData}
	}
	if path := c.GetInitDataFile(); path != "" {
		return host.File{Path: path}
	}
	return host.EnvVar{Name: c.GetInitDataVar()}
}

func selectCache(c config.HostConfig) diagnostics.InitDataCache {
	if path := c.GetInitDataCache(); path != "" {
		return diagnostics.NewFileCache(path)
	}
	return diagnostics.NewMemoryCache()
}
