package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/twa-auth/telegram"
	"github.com/spf13/cobra"
)

func mintCmd() *cobra.Command {
	var botToken string
	var user telegram.User
	var age time.Duration

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Print signed init data for local testing",
		Long:  "Signs init data for a fake user with the bot token, the same way a Telegram client receives it. Pair it with the dev backend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if botToken == "" {
				botToken = c.GetBotToken()
			}
			if botToken == "" {
				return errors.New("a bot token is required (--bot-token or BOT_TOKEN)")
			}
			if user.ID == 0 {
				return errors.New("--id is required")
			}

			raw, err := telegram.Mint(user, botToken, time.Now().Add(-age))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	cmd.Flags().StringVar(&botToken, "bot-token", "", "bot token to sign with, defaults to BOT_TOKEN")
	cmd.Flags().Int64Var(&user.ID, "id", 0, "telegram user id")
	cmd.Flags().StringVar(&user.FirstName, "first-name", "", "user first name")
	cmd.Flags().StringVar(&user.LastName, "last-name", "", "user last name")
	cmd.Flags().StringVar(&user.Username, "username", "", "user name without @")
	cmd.Flags().DurationVar(&age, "age", 0, "backdate auth_date by this much")
	return cmd
}
