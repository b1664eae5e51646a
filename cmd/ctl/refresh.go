package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"downtime-panel-bot/internal/mq"
)

var (
	refreshGuild  int64
	refreshEvents bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the running bot to re-render panels",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is not set")
		}
		pub, err := mq.NewPublisher(cfg.RabbitMQURL, logr.Named("mq"))
		if err != nil {
			return err
		}
		defer pub.Close()

		if err := mq.NewRefreshRequester(pub).Request(cmd.Context(), refreshGuild, refreshEvents); err != nil {
			return err
		}
		scope := "all guilds"
		if refreshGuild != 0 {
			scope = fmt.Sprintf("guild %d", refreshGuild)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Refresh requested for %s\n", scope)
		return nil
	},
}

func init() {
	refreshCmd.Flags().Int64Var(&refreshGuild, "guild", 0, "Guild or chat id (default all)")
	refreshCmd.Flags().BoolVar(&refreshEvents, "events", false, "Refresh event panels instead of status panels")
	rootCmd.AddCommand(refreshCmd)
}
