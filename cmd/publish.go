package cmd

import (
	"context"
	"fmt"

	"github.com/smazurov/onair/internal/broker"
	"github.com/smazurov/onair/internal/logging"
	"github.com/spf13/cobra"
)

// CreatePublishCmd creates the one-shot publish command, the equivalent of
// the menu's "Turn on" and "Turn off" items.
func CreatePublishCmd(brokerConfig func() (broker.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:       "publish on|off",
		Short:     "Publish an on-air state once",
		Long:      `Connects to the broker, publishes the given state and waits for the broker to accept it.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := brokerConfig()
			if err != nil {
				return err
			}
			// The process exits right after, so the publish must complete.
			cfg.WaitForAck = true

			on := args[0] == "on"
			pub := broker.NewPublisher(cfg, logging.GetLogger("broker"))
			defer pub.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := pub.Publish(ctx, on); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %v to %s on %s\n", on, cfg.Topic, cfg.Host)
			return nil
		},
	}
}
