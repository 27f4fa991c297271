package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/smazurov/onair/internal/air"
	"github.com/smazurov/onair/internal/broker"
	"github.com/smazurov/onair/internal/logging"
	"github.com/smazurov/onair/internal/logstream"
	"github.com/smazurov/onair/internal/rules"
	"github.com/smazurov/onair/internal/watcher"
	"github.com/spf13/cobra"
)

// dryRunPublisher prints what would be published.
type dryRunPublisher struct {
	out io.Writer
}

func (p dryRunPublisher) Publish(_ context.Context, on bool) error {
	_, err := fmt.Fprintf(p.out, "publish %v\n", on)
	return err
}

// CreateReplayCmd runs a captured `log stream` output through the pipeline.
func CreateReplayCmd(selected func() rules.MatchRule, brokerConfig func() (broker.Config, error)) *cobra.Command {
	var ruleName string
	var publish bool

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a captured log through the watcher",
		Long: `Feeds a file of captured log stream output through matching, the camera table and the air state machine. ` +
			`Transitions are printed; with --publish they are also sent to the broker. Use - for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := selected()
			if ruleName != "" {
				var err error
				if rule, err = rules.ByName(ruleName); err != nil {
					return err
				}
			}

			var in io.ReadCloser = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				in = f
			}

			out := cmd.OutOrStdout()
			var pub air.Publisher = dryRunPublisher{out: out}
			if publish {
				cfg, err := brokerConfig()
				if err != nil {
					return err
				}
				cfg.WaitForAck = true
				bp := broker.NewPublisher(cfg, logging.GetLogger("broker"))
				defer bp.Close()
				pub = bp
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctrl := air.NewController(pub, nil, nil, logging.GetLogger("air"))
			w := watcher.New(watcher.Options{
				Feed:       logstream.NewReaderFeed(in),
				Rule:       rule,
				Controller: ctrl,
				Logger:     logging.GetLogger("watcher"),
			})
			w.Run(ctx)

			snap := ctrl.Snapshot()
			fmt.Fprintf(out, "rule=%s lines=%d cameras=%d transitions=%d final=%s\n",
				rule.Name, w.Lines(), w.Table().Len(), snap.Transitions, snap.State)
			return nil
		},
	}

	cmd.Flags().StringVar(&ruleName, "rule", "", "Rule name to match with instead of the detected one")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish transitions to the broker")
	return cmd
}
