package main

import (
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/onair/cmd"
	"github.com/smazurov/onair/internal/broker"
	"github.com/smazurov/onair/internal/config"
	"github.com/smazurov/onair/internal/logging"
	"github.com/smazurov/onair/internal/rules"
)

func main() {
	var cli humacli.CLI
	var opts *Options

	cli = humacli.New(func(hooks humacli.Hooks, o *Options) {
		opts = o

		// Flags set on the command line keep precedence over env and file.
		if err := config.LoadConfig(o, cli.Root()); err != nil {
			fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
			os.Exit(1)
		}
		logging.Initialize(o.loggingConfig())

		app := newApp(o, cli.Root())
		hooks.OnStart(func() {
			if err := app.start(); err != nil {
				app.logger.Error("Failed to start", "error", err)
				os.Exit(1)
			}
			app.wait()
		})
		hooks.OnStop(app.stop)
	})

	selectedRule := func() rules.MatchRule {
		rule, err := opts.rule(logging.GetLogger("rules"))
		if err != nil {
			logging.GetLogger("rules").Warn("Falling back to default rule", "error", err)
			return rules.Default()
		}
		return rule
	}
	brokerConfig := func() (broker.Config, error) {
		return opts.brokerConfig()
	}

	root := cli.Root()
	root.Use = "onair"
	root.Short = "Publish the camera on-air state to an MQTT broker"
	root.AddCommand(
		cmd.CreateRulesCmd(selectedRule),
		cmd.CreatePublishCmd(brokerConfig),
		cmd.CreateReplayCmd(selectedRule, brokerConfig),
		cmd.CreateUpdateCmd(func() string { return opts.UpdateRepository }),
		cmd.CreateVersionCmd(),
	)
	root.SetGlobalNormalizationFunc(normalizeFlagName)

	cli.Run()
}
