package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smazurov/onair/internal/logging"
	"github.com/smazurov/onair/internal/systemd"
	"github.com/smazurov/onair/internal/updater"
	"github.com/spf13/cobra"
)

// CreateUpdateCmd creates the self-update command.
func CreateUpdateCmd(repository func() string) *cobra.Command {
	var checkOnly, prerelease bool
	var restartUnit string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update onair to the latest release",
		Long:  `Downloads the latest GitHub release for this platform and replaces the running binary. The previous binary is kept as a backup.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()

			up, err := updater.New(updater.Options{
				Repository: repository(),
				Prerelease: prerelease,
			}, logging.GetLogger("updater"))
			if err != nil {
				return err
			}

			if checkOnly {
				info, err := up.Check(ctx)
				if err != nil {
					return err
				}
				if info.UpdateAvailable {
					fmt.Fprintf(out, "Update available: %s -> %s\n%s\n", info.CurrentVersion, info.LatestVersion, info.ReleaseURL)
				} else {
					fmt.Fprintf(out, "Up to date (%s)\n", info.CurrentVersion)
				}
				return nil
			}

			info, err := up.Apply(ctx)
			var upErr *updater.Error
			if errors.As(err, &upErr) && upErr.Code == updater.ErrCodeNoUpdate {
				fmt.Fprintf(out, "Up to date (%s)\n", info.CurrentVersion)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated %s -> %s\n", info.CurrentVersion, info.LatestVersion)

			if restartUnit == "" {
				return nil
			}
			restartCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			mgr, err := systemd.NewManager(restartCtx)
			if err != nil {
				return err
			}
			defer mgr.Close()
			if err := mgr.Restart(restartCtx, restartUnit); err != nil {
				return err
			}
			fmt.Fprintf(out, "Restarted %s\n", restartUnit)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether an update is available")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases")
	cmd.Flags().StringVar(&restartUnit, "restart-unit", "", "systemd user unit to restart after updating, e.g. onair.service")
	return cmd
}
