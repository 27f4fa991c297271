package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/onair/internal/logstream"
	"github.com/smazurov/onair/internal/rules"
	"github.com/spf13/cobra"
)

// CreateRulesCmd prints the rule table. selected returns the rule this host
// would use.
func CreateRulesCmd(selected func() rules.MatchRule) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the log match rules",
		Long:  `Prints the macOS version to rule table and the log stream command for the rule selected on this host.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current := selected()
			out := cmd.OutOrStdout()

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tMACOS\tRULE\tON\tOFF\tPATTERN")
			for _, e := range rules.Table() {
				mark := ""
				if e.Rule.Name == current.Name {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%q\t%q\t%s\n", mark, e.Versions, e.Rule.Name,
					e.Rule.OnMarker, e.Rule.OffMarker, e.Rule.DeviceExtractPattern)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nSelected: %s\n", current.Name)
			if !current.HasDeviceCapture() {
				fmt.Fprintln(out, "All cameras are tracked as one device.")
			}
			fmt.Fprintf(out, "Command:  %s\n", quoteArgs(logstream.Command(current)))
			return nil
		},
	}
}

func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \"'\\") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
