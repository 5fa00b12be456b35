package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ncbi/vadr-sub007/internal/alert"
)

// alertsCmd lists every alert code the engine can produce.
var alertsCmd = &cobra.Command{
	Use:                        "alerts",
	Run:                        listAlerts,
	Short:                      "List all alert codes with their defaults",
	SuggestionsMinimumDistance: 3,
}

func listAlerts(cmd *cobra.Command, args []string) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 3, ' ', 0)
	fmt.Fprintf(writer, "code\tscope\tdefault\toverridable\tdescription\t\n")
	for _, m := range alert.All() {
		scope := "sequence"
		if m.PerFeature {
			scope = "feature"
		}
		def := "non-fatal"
		if m.DefaultFatal {
			def = "fatal"
		}
		overridable := "yes"
		if m.AlwaysFatal {
			overridable = "no"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", m.Code, scope, def, overridable, m.Desc)
	}
	writer.Flush()
}

func init() {
	RootCmd.AddCommand(alertsCmd)
}
