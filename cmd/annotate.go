package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ncbi/vadr-sub007/internal/vadr"
)

// annotateCmd runs the full annotation over a file of aligned sequences.
var annotateCmd = &cobra.Command{
	Use:                        "annotate",
	Run:                        vadr.AnnotateCmd,
	Short:                      "Annotate aligned sequences and report alerts with a pass/fail verdict",
	SuggestionsMinimumDistance: 3,
}

// set flags
func init() {
	annotateCmd.Flags().StringP("model-info", "m", "", "model-info file with models and their features")
	annotateCmd.Flags().StringP("in", "i", "", "input JSON file with per-sequence alignments and hits")
	annotateCmd.Flags().StringP("out", "o", "", "output JSON report file name")
	annotateCmd.Flags().StringP("alt", "a", "", "alert table file name (default stdout)")
	annotateCmd.Flags().IntP("threads", "t", 0, "number of worker goroutines (default 1)")

	annotateCmd.Flags().StringSlice("alt-pass", nil, "fatal alert codes to treat as non-fatal")
	annotateCmd.Flags().StringSlice("alt-fail", nil, "non-fatal alert codes to treat as fatal")
	annotateCmd.Flags().StringSlice("misc-ok", nil, "alert codes added to the misc_feature demotion set")
	annotateCmd.Flags().StringSlice("misc-not", nil, "alert codes removed from the misc_feature demotion set")
	annotateCmd.Flags().Bool("atg-only", false, "accept only ATG as a start codon")
	annotateCmd.Flags().Bool("loose-restore", false, "end frameshift regions at any return to the expected frame")

	viper.BindPFlag("threads", annotateCmd.Flags().Lookup("threads"))
	viper.BindPFlag("alerts.alt-pass", annotateCmd.Flags().Lookup("alt-pass"))
	viper.BindPFlag("alerts.alt-fail", annotateCmd.Flags().Lookup("alt-fail"))
	viper.BindPFlag("alerts.misc-ok", annotateCmd.Flags().Lookup("misc-ok"))
	viper.BindPFlag("alerts.misc-not", annotateCmd.Flags().Lookup("misc-not"))
	viper.BindPFlag("frame.atg-only", annotateCmd.Flags().Lookup("atg-only"))
	viper.BindPFlag("frame.loose-restore", annotateCmd.Flags().Lookup("loose-restore"))

	RootCmd.AddCommand(annotateCmd)
}
