package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ncbi/vadr-sub007/internal/vadr"
)

// modelsCmd lists the models in a model-info file.
var modelsCmd = &cobra.Command{
	Use:                        "models",
	Run:                        listModels,
	Short:                      "List the models in a model-info file",
	SuggestionsMinimumDistance: 3,
}

func listModels(cmd *cobra.Command, args []string) {
	modelInfo, err := cmd.Flags().GetString("model-info")
	if err != nil {
		log.Fatalf("failed to parse --model-info: %v", err)
	}

	lib, err := vadr.NewLibrary(modelInfo, 0)
	if err != nil {
		log.Fatalf("failed to load model info: %v", err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 3, ' ', 0)
	fmt.Fprintf(writer, "model\tlength\tgroup\tsubgroup\tfeatures\t\n")
	for _, id := range lib.Models() {
		m, _ := lib.Info(id)
		group, subgroup := m.Group, m.Subgroup
		if group == "" {
			group = "-"
		}
		if subgroup == "" {
			subgroup = "-"
		}
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\t%d\n", m.ID, m.Length, group, subgroup, len(m.Features))
	}
	writer.Flush()
}

func init() {
	modelsCmd.Flags().StringP("model-info", "m", "", "model-info file with models and their features")

	RootCmd.AddCommand(modelsCmd)
}
