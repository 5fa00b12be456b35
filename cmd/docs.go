package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// docsCmd regenerates the Markdown documentation for the commands.
var docsCmd = &cobra.Command{
	Use:    "docs",
	Hidden: true,
	Short:  "Regenerate the Markdown docs under ./docs",
	Run: func(cmd *cobra.Command, args []string) {
		if err := doc.GenMarkdownTree(RootCmd, "./docs"); err != nil {
			log.Fatalf("%v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
