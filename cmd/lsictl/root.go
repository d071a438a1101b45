package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

const defaultModelPath = "models/model_rf.json"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lsictl",
		Short:         "Learning style inventory toolkit",
		Long:          "lsictl scores questionnaire response files against a classifier artifact and inspects artifacts.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("model", defaultModelPath, "Path to the classifier artifact (.json, .yaml)")

	root.AddCommand(newAssessCmd())
	root.AddCommand(newModelCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
