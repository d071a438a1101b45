package main

import (
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/model"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

type modelReport struct {
	types.ModelInfo
	Format      model.Format `json:"format"`
	NumFeatures int          `json:"num_features"`
	NumTrees    int          `json:"num_trees,omitempty"`
}

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Work with classifier artifacts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect",
		Short: "Load an artifact and print its kind, classes and features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("model")

			clf, err := model.Load(path)
			if err != nil {
				return err
			}

			report := modelReport{
				ModelInfo: types.ModelInfo{
					Kind:         clf.Kind(),
					Classes:      clf.Classes(),
					FeatureNames: types.FeatureNames[:],
				},
				Format:      model.FormatFromPath(path),
				NumFeatures: clf.NumFeatures(),
			}
			if f, ok := clf.(*model.Forest); ok {
				report.NumTrees = f.NumTrees()
			}

			return writeJSON(cmd.OutOrStdout(), report)
		},
	})

	return cmd
}
