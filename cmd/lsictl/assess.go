package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/model"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/security"
)

// responseFile is the on-disk shape of a submission. JSON files decode
// through the YAML parser as well.
type responseFile struct {
	Subject   string         `yaml:"subject"`
	Responses map[string]any `yaml:"responses"`
}

func newAssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score a response file and print the assessment as JSON",
		Example: `  lsictl assess --file answers.yaml
  lsictl assess --model models/model_rf.json --file answers.json --seed 42 --strict`,
		Args: cobra.NoArgs,
		RunE: runAssess,
	}

	cmd.Flags().StringP("file", "f", "", "Response file (.yaml, .yml or .json)")
	cmd.Flags().String("subject", "", "Subject name (overrides the file)")
	cmd.Flags().Uint64("seed", 0, "Seed the noise feature for a reproducible run")
	cmd.Flags().Bool("strict", false, "Reject submissions with unanswered items")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runAssess(cmd *cobra.Command, _ []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	path, _ := cmd.Flags().GetString("file")
	strict, _ := cmd.Flags().GetBool("strict")

	rf, err := readResponseFile(path)
	if err != nil {
		return err
	}
	if s, _ := cmd.Flags().GetString("subject"); s != "" {
		rf.Subject = s
	}

	var opts []model.Option
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		opts = append(opts, model.WithNoise(model.NewSeededNormalNoise(seed)))
	}

	predictor, err := model.NewPredictor(modelPath, opts...)
	if err != nil {
		return err
	}

	analyzer := analysis.NewAnalyzer(analysis.NewAggregator(!strict), predictor)
	assessment, err := analyzer.Assess(security.SanitizeSubject(rf.Subject), analysis.ValuesFromMap(rf.Responses))
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), assessment)
}

func readResponseFile(path string) (*responseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read response file: %w", err)
	}

	var rf responseFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse response file %s: %w", path, err)
	}
	if len(rf.Responses) == 0 {
		return nil, fmt.Errorf("response file %s has no responses", path)
	}

	return &rf, nil
}
