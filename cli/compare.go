package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/call-auditor/dataset"
	"github.com/maastricht-university/call-auditor/detect"
	"github.com/maastricht-university/call-auditor/evaluate"
)

func newCompareCmd(a *app) *cobra.Command {
	var csvPath string
	var llmSample int
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Score pattern, ML and LLM profanity detection against the seed set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if csvPath == "" {
				csvPath = a.conf.Paths.Seed
			}
			set, err := dataset.ReadLabelledFile(csvPath)
			if err != nil {
				return err
			}
			p := a.pipeline()
			ctx := cmd.Context()

			var results []evaluate.Result
			score := func(name string, truth, preds []int) error {
				r, err := evaluate.Score(name, truth, preds)
				if err != nil {
					return err
				}
				results = append(results, r)
				return nil
			}

			if err := score("Pattern Matching", set.Labels, p.PatternLabels(set.Texts)); err != nil {
				return err
			}

			if ml, err := p.ML(); err == nil {
				preds, _, err := ml.Predict(ctx, set.Texts)
				if err != nil {
					a.logger.WithError(err).Warn("ml baseline skipped")
				} else if err := score("ML Baseline", set.Labels, preds); err != nil {
					return err
				}
			}

			if llmSample > 0 {
				llm, err := p.LLM()
				if err != nil {
					a.logger.WithError(err).Warn("llm skipped")
				} else {
					sub := set.Head(llmSample)
					preds := llm.Classify(ctx, sub.Texts, detect.EntityProfanity)
					if err := score(fmt.Sprintf("LLM (n=%d)", sub.Len()), sub.Labels, preds); err != nil {
						return err
					}
				}
			}

			out := cmd.OutOrStdout()
			if err := evaluate.WriteTable(out, results); err != nil {
				return err
			}
			if best, ok := evaluate.Best(results); ok {
				fmt.Fprintf(out, "best F1: %s (%.4f)\n", best.Approach, best.F1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "labelled CSV (default paths.seed)")
	cmd.Flags().IntVar(&llmSample, "llm-sample", 0, "also score the LLM on the first N rows")
	return cmd
}
