package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/call-auditor/orchestrator"
)

var approachNames = map[orchestrator.Approach]string{
	orchestrator.ApproachPattern: "Pattern Matching",
	orchestrator.ApproachML:      "ML",
	orchestrator.ApproachLLM:     "LLM",
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var approach, entity string
	var asJSON, strict bool
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Run one detection approach on a single call file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ap := orchestrator.Approach(approach)
			if _, ok := approachNames[ap]; !ok {
				return fmt.Errorf("unknown approach %q (pattern, ml, llm)", approach)
			}
			res, err := a.pipeline(orchestrator.WithStrictProfanity(strict)).AnalyzeFile(cmd.Context(), args[0], ap, orchestrator.Entity(entity))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printAnalysis(out, res)
		},
	}
	cmd.Flags().StringVar(&approach, "approach", "pattern", "pattern, ml or llm")
	cmd.Flags().StringVar(&entity, "entity", "profanity", "profanity, privacy or metrics")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "pattern approach: "+strictUsage)
	return cmd
}

func printAnalysis(w io.Writer, res *orchestrator.Analysis) error {
	fmt.Fprintf(w, "Call: %s\n", res.CallID)
	if m := res.Metrics; m != nil {
		fmt.Fprintf(w, "Call duration (s): %.2f\n", m.CallDuration)
		fmt.Fprintf(w, "Overtalk %%: %.2f%%\n", m.OvertalkPct)
		fmt.Fprintf(w, "Silence %%: %.2f%%\n", m.SilencePct)
		fmt.Fprintf(w, "Speaking %%: %.2f%%\n", m.SpeakingOnlyPct())
		return nil
	}

	name := approachNames[res.Approach]
	if len(res.Flags) == 0 {
		fmt.Fprintf(w, "No %s issues detected (%s).\n", res.Entity, name)
		return nil
	}
	fmt.Fprintf(w, "Found %d %s utterance(s) (%s)\n", len(res.Flags), res.Entity, name)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "utterance_id\tstime\tetime\tspeaker\ttext\tprob")
	for _, f := range res.Flags {
		prob := ""
		if f.Probability != nil {
			prob = fmt.Sprintf("%.3f", *f.Probability)
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%s\t%s\t%s\n", f.UtteranceID, f.Start, f.End, f.Speaker, f.Text, prob)
	}
	return tw.Flush()
}
