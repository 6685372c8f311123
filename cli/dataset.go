package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/call-auditor/dataset"
	"github.com/maastricht-university/call-auditor/detect"
	"github.com/maastricht-university/call-auditor/orchestrator"
)

func newUtterancesCmd(a *app) *cobra.Command {
	var folder, out string
	cmd := &cobra.Command{
		Use:   "utterances",
		Short: "Flatten all transcripts into one utterance CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if folder == "" {
				folder = a.conf.Paths.Data
			}
			if out == "" {
				out = a.conf.Paths.Utterances
			}
			n, err := dataset.WriteUtterances(folder, out, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "done, written %d -> %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "transcript folder (default paths.data)")
	cmd.Flags().StringVar(&out, "out", "", "output CSV (default paths.utterances)")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	var in, out string
	var strict bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Label an utterance CSV with the pattern matcher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" {
				in = a.conf.Paths.Utterances
			}
			if out == "" {
				out = a.conf.Paths.Seed
			}
			n, err := dataset.SeedFile(in, out, a.pipeline(orchestrator.WithStrictProfanity(strict)).MatchProfanity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d -> %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "utterance CSV (default paths.utterances)")
	cmd.Flags().StringVar(&out, "out", "", "seed CSV (default paths.seed)")
	cmd.Flags().BoolVar(&strict, "strict", false, strictUsage)
	return cmd
}

func newTrainCmd(a *app) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Send a labelled seed CSV to the classifier service for training",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if csvPath == "" {
				csvPath = a.conf.Paths.Seed
			}
			// validate locally before uploading
			set, err := dataset.ReadLabelledFile(csvPath)
			if err != nil {
				return err
			}
			clf, err := a.pipeline().ML()
			if err != nil {
				return fmt.Errorf("set services.ml.url: %w", err)
			}
			ml, ok := clf.(*detect.MLService)
			if !ok {
				return errors.New("configured classifier cannot be trained")
			}
			res, err := ml.Train(cmd.Context(), csvPath)
			if err != nil {
				return err
			}
			a.logger.WithField("samples", set.Len()).Debug("training submitted")
			fmt.Fprintf(cmd.OutOrStdout(), "model -> %s\n", res.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "seed CSV (default paths.seed)")
	return cmd
}
