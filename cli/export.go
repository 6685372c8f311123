package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/call-auditor/orchestrator"
	"github.com/maastricht-university/call-auditor/store"
)

func newExportCmd(a *app) *cobra.Command {
	var folder, outDir, dbPath, textfile string
	var strict bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Audit every transcript in a folder and export results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if folder == "" {
				folder = a.conf.Paths.Data
			}
			if outDir == "" {
				outDir = a.conf.Paths.Outputs
			}
			if dbPath == "" {
				dbPath = a.conf.Paths.Database
			}
			if textfile == "" {
				textfile = a.conf.Paths.MetricsTextfile
			}

			p := a.pipeline(orchestrator.WithStrictProfanity(strict))
			rep, err := p.Run(cmd.Context(), folder)
			if err != nil {
				return err
			}
			w, err := orchestrator.Persist(outDir, a.conf.Paths.Results, a.conf.Paths.CallMetrics, rep)
			if err != nil {
				return err
			}

			if dbPath != "" {
				s, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
				if err := s.SaveReport(cmd.Context(), rep); err != nil {
					return err
				}
			}
			if textfile != "" {
				if err := p.Stats().WriteTextfile(textfile); err != nil {
					a.logger.WithError(err).WithField("path", textfile).Warn("metrics textfile not written")
				}
			}

			a.logger.WithFields(logrus.Fields{"results": w.Results, "call_metrics": w.CallMetrics}).Info("exported")
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s and %s\n", w.Results, w.CallMetrics)
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "transcript folder (default paths.data)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output root (default paths.outputs)")
	cmd.Flags().StringVar(&dbPath, "db", "", "also store the run in this SQLite database")
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "write Prometheus textfile metrics here")
	cmd.Flags().BoolVar(&strict, "strict", false, strictUsage)
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var dbPath, runID, callID string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, or the flags of one call with --run and --call",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				dbPath = a.conf.Paths.Database
			}
			if dbPath == "" {
				return fmt.Errorf("no database: pass --db or set paths.database")
			}
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if runID != "" || callID != "" {
				if runID == "" || callID == "" {
					return fmt.Errorf("--run and --call go together")
				}
				flags, err := s.FlagsForCall(cmd.Context(), runID, callID)
				if err != nil {
					return err
				}
				return printFlags(cmd.OutOrStdout(), flags)
			}

			runs, err := s.Runs(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tcalls=%d\tflags=%d\n",
					r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05"), r.Folder, r.Calls, r.Flags)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database (default paths.database)")
	cmd.Flags().StringVar(&runID, "run", "", "run id to inspect")
	cmd.Flags().StringVar(&callID, "call", "", "call id to inspect")
	return cmd
}

func printFlags(w io.Writer, flags []orchestrator.Flag) error {
	if len(flags) == 0 {
		fmt.Fprintln(w, "no flags")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "utterance_id\tstime\tissue\tspeaker\ttext")
	for _, f := range flags {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\t%s\n", f.UtteranceID, f.Start, f.Issue, f.Speaker, f.Text)
	}
	return tw.Flush()
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.conf.Dump()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
