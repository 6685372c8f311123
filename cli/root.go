// Package cli wires the auditor commands.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/call-auditor/config"
	"github.com/maastricht-university/call-auditor/orchestrator"
)

type app struct {
	configPath string
	logLevel   string
	logOut     io.Writer

	conf   *cfg.Root
	logger *logrus.Logger
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// .env is optional; it usually only carries GOOGLE_API_KEY
	_ = godotenv.Load()

	conf, err := cfg.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		conf.Pipeline.LogLvl = a.logLevel
	}
	a.conf = conf

	a.logger = logrus.New()
	a.logger.SetOutput(a.logOut)
	a.logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(conf.Pipeline.LogLvl)
	if err != nil {
		a.logger.WithField("log_level", conf.Pipeline.LogLvl).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	a.logger.SetLevel(lvl)
	return nil
}

func (a *app) pipeline(opts ...orchestrator.Option) *orchestrator.Pipeline {
	return orchestrator.NewPipeline(a.conf, a.logger, opts...)
}

const strictUsage = "also match trigger words with spacing or punctuation stripped (more false positives)"

// NewRootCommand builds the command tree. Logs go to logOut.
func NewRootCommand(logOut io.Writer) *cobra.Command {
	a := &app{logOut: logOut}
	root := &cobra.Command{
		Use:               "auditor",
		Short:             "Call transcript compliance auditor",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: config/$CONFIG_ENV/config.yaml or ./config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override pipeline.log_level")

	root.AddCommand(
		newExportCmd(a),
		newAnalyzeCmd(a),
		newUtterancesCmd(a),
		newSeedCmd(a),
		newTrainCmd(a),
		newCompareCmd(a),
		newRunsCmd(a),
		newConfigCmd(a),
	)
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand(os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
