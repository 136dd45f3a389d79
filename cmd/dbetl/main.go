// Command dbetl moves rows from one relational database to another: it runs
// a configured read query against the source engine and writes the result
// into a target table in batches. Exit code 0 on success, 1 on any failure.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dbetl/internal/config"
	"dbetl/internal/pipeline"

	// register all engine dialects; the config selects which are used.
	_ "dbetl/internal/database/all"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		verbose bool
	)
	log := logrus.New()

	root := &cobra.Command{
		Use:          "dbetl",
		Short:        "Batch ETL between relational databases",
		Long:         "dbetl extracts rows from a source database with a SELECT query and loads them into a target table in batches, with optional table creation and truncation.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			if err := godotenv.Load(); err == nil {
				log.Debug("loaded environment from .env")
			}
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to the pipeline config (.json, .yaml or .yml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = root.MarkPersistentFlagRequired("config")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the configured ETL run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				log.WithError(err).Error("cannot load configuration")
				return err
			}
			return pipeline.New(cfg, log).Run(cmd.Context())
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the pipeline config and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				log.WithError(err).Error("cannot load configuration")
				return err
			}
			if err := cfg.Validate(); err != nil {
				log.WithError(err).Error("configuration is invalid")
				return err
			}
			log.WithField("config", cfgPath).Info("configuration is valid")
			return nil
		},
	}

	root.AddCommand(runCmd, validateCmd)
	return root
}
