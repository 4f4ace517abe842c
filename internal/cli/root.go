// Package cli wires the cobra command tree around the station client
// and the purge orchestrator.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/synoprune/synoprune/internal/config"
	"github.com/synoprune/synoprune/internal/logger"
	"github.com/synoprune/synoprune/internal/purge"
	"github.com/synoprune/synoprune/internal/retry"
	"github.com/synoprune/synoprune/internal/station"
	"github.com/synoprune/synoprune/internal/synology"
)

var (
	version = "dev"

	cfgFile  string
	envFile  string
	logLevel string
	jsonOut  string
)

var rootCmd = &cobra.Command{
	Use:     "synoprune",
	Short:   "Purge low-value Download Station tasks and their files",
	Long: `synoprune talks to a Synology Download Station, lists its download
tasks, and reclaims storage by removing the least-valuable tasks (fewest
uploaded bytes, oldest completed) together with their downloaded files
until the retained size fits a given budget.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./config.yaml or ~/.synoprune/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"dotenv file to load before reading configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override configured log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&jsonOut, "json", "",
		"write command output as JSON to stdout, or to the given file")
	rootCmd.PersistentFlags().Lookup("json").NoOptDefVal = "-"
}

// Execute runs the CLI. Any returned error has already been printed.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// app bundles the long-lived collaborators a command needs.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	session *station.Session
	repo    *station.Repository
	orch    *purge.Orchestrator
}

// newApp loads configuration and assembles the client stack. Nothing
// remote happens until a command authenticates.
func newApp() (*app, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load() // .env in the working directory, if present
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})

	api := synology.New(cfg.Station.URL, cfg.Station.Timeout)
	retryCfg := retry.Config{
		Attempts:  cfg.Retry.Attempts,
		BaseDelay: cfg.Retry.BaseDelay,
	}
	session := station.NewSession(api, station.Credentials{
		Account:  cfg.Station.Username,
		Password: cfg.Station.Password,
	}, retryCfg, log.Logger)
	repo := station.NewRepository(api, session, retryCfg, log.Logger)

	return &app{
		cfg:     cfg,
		log:     log,
		session: session,
		repo:    repo,
		orch:    purge.NewOrchestrator(repo, cfg.Station.Root, log.Logger),
	}, nil
}

func (a *app) close() {
	_ = a.log.Close()
}
