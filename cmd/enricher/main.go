package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jengzang/collision-records-go/internal/config"
	"github.com/jengzang/collision-records-go/internal/database"
	"github.com/jengzang/collision-records-go/internal/logging"
	"github.com/jengzang/collision-records-go/internal/repository"
	"github.com/jengzang/collision-records-go/internal/service"
)

var (
	// Global flags
	configPath string
	logLevel   string
	dbPath     string

	cfg    config.Config
	logger *zap.Logger

	newLogger = logging.New
)

var rootCmd = &cobra.Command{
	Use:   "enricher",
	Short: "Enrich SWITRS collision records with victim and party summaries",
	Long: `enricher joins per-case victim demographics and party characteristics onto
the SWITRS collision table, classifies the most vulnerable mode involved and
writes the enhanced table. The report command derives chart-ready views from it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("db") {
			cfg.DBPath = dbPath
		}

		logger, err = newLogger(cfg.LogLevel, cfg.LogJSON)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database for run history and enriched rows")

	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// execute runs the command line and flushes the logger whether or not it failed;
// cobra skips post-run hooks after a failed RunE.
func execute(ctx context.Context) error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// openDatabase opens and migrates the configured database. It returns a nil
// database when persistence is disabled.
func openDatabase() (*sql.DB, error) {
	if cfg.DBPath == "" {
		return nil, nil
	}
	// 初始化数据库
	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return nil, err
	}
	if err := database.NewMigrationManager(db, logger).RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// newEnrichService wires the enricher to the database when one is configured.
func newEnrichService(db *sql.DB) *service.EnrichService {
	if db == nil {
		return service.NewEnrichService(logger, nil, nil)
	}
	return service.NewEnrichService(logger,
		repository.NewRunRepository(db),
		repository.NewCollisionRepository(db, cfg.BatchSize),
	)
}
