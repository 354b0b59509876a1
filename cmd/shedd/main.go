package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/trainshed/internal/oplog"
	"github.com/MarkoPoloResearchLab/trainshed/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/backup"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/catalog"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/collecting"
)

const (
	flagDatabaseURL      = "database-url"
	configKeyDatabaseURL = "database_url"
	defaultDatabaseURL   = "sqlite://trainshed.db"
)

type runtimeConfig struct {
	DatabaseURL string
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "shedd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "shedd",
		Short:         "Model railway collection store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
	}
	cmd.PersistentFlags().String(flagDatabaseURL, defaultDatabaseURL, "database connection string (sqlite path or postgres URL)")

	cmd.AddCommand(newMigrateCommand(cfg))
	cmd.AddCommand(newSummaryCommand(cfg))
	cmd.AddCommand(newManufacturersCommand(cfg))
	cmd.AddCommand(newExportCommand(cfg))
	cmd.AddCommand(newRestoreCommand(cfg))
	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv(configKeyDatabaseURL, "DATABASE_URL"); err != nil {
		return err
	}
	if err := viper.BindPFlag(configKeyDatabaseURL, cmd.Flags().Lookup(flagDatabaseURL)); err != nil {
		return err
	}

	cfg.DatabaseURL = viper.GetString(configKeyDatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	return nil
}

func newMigrateCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, gormDB, cleanup, err := openRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := gormstore.Migrate(ctx, gormDB); err != nil {
				return err
			}
			version, err := gormstore.CurrentSchemaVersion(ctx, gormDB)
			if err != nil {
				return err
			}
			logger.Info("schema up to date", zap.Int("version", version))
			return nil
		},
	}
}

func newSummaryCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the collection summary counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, gormDB, cleanup, err := openRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := gormstore.Migrate(ctx, gormDB); err != nil {
				return err
			}
			collectingService, err := collecting.NewService(
				gormstore.NewCollectingStore(gormDB),
				collecting.WithOperationLogger(oplog.NewCollectingLogger(logger)),
			)
			if err != nil {
				return err
			}
			collection, err := collectingService.Collection(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", collection.Name, collection.Currency)
			fmt.Fprintf(out, "locomotives:             %d\n", collection.Summary.Locomotives)
			fmt.Fprintf(out, "passenger cars:          %d\n", collection.Summary.PassengerCars)
			fmt.Fprintf(out, "freight cars:            %d\n", collection.Summary.FreightCars)
			fmt.Fprintf(out, "train sets:              %d\n", collection.Summary.TrainSets)
			fmt.Fprintf(out, "railcars:                %d\n", collection.Summary.Railcars)
			fmt.Fprintf(out, "electric multiple units: %d\n", collection.Summary.ElectricMultipleUnits)
			fmt.Fprintf(out, "total value:             %s\n", collection.Summary.TotalValue)
			return nil
		},
	}
}

func newManufacturersCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "manufacturers",
		Short: "List catalog manufacturers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, gormDB, cleanup, err := openRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := gormstore.Migrate(ctx, gormDB); err != nil {
				return err
			}
			catalogService, err := catalog.NewService(
				gormstore.NewCatalogStore(gormDB),
				catalog.WithOperationLogger(oplog.NewCatalogLogger(logger)),
			)
			if err != nil {
				return err
			}
			manufacturers, err := catalogService.ListManufacturers(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, manufacturer := range manufacturers {
				fmt.Fprintf(out, "%s\t%s\n", manufacturer.ID, manufacturer.Name)
			}
			return nil
		},
	}
}

func newExportCommand(cfg *runtimeConfig) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a full snapshot of the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, gormDB, cleanup, err := openRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := gormstore.Migrate(ctx, gormDB); err != nil {
				return err
			}
			backupService, err := newBackupService(gormDB)
			if err != nil {
				return err
			}
			document, err := backupService.Export(ctx)
			if err != nil {
				return err
			}
			if outputPath == "" || outputPath == "-" {
				_, err = cmd.OutOrStdout().Write(document)
				return err
			}
			if err := os.WriteFile(outputPath, document, 0o644); err != nil {
				return err
			}
			logger.Info("snapshot written", zap.String("path", outputPath), zap.Int("bytes", len(document)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "snapshot file path (default stdout)")
	return cmd
}

func newRestoreCommand(cfg *runtimeConfig) *cobra.Command {
	var inputPath string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the store contents with a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("snapshot file is required")
			}
			ctx := cmd.Context()
			logger, gormDB, cleanup, err := openRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := gormstore.Migrate(ctx, gormDB); err != nil {
				return err
			}
			document, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}
			backupService, err := newBackupService(gormDB)
			if err != nil {
				return err
			}
			if err := backupService.Restore(ctx, document); err != nil {
				return err
			}
			logger.Info("snapshot restored", zap.String("path", inputPath))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "snapshot file path")
	return cmd
}

func newBackupService(gormDB *gorm.DB) (*backup.Service, error) {
	return backup.NewService(gormstore.NewBackupStore(gormDB), unixClock())
}

func unixClock() func() int64 {
	return func() int64 { return time.Now().UTC().Unix() }
}

func openRuntime(ctx context.Context, cfg *runtimeConfig) (*zap.Logger, *gorm.DB, func(), error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger init: %w", err)
	}
	gormDB, closeDB, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, fmt.Errorf("database open: %w", err)
	}
	cleanup := func() {
		_ = closeDB()
		_ = logger.Sync()
	}
	return logger, gormDB, cleanup, nil
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, err
	}

	var db *gorm.DB
	gormConfig := &gorm.Config{TranslateError: true}
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormConfig)
	default:
		return nil, nil, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "trainshed.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return "sqlite", sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return "sqlite", sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	abs := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}
