// cmd/perilgen/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"

	"github.com/synthrisk/perilgen/internal/cache"
	"github.com/synthrisk/perilgen/internal/config"
	"github.com/synthrisk/perilgen/internal/database"
	"github.com/synthrisk/perilgen/internal/dispatcher"
	"github.com/synthrisk/perilgen/internal/influx"
	"github.com/synthrisk/perilgen/internal/logging"
	"github.com/synthrisk/perilgen/internal/monitor"
	intOtel "github.com/synthrisk/perilgen/internal/otel"
	"github.com/synthrisk/perilgen/internal/pipeline"
	"github.com/synthrisk/perilgen/internal/storage"
	"github.com/synthrisk/perilgen/internal/storage/gormstore"
	"github.com/synthrisk/perilgen/pkg/core"
)

const appName = "perilgen"

// set via ldflags at release build time
var (
	CurrentVersion string = "dev"
	BuildDate      string = "unknown"
)

// global variables
var (
	// logManager handles all slog-based logging
	logManager *logging.SlogManager

	// logger is the slog logger (convenience reference)
	logger *slog.Logger

	// zlog drives the zerolog-based managers: database, influx, dispatcher
	zlog zerolog.Logger

	// otelProvider hands out meters when OTel is enabled
	otelProvider *intOtel.Provider

	// dbManager owns the Postgres connection and the SQLite fallback. Nil for
	// commands that never touch the database.
	dbManager *database.Manager

	// influxManager is nil when InfluxDB is disabled; the pipeline and the
	// monitor skip metric mirroring then
	influxManager *influx.Manager

	// currentRun carries the active run's identity. The logging context
	// provider reads it so every record carries the run tag and ID once
	// StartRun has assigned one.
	currentRun = &core.Run{}

	SessionStartTime time.Time = time.Now()
)

func main() {
	args := os.Args[1:]

	// version needs no config or logging
	if len(args) > 0 && strings.EqualFold(args[0], "version") {
		fmt.Printf("%s %s (built %s)\n", appName, CurrentVersion, BuildDate)
		return
	}

	if err := config.Load("."); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := setupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Starting up", "version", CurrentVersion, "built", BuildDate)

	otelCfg := config.GetOTelConfig()
	otelProvider = intOtel.New(intOtel.Config{
		Enabled:     otelCfg.Enabled,
		ServiceName: otelCfg.ServiceName,
	})
	if otelProvider.Enabled() {
		logger.Info("OTel metrics enabled", "service", otelCfg.ServiceName)
	}

	if len(args) == 0 {
		printUsage()
		return
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "generate":
		tag := runTag()
		if len(args) > 1 {
			tag = args[1]
		}
		err = runGenerate(config.GetGeneratorConfig(), tag)
	case "demo":
		err = runGenerate(demoConfig(), fmt.Sprintf("demo_%s", SessionStartTime.Format("20060102_150405")))
	case "setupdb":
		err = setupDatabase()
	case "export":
		if len(args) < 2 {
			err = fmt.Errorf("export requires at least one run id")
		} else {
			err = exportRuns(args[1:])
		}
	case "upload":
		if len(args) < 2 {
			err = fmt.Errorf("upload requires an export file path")
		} else {
			err = uploadExport(args[1])
		}
	case "migratebackups":
		err = migrateBackups()
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", args[0])
	}

	if err != nil {
		logger.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("usage: %s <command> [args]\n\n", appName)
	fmt.Println("commands:")
	fmt.Println("  generate [tag]        run a full generation pass")
	fmt.Println("  demo                  run a small generation pass")
	fmt.Println("  setupdb               migrate the database schema")
	fmt.Println("  export <run id>...    export stored runs to gzipped JSON")
	fmt.Println("  upload <file>         upload an export to the ingest API")
	fmt.Println("  migratebackups        push local SQLite backups into Postgres")
	fmt.Println("  version               print version and exit")
}

// setupLogging opens the session log file and wires the slog and zerolog
// stacks to it. The console handler stays at info; the file honors the
// configured level.
func setupLogging() error {
	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs dir: %w", err)
		}
	}

	logFilePath := logging.LogFilePath(logsDir, appName, SessionStartTime)
	logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	extra := []slog.Handler{
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}
	if viper.GetBool("graylog.enabled") {
		gelfHandler, err := logging.NewGELFHandler(viper.GetString("graylog.address"), slog.LevelInfo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog unreachable, logging to console and file only: %v\n", err)
		} else {
			extra = append(extra, gelfHandler)
		}
	}

	logManager = logging.NewSlogManager()
	logManager.Setup(logFile, viper.GetString("logLevel"), runContext, extra...)
	logger = logManager.Logger()

	zlog = zerolog.New(zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339},
		logFile,
	)).With().Timestamp().Logger()

	return nil
}

// runContext attaches the active run to every log record once StartRun has
// assigned its ID.
func runContext() []slog.Attr {
	if currentRun.ID == 0 {
		return nil
	}
	return []slog.Attr{
		slog.String("runTag", currentRun.Tag),
		slog.Uint64("runId", uint64(currentRun.ID)),
	}
}

// runTag appends the session start to the configured prefix so repeated runs
// stay distinct.
func runTag() string {
	return fmt.Sprintf("%s_%s", viper.GetString("defaultTag"), SessionStartTime.Format("20060102_150405"))
}

// demoConfig shrinks the run so the demo finishes in seconds.
func demoConfig() config.GeneratorConfig {
	cfg := config.GetGeneratorConfig()
	cfg.StormEvents = 1
	cfg.FloodGauges = 5
	cfg.Properties = 10
	cfg.Timesteps = 12
	cfg.SimulationHours = 24
	return cfg
}

// initStorage creates whichever backend the config selects. The gorm backend
// needs a live database connection first; memory needs nothing.
func initStorage(portfolioCache *cache.PortfolioCache) (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	deps := gormstore.Dependencies{
		Portfolio:  portfolioCache,
		LogManager: logManager,
	}
	if storageCfg.Type == "gorm" {
		dbManager = database.NewManager(zlog)
		if err := dbManager.Connect(); err != nil {
			return nil, fmt.Errorf("database connect: %w", err)
		}
		deps.DB = dbManager.DB
	}

	backend, err := storage.NewBackend(storageCfg, deps)
	if err != nil {
		return nil, err
	}
	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("storage init: %w", err)
	}
	logger.Info("Storage backend ready", "type", storageCfg.Type)
	return backend, nil
}

// currentDB returns the live gorm handle, nil when no database is connected.
func currentDB() *gorm.DB {
	if dbManager == nil {
		return nil
	}
	return dbManager.DB
}

// runGenerate executes one full generation run: storage up, run started,
// pipeline through the dispatcher, monitor sampling alongside, then teardown
// in reverse order.
func runGenerate(genCfg config.GeneratorConfig, tag string) error {
	opts, err := pipeline.OptionsFromConfig(genCfg)
	if err != nil {
		return err
	}

	portfolioCache := cache.NewPortfolioCache()
	seriesCache := cache.NewSeriesCache()

	backend, err := initStorage(portfolioCache)
	if err != nil {
		return err
	}

	influxManager = influx.NewManager(zlog, filepath.Join(
		viper.GetString("logsDir"),
		fmt.Sprintf("influx_backup_%s.gz", SessionStartTime.Format("20060102_150405")),
	))
	if err := influxManager.Connect(); err != nil {
		logger.Info("InfluxDB not in use", "reason", err)
		influxManager = nil
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(zlog))
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}

	pipelineManager := pipeline.NewManager(pipeline.Dependencies{
		RunTag:     tag,
		Portfolio:  portfolioCache,
		Series:     seriesCache,
		LogManager: logManager,
		Influx:     influxManager,
	}, backend)
	pipelineManager.RegisterHandlers(d)

	*currentRun = core.Run{
		Tag:              tag,
		StartTime:        SessionStartTime.UTC(),
		Anchor:           opts.Anchor,
		NumSteps:         opts.Timesteps,
		SimulationHours:  opts.SimulationHours,
		GeneratorVersion: CurrentVersion,
	}
	if err := backend.StartRun(currentRun); err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	logger.Info("Run started")

	monitorService := monitor.NewService(monitor.Dependencies{
		DB:         currentDB(),
		LogManager: logManager,
		Dispatcher: d,
		Pipeline:   pipelineManager,
		Influx:     influxManager,
		Run:        currentRun,
		StatusDir:  viper.GetString("logsDir"),
		IsDatabaseValid: func() bool {
			return dbManager != nil && dbManager.IsValid
		},
	})
	if err := monitorService.Start(); err != nil {
		logger.Error("Failed to start run monitor", "error", err)
	}

	runErr := pipelineManager.Run(d, opts)

	monitorService.Stop()

	if err := backend.EndRun(); err != nil {
		logger.Error("Failed to end run", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	if _, err := monitorService.WriteSummary(); err != nil {
		logger.Error("Failed to write run summary", "error", err)
	}

	if up, ok := backend.(storage.Uploadable); ok && up.GetExportedFilePath() != "" {
		logger.Info("Run exported", "path", up.GetExportedFilePath())
	}

	// The SQLite fallback lives in memory; a run that used it gets dumped to
	// disk so migratebackups can recover it later.
	if dbManager != nil && dbManager.ShouldSaveLocal {
		dbManager.SqliteFilePath = filepath.Join(
			viper.GetString("logsDir"),
			fmt.Sprintf("%s_%s.db", appName, SessionStartTime.Format("20060102_150405")),
		)
		if err := dbManager.DumpMemoryToDisk(); err != nil {
			logger.Error("Failed to dump local database to disk", "error", err)
		} else {
			logger.Info("Local database saved", "path", dbManager.SqliteFilePath)
		}
	}

	if err := backend.Close(); err != nil {
		logger.Error("Failed to close storage backend", "error", err)
	}
	if influxManager != nil {
		influxManager.Close()
	}

	if runErr != nil {
		return runErr
	}

	counts := pipelineManager.Counts()
	recordMeter := otelProvider.Meter("github.com/synthrisk/perilgen/cmd/perilgen")
	if accepted, err := recordMeter.Int64Counter(
		"run.records.accepted",
		metric.WithDescription("Records accepted by the storage backend"),
	); err == nil {
		for table, count := range counts {
			accepted.Add(context.Background(), int64(count),
				metric.WithAttributes(attribute.String("table", table)))
		}
	}

	logger.Info("Run complete", "counts", counts)
	return nil
}

// setupDatabase connects and migrates the full schema. The gorm backend also
// migrates on Init, so this exists for preparing a database ahead of a run
// and for upgrading one in place.
func setupDatabase() error {
	dbManager = database.NewManager(zlog)
	if err := dbManager.Connect(); err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	if err := dbManager.Setup(); err != nil {
		return fmt.Errorf("database setup: %w", err)
	}
	logger.Info("Database schema ready")
	return nil
}
