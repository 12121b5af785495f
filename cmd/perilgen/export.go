// cmd/perilgen/export.go
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/synthrisk/perilgen/internal/api"
	"github.com/synthrisk/perilgen/internal/config"
	"github.com/synthrisk/perilgen/internal/database"
	"github.com/synthrisk/perilgen/internal/geo"
	"github.com/synthrisk/perilgen/internal/model"
	"github.com/synthrisk/perilgen/pkg/core"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// exportRuns reads stored runs back out of Postgres and writes each as a
// gzipped JSON file in the configured output directory, in the same shape
// the memory backend exports at the end of a run.
func exportRuns(runIDs []string) error {
	dbManager = database.NewManager(zlog)
	db, err := dbManager.GetPostgresDB()
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}

	outputDir := config.GetStorageConfig().Memory.OutputDir
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, rawID := range runIDs {
		runID, err := strconv.Atoi(rawID)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", rawID, err)
		}
		path, err := exportRun(db, uint(runID), outputDir)
		if err != nil {
			return fmt.Errorf("run %d: %w", runID, err)
		}
		logger.Info("Run exported", "run", runID, "path", path)
	}
	return nil
}

func exportRun(db *gorm.DB, runID uint, outputDir string) (string, error) {
	started := time.Now()

	var run model.Run
	if err := db.First(&run, runID).Error; err != nil {
		return "", fmt.Errorf("error getting run: %w", err)
	}

	export := map[string]any{
		"generatorVersion": run.GeneratorVersion,
		"tag":              run.Tag,
		"startTime":        run.StartTime.UTC().Format(timestampLayout),
		"anchor":           run.Anchor.UTC().Format(timestampLayout),
		"numSteps":         run.NumSteps,
		"simulationHours":  run.SimulationHours,
	}

	events := []model.StormEvent{}
	if err := db.Where("run_id = ?", runID).Order("event_id ASC").Find(&events).Error; err != nil {
		return "", fmt.Errorf("error getting storm events: %w", err)
	}
	allSeries := []model.SeriesRecord{}
	if err := db.Where("run_id = ?", runID).Order("lead_time ASC").Find(&allSeries).Error; err != nil {
		return "", fmt.Errorf("error getting series records: %w", err)
	}
	seriesByEvent := map[string][]model.SeriesRecord{}
	for _, rec := range allSeries {
		seriesByEvent[rec.EventID] = append(seriesByEvent[rec.EventID], rec)
	}

	eventExports := make([]map[string]any, 0, len(events))
	for _, event := range events {
		timeseries := make([]any, 0, len(seriesByEvent[event.EventID]))
		for _, rec := range seriesByEvent[event.EventID] {
			timeseries = append(timeseries, rec.Document)
		}
		eventExports = append(eventExports, map[string]any{
			"eventId":    event.EventID,
			"name":       event.Name,
			"type":       event.EventType,
			"startDate":  event.StartDate,
			"endDate":    event.EndDate,
			"timeseries": timeseries,
		})
	}
	export["stormEvents"] = eventExports

	gauges := []model.FloodGauge{}
	if err := db.Where("run_id = ?", runID).Order("gauge_id ASC").Find(&gauges).Error; err != nil {
		return "", fmt.Errorf("error getting flood gauges: %w", err)
	}
	allReadings := []model.GaugeReading{}
	if err := db.Where("run_id = ?", runID).Order("time ASC").Find(&allReadings).Error; err != nil {
		return "", fmt.Errorf("error getting gauge readings: %w", err)
	}
	readingsByGauge := map[string][]map[string]any{}
	for _, r := range allReadings {
		readingsByGauge[r.GaugeID] = append(readingsByGauge[r.GaugeID], map[string]any{
			"gaugeId":      r.GaugeID,
			"timestamp":    r.Time.UTC().Format(timestampLayout),
			"waterLevel":   r.WaterLevel,
			"alertLevel":   r.AlertLevel,
			"warningLevel": r.WarningLevel,
			"severeLevel":  r.SevereLevel,
			"alertStatus":  r.AlertStatus,
		})
	}

	gaugeExports := make([]map[string]any, 0, len(gauges))
	for _, gauge := range gauges {
		gaugeExports = append(gaugeExports, map[string]any{
			"gaugeId":  gauge.GaugeID,
			"document": gauge.Document,
			"readings": readingsByGauge[gauge.GaugeID],
		})
	}
	export["floodGauges"] = gaugeExports

	properties := []model.Property{}
	if err := db.Where("run_id = ?", runID).Order("id ASC").Find(&properties).Error; err != nil {
		return "", fmt.Errorf("error getting properties: %w", err)
	}
	propertyExports := make([]map[string]any, 0, len(properties))
	for _, p := range properties {
		// latitude and longitude are not columns; recover them from the
		// stored location
		lon, lat := geo.Point4326From3857(p.Location)
		propertyExports = append(propertyExports, map[string]any{
			"propertyId":    p.PropertyID,
			"address":       p.Address,
			"area":          p.Area,
			"postCode":      p.PostCode,
			"latitude":      lat,
			"longitude":     lon,
			"elevation":     p.Elevation,
			"propertyType":  p.PropertyType,
			"floorAreaSqm":  p.FloorAreaSqm,
			"propertyValue": p.PropertyValue,
		})
	}
	export["properties"] = propertyExports

	mortgages := []model.Mortgage{}
	if err := db.Where("run_id = ?", runID).Order("id ASC").Find(&mortgages).Error; err != nil {
		return "", fmt.Errorf("error getting mortgages: %w", err)
	}
	mortgageExports := make([]map[string]any, 0, len(mortgages))
	for _, m := range mortgages {
		mortgageExports = append(mortgageExports, map[string]any{
			"mortgageId":     m.MortgageID,
			"propertyId":     m.PropertyID,
			"loanAmount":     m.LoanAmount,
			"ltvRatio":       m.LTVRatio,
			"interestRate":   m.InterestRate,
			"termMonths":     m.TermMonths,
			"monthlyPayment": m.MonthlyPayment,
			"rateType":       m.RateType,
		})
	}
	export["mortgages"] = mortgageExports

	logger.Info("Collected run data",
		"run", runID,
		"events", len(events),
		"readings", len(allReadings),
		"duration", time.Since(started),
	)

	exportJSON, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("error marshaling export: %w", err)
	}

	tag := strings.ReplaceAll(run.Tag, " ", "_")
	tag = strings.ReplaceAll(tag, ":", "_")
	fileName := fmt.Sprintf("%s_%s.json.gz", tag, run.StartTime.Format("20060102_150405"))
	outputPath := filepath.Join(outputDir, fileName)

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("error creating export file: %w", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(exportJSON); err != nil {
		f.Close()
		return "", fmt.Errorf("error writing export: %w", err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("error finishing export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("error closing export file: %w", err)
	}

	return outputPath, nil
}

// readExportMetadata decodes the run-level fields from an export file so the
// upload form matches what the file contains.
func readExportMetadata(path string) (core.UploadMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.UploadMetadata{}, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return core.UploadMetadata{}, fmt.Errorf("not a gzip file: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	var header struct {
		Tag             string `json:"tag"`
		Anchor          string `json:"anchor"`
		NumSteps        int    `json:"numSteps"`
		SimulationHours int    `json:"simulationHours"`
	}
	if err := json.NewDecoder(reader).Decode(&header); err != nil {
		return core.UploadMetadata{}, fmt.Errorf("failed to decode export: %w", err)
	}

	return core.UploadMetadata{
		Tag:             header.Tag,
		Anchor:          header.Anchor,
		NumSteps:        header.NumSteps,
		SimulationHours: header.SimulationHours,
	}, nil
}

// uploadExport pushes one export file to the risk platform ingest API.
func uploadExport(path string) error {
	meta, err := readExportMetadata(path)
	if err != nil {
		return err
	}

	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		return fmt.Errorf("ingest API unreachable: %w", err)
	}
	if err := client.Upload(path, meta); err != nil {
		return err
	}
	logger.Info("Upload complete", "file", filepath.Base(path), "tag", meta.Tag)
	return nil
}

// migrateBackups pushes runs dumped to local SQLite back into Postgres. Rows
// keep their original ids so run references stay intact; a backup whose rows
// already exist in Postgres is skipped rather than renumbered.
func migrateBackups() error {
	logsDir := viper.GetString("logsDir")
	backupPaths, err := database.GetBackupDBPaths(logsDir)
	if err != nil {
		return fmt.Errorf("error listing backups: %w", err)
	}
	if len(backupPaths) == 0 {
		logger.Info("No local database backups found", "dir", logsDir)
		return nil
	}

	dbManager = database.NewManager(zlog)
	pg, err := dbManager.GetPostgresDB()
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	dbManager.DB = pg
	if err := dbManager.Setup(); err != nil {
		return fmt.Errorf("postgres setup: %w", err)
	}

	migrated := make([]string, 0, len(backupPaths))
	for _, backupPath := range backupPaths {
		logger.Info("Migrating backup", "path", backupPath)

		src, err := database.GetSqliteDBStandalone(backupPath)
		if err != nil {
			return fmt.Errorf("error opening %s: %w", backupPath, err)
		}

		err = pg.Transaction(func(tx *gorm.DB) error {
			// parents before children so foreign keys resolve
			if err := migrateTable(src, tx, model.GeneratorInfo{}); err != nil {
				return err
			}
			if err := migrateTable(src, tx, model.Run{}); err != nil {
				return err
			}
			if err := migrateTable(src, tx, model.StormEvent{}); err != nil {
				return err
			}
			if err := migrateTable(src, tx, model.SeriesRecord{}); err != nil {
				return err
			}
			if err := migrateTable(src, tx, model.FloodGauge{}); err != nil {
				return err
			}
			if err := migrateTable(src, tx, model.GaugeReading{}); err != nil {
				return err
			}
			if err := migrateTable(src, tx, model.Property{}); err != nil {
				return err
			}
			if err := migrateTable(src, tx, model.Mortgage{}); err != nil {
				return err
			}
			return migrateTable(src, tx, model.RunPerformance{})
		})
		if err != nil {
			return fmt.Errorf("error migrating %s: %w", backupPath, err)
		}

		if sqlConn, err := src.DB(); err == nil {
			sqlConn.Close()
		}
		if err := os.Rename(backupPath, backupPath+".migrated"); err != nil {
			logger.Error("Failed to rename migrated backup", "path", backupPath, "error", err)
			continue
		}
		migrated = append(migrated, backupPath)
	}

	logger.Info("Migrated local backups into Postgres", "count", len(migrated))
	return nil
}

// migrateTable copies every live row of one table between databases. Inserts
// go through the raw column maps, so ids survive and conflicting rows are
// left alone.
func migrateTable[M any](src, dst *gorm.DB, tableModel M) error {
	rows := []map[string]any{}
	if err := src.Model(&tableModel).Find(&rows).Error; err != nil {
		return fmt.Errorf("error reading %T rows: %w", tableModel, err)
	}
	if len(rows) == 0 {
		return nil
	}

	logger.Info("Migrating records", "count", len(rows), "table", fmt.Sprintf("%T", tableModel))
	if err := dst.Model(&tableModel).Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error; err != nil {
		return fmt.Errorf("error inserting %T rows: %w", tableModel, err)
	}
	return nil
}
