package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/synthrisk/perilgen/pkg/core"
)

// DefaultBucketNames are the default InfluxDB buckets used by the generator.
var DefaultBucketNames = []string{
	"gauge_readings",
	"storm_track",
	"generator_performance",
}

// Indexes into BucketNames.
const (
	bucketGaugeReadings = iota
	bucketStormTrack
	bucketPerformance
)

// timestampLayout matches generated reading timestamps.
const timestampLayout = "2006-01-02T15:04:05Z"

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: bucketNames(),
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// bucketNames resolves configured bucket names, falling back to defaults.
func bucketNames() []string {
	names := []string{
		viper.GetString("influx.buckets.gaugeReadings"),
		viper.GetString("influx.buckets.stormTrack"),
		viper.GetString("influx.buckets.performance"),
	}
	for i, name := range names {
		if name == "" {
			names[i] = DefaultBucketNames[i]
		}
	}
	return names
}

// GaugeReadingsBucket returns the bucket water-level readings go to.
func (m *Manager) GaugeReadingsBucket() string { return m.BucketNames[bucketGaugeReadings] }

// StormTrackBucket returns the bucket storm positions go to.
func (m *Manager) StormTrackBucket() string { return m.BucketNames[bucketStormTrack] }

// PerformanceBucket returns the bucket run performance samples go to.
func (m *Manager) PerformanceBucket() string { return m.BucketNames[bucketPerformance] }

// Connect establishes a connection to InfluxDB.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influxdb.Enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(context.Background())

	if err != nil || !running {
		m.IsValid = false
		// create backup writer
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %v", err)
			}
			m.BackupWriter = gzip.NewWriter(file)
		}
	} else {
		m.IsValid = true
	}

	if m.IsValid {
		err = m.setupOrganizationAndBuckets()
		if err != nil {
			return err
		}
		m.CreateWriters()
		m.Logger.Info().Msg("InfluxDB client initialized")
	} else {
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
	}

	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	// ensure org exists
	_, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		_, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// get influxOrg
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		_, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket)
		if err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

			rule := domain.RetentionRuleTypeExpire
			_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: 60 * 60 * 24 * 90, // 90 days
			})
			if err != nil {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
				return err
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		m.Logger.Trace().Str("bucket", bucket).Msg("Creating InfluxDB writer")
		m.Writers[bucket] = m.Client.WriteAPI(orgName, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)

		m.Logger.Trace().Str("bucket", bucket).Msg("InfluxDB writer created")
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		if _, ok := m.Writers[bucket]; !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		m.Writers[bucket].WritePoint(point)
	} else {
		if m.BackupWriter == nil {
			return fmt.Errorf("influxDB client not initialized and backup writer not available")
		}

		lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Duration(1*time.Nanosecond))
		_, err := m.BackupWriter.Write([]byte(lineProtocol))
		if err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
		}
	}

	return nil
}

// Close flushes pending writes and releases the client and backup writer.
func (m *Manager) Close() {
	for _, writer := range m.Writers {
		writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		m.BackupWriter.Close()
	}
}

// GaugeReadingPoint converts one water-level reading to an InfluxDB point.
func GaugeReadingPoint(runTag string, reading core.GaugeReading) (*influxdb2_write.Point, error) {
	ts, err := time.Parse(timestampLayout, reading.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("gauge reading timestamp: %w", err)
	}

	point := influxdb2.NewPointWithMeasurement("water_level").
		AddTag("run", runTag).
		AddTag("gauge_id", reading.GaugeID).
		AddTag("alert_status", reading.AlertStatus).
		AddField("level", reading.WaterLevel).
		AddField("alert_level", reading.AlertLevel).
		AddField("warning_level", reading.WarningLevel).
		AddField("severe_level", reading.SevereLevel).
		SetTime(ts)
	return point, nil
}

// StormTrackPoint converts one interpolated storm position to an InfluxDB point.
func StormTrackPoint(eventID string, leadTime int, position core.TrackPoint, ts time.Time) *influxdb2_write.Point {
	return influxdb2.NewPointWithMeasurement("storm_position").
		AddTag("event_id", eventID).
		AddField("lead_time", leadTime).
		AddField("lat", position.Lat).
		AddField("lon", position.Lon).
		SetTime(ts)
}

// PerformancePoint reports buffer and write-queue depths at one instant.
func PerformancePoint(runTag string, buffers, writeQueues map[string]int, lastWriteMs float64, ts time.Time) *influxdb2_write.Point {
	point := influxdb2.NewPointWithMeasurement("generator_performance").
		AddTag("run", runTag).
		AddField("last_write_ms", lastWriteMs).
		SetTime(ts)
	for name, depth := range buffers {
		point.AddField("buffer_"+name, depth)
	}
	for name, depth := range writeQueues {
		point.AddField("writequeue_"+name, depth)
	}
	return point
}
