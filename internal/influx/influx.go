package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/factionboard/missionstore/pkg/core"
)

// Bucket names used by the mission board.
const (
	BucketActivity = "mission_activity"
	BucketTotals   = "board_totals"
)

// DefaultBucketNames are the InfluxDB buckets the board writes to.
var DefaultBucketNames = []string{
	BucketActivity,
	BucketTotals,
}

// Manager owns the InfluxDB connection and the write APIs for the
// board's buckets.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	backupFile *os.File
}

// NewManager creates a manager with the default bucket set. Call
// Connect before recording anything.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// Connect establishes a connection to InfluxDB. When the server cannot be
// reached, points are appended to a gzipped line-protocol backup file
// instead so activity is not lost while the server is down.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	url := fmt.Sprintf("%s://%s:%s",
		viper.GetString("influx.protocol"),
		viper.GetString("influx.host"),
		viper.GetString("influx.port"),
	)
	m.Client = influxdb2.NewClientWithOptions(url, viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000))

	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		m.IsValid = false
		if err := m.openBackup(); err != nil {
			return err
		}
		m.Logger.Warn().Str("url", url).Str("backupPath", m.BackupPath).
			Msg("InfluxDB unreachable, recording activity to backup file")
		return nil
	}

	m.IsValid = true
	if err := m.ensureOrgAndBuckets(); err != nil {
		return err
	}
	m.createWriters()
	m.Logger.Info().Str("url", url).Msg("InfluxDB connection established")
	return nil
}

// openBackup prepares the gzip stream the manager falls back to while the
// server is unreachable. Repeated calls reuse the open stream.
func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

// ensureOrgAndBuckets creates the organization and the board's buckets on
// first contact. Buckets keep 90 days of activity.
func (m *Manager) ensureOrgAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	org, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Creating missing organization")
		org, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			return fmt.Errorf("failed to create organization %q: %w", orgName, err)
		}
	}

	for _, bucket := range m.BucketNames {
		if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
			continue
		}
		m.Logger.Info().Str("bucket", bucket).Msg("Creating missing bucket")

		rule := domain.RetentionRuleTypeExpire
		_, err := m.Client.BucketsAPI().CreateBucketWithName(ctx, org, bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90, // 90 days
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
		}
	}

	return nil
}

// createWriters opens an async write API per bucket and drains each error
// channel into the log.
func (m *Manager) createWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		writer := m.Client.WriteAPI(orgName, bucket)
		m.Writers[bucket] = writer

		go func(bucket string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucket).
					Msg("Async write to InfluxDB failed")
			}
		}(bucket, writer.Errors())
	}
	m.Logger.Debug().Msg("Bucket writers ready")
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		writer, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("no writer registered for bucket %q", bucket)
		}
		writer.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Duration(1*time.Nanosecond))
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("failed to write to backup file: %w", err)
	}
	return nil
}

// RecordOperation writes one board operation to the activity bucket.
func (m *Manager) RecordOperation(ctx context.Context, op string, mission core.Mission) error {
	point := influxdb2_write.NewPointWithMeasurement("mission_ops").
		AddTag("op", op).
		AddTag("faction", mission.Faction).
		AddTag("status", string(mission.Status)).
		AddField("count", 1).
		SetTime(time.Now())

	return m.WritePoint(ctx, BucketActivity, point)
}

// RecordSnapshot writes the board totals after a save.
func (m *Manager) RecordSnapshot(ctx context.Context, doc *core.Document) error {
	byStatus := map[core.Status]int{}
	for _, mission := range doc.Missions {
		byStatus[mission.Status]++
	}

	point := influxdb2_write.NewPointWithMeasurement("board").
		AddField("missions", len(doc.Missions)).
		SetTime(time.Now())
	for _, status := range core.Statuses() {
		point.AddField(strings.ToLower(string(status)), byStatus[status])
	}

	return m.WritePoint(ctx, BucketTotals, point)
}

// Close flushes pending writes. The gzip backup stream in particular
// holds buffered data until it is closed.
func (m *Manager) Close() error {
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		if err := m.BackupWriter.Close(); err != nil {
			return fmt.Errorf("failed to close backup writer: %w", err)
		}
	}
	if m.backupFile != nil {
		return m.backupFile.Close()
	}
	return nil
}
