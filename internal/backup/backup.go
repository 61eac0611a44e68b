// Package backup ships compressed snapshots of the sqlite database to
// S3-compatible storage on a cron schedule.
package backup

import (
	"compress/gzip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3            S3Config
	DBPath        string
	Schedule      string // cron expression; empty means manual backups only
	Prefix        string // object key prefix, default "backups"
	RetentionDays int    // snapshots older than this are pruned; 0 keeps all
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastKey    string     `json:"last_key,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

const keyTimeFormat = "2006-01-02T150405Z"

// Manager manages scheduled database snapshots to S3-compatible storage.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback

	db     *sql.DB
	client s3Client
	logger *slog.Logger

	cron *cron.Cron
}

// NewManager creates a backup manager. Without complete S3 credentials it
// stays disabled and Start is a no-op.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger, callback StatusCallback) *Manager {
	if cfg.Prefix == "" {
		cfg.Prefix = "backups"
	}
	m := &Manager{
		cfg:      cfg,
		db:       db,
		logger:   logger,
		callback: callback,
		status:   Status{State: StateDisabled},
	}

	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start schedules recurring backups. Disabled managers and managers without
// a schedule do nothing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.State == StateDisabled || m.cfg.Schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(m.cfg.Schedule, func() {
		if _, err := m.RunNow(ctx); err != nil {
			m.logger.Error("scheduled backup", "error", err)
		}
		if err := m.Cleanup(ctx); err != nil {
			m.logger.Error("backup cleanup", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse backup schedule %q: %w", m.cfg.Schedule, err)
	}

	c.Start()
	m.cron = c
	return nil
}

// Stop halts the schedule and waits for a running backup job to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// RunNow takes one snapshot and uploads it, returning the object key.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return "", fmt.Errorf("backup not configured: S3 credentials missing")
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	key, err := m.snapshot(ctx, client, cfg)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", err
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now, LastKey: key})
	m.logger.Info("backup uploaded", "key", key)
	return key, nil
}

func (m *Manager) snapshot(ctx context.Context, client s3Client, cfg Config) (string, error) {
	stamp := time.Now().UTC().Format(keyTimeFormat)
	key := path.Join(cfg.Prefix, fmt.Sprintf("backup-%s.db.gz", stamp))

	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("shadowcal-backup-%s.db", stamp))
	defer os.Remove(tmp)

	// VACUUM INTO produces a consistent single-file copy without blocking
	// writers the way a plain file copy under WAL would.
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", tmp); err != nil {
		return "", fmt.Errorf("vacuum into: %w", err)
	}

	gz := tmp + ".gz"
	defer os.Remove(gz)
	if err := gzipFile(tmp, gz); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}

	f, err := os.Open(gz)
	if err != nil {
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat snapshot: %w", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return key, nil
}

// Cleanup prunes snapshots older than the retention period. Keys that do not
// parse as snapshot names are left alone.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil || cfg.RetentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.RetentionDays)

	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.S3.Bucket),
		Prefix: aws.String(cfg.Prefix + "/"),
	})
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		taken, ok := snapshotTime(key)
		if !ok || !taken.Before(cutoff) {
			continue
		}
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.S3.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete expired backup", "key", key, "error", err)
		}
	}
	return nil
}

// snapshotTime parses the timestamp out of a snapshot object key.
func snapshotTime(key string) (time.Time, bool) {
	name := path.Base(key)
	name = strings.TrimPrefix(name, "backup-")
	name = strings.TrimSuffix(name, ".db.gz")
	t, err := time.Parse(keyTimeFormat, name)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return out.Close()
}
