package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pawsit/internal/config"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// BackupService snapshots the sqlite file holding bookings, reviews and
// message history. Snapshots land in StoragePath and are pruned after
// RetentionDays.
type BackupService struct {
	dbPath string
	config config.BackupConfig
	logger *zerolog.Logger
}

func NewBackupService(dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		dbPath: dbPath,
		config: cfg,
		logger: logger,
	}
}

func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("database backups disabled")
		return
	}

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		d, err := time.ParseDuration(s.config.Schedule)
		if err != nil {
			s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("unparseable backup schedule, falling back to 24h")
		} else {
			interval = d
		}
	}

	s.logger.Info().Dur("interval", interval).Str("dir", s.config.StoragePath).Msg("backup loop started")

	// First snapshot right away, the ticker covers the rest.
	if err := s.Snapshot(); err != nil {
		s.logger.Error().Err(err).Str("db", s.dbPath).Msg("startup snapshot failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Snapshot(); err != nil {
				s.logger.Error().Err(err).Str("db", s.dbPath).Msg("scheduled snapshot failed")
			}
			s.PruneExpired()
		}
	}
}

// Snapshot writes a point-in-time copy of the database. VACUUM INTO gives
// a consistent copy even while the API keeps writing; a plain file copy is
// the fallback when the driver rejects it.
func (s *BackupService) Snapshot() error {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("pawsit_%s.db", time.Now().Format("20060102_150405"))
	dest := filepath.Join(s.config.StoragePath, name)

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("open source database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		s.logger.Warn().Err(err).Str("dest", dest).Msg("VACUUM INTO failed, copying file instead")
		if err := s.copyFile(dest); err != nil {
			return err
		}
	}

	s.logger.Info().Str("dest", dest).Msg("database snapshot written")
	return nil
}

// copyFile is not transactional; a write racing the copy can corrupt the
// snapshot. VACUUM INTO is always preferred.
func (s *BackupService) copyFile(dest string) error {
	src, err := os.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// PruneExpired removes snapshots older than the retention window. Files
// without the pawsit_ prefix are left alone.
func (s *BackupService) PruneExpired() {
	if s.config.RetentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Str("dir", s.config.StoragePath).Msg("read backup dir for pruning")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "pawsit_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", entry.Name()).Msg("pruning expired snapshot")
			os.Remove(filepath.Join(s.config.StoragePath, entry.Name()))
		}
	}
}
