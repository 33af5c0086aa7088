package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inventory-intake-backend/config"
	ingestion_services "inventory-intake-backend/ingestion/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Error report workbooks are kept for a day, long enough for the download
// link in the notification e-mail to stay valid.
const reportFileTTL = 24 * time.Hour

// CleanupExpiredFiles removes the file if it is older than the TTL
func CleanupExpiredFiles(filePath string, ttl time.Duration) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("error checking file: %v", err)
	}

	if time.Since(info.ModTime()) > ttl {
		if err := os.Remove(filePath); err != nil {
			return fmt.Errorf("error deleting expired file: %v", err)
		}
		config.Logger.Info("Deleted expired report file", zap.String("path", filePath))
	}
	return nil
}

// CleanupExpiredReports walks the report directory and removes workbooks past
// their TTL.
func CleanupExpiredReports() error {
	files, err := os.ReadDir(reportDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading files directory: %v", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		filePath := filepath.Join(reportDir, file.Name())
		if err := CleanupExpiredFiles(filePath, reportFileTTL); err != nil {
			config.Logger.Warn("Error cleaning up report file",
				zap.String("path", filePath),
				zap.Error(err),
			)
		}
	}

	return nil
}

// StartScheduledCleanup purges expired upload sessions every ten minutes and
// stale report workbooks daily at 1 AM. The returned cron is already started.
func StartScheduledCleanup(sessions *ingestion_services.SessionRegistry) *cron.Cron {
	c := cron.New()

	c.AddFunc("*/10 * * * *", func() {
		removed := sessions.PurgeExpired()
		if removed > 0 {
			config.Logger.Info("Purged expired upload sessions", zap.Int("count", removed))
		}
	})

	c.AddFunc("0 1 * * *", func() {
		if err := CleanupExpiredReports(); err != nil {
			config.Logger.Error("Scheduled report cleanup failed", zap.Error(err))
		}
	})

	c.Start()
	return c
}
