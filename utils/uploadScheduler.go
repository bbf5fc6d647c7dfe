package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"capacitaciones/models"
)

// StartOrphanSweeper schedules SweepOrphanUploads on spec. The caller stops
// the returned cron.
func StartOrphanSweeper(db *gorm.DB, dir, spec string, grace time.Duration, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := SweepOrphanUploads(db, dir, grace, time.Now())
		if err != nil {
			log.Error("orphan sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("orphan uploads removed", zap.Int("count", n))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info("orphan sweeper started", zap.String("spec", spec), zap.Duration("grace", grace))
	return c, nil
}

// SweepOrphanUploads deletes uploads older than grace that no training
// references. Uploads from a submit that failed after the upload phase end
// up here.
func SweepOrphanUploads(db *gorm.DB, dir string, grace time.Duration, now time.Time) (int, error) {
	var uploads []models.Upload
	if err := db.Where("created_at < ?", now.Add(-grace)).Find(&uploads).Error; err != nil {
		return 0, err
	}
	if len(uploads) == 0 {
		return 0, nil
	}

	var trainings []models.Training
	if err := db.Unscoped().Select("image", "modules").Find(&trainings).Error; err != nil {
		return 0, err
	}

	removed := 0
	for _, u := range uploads {
		if referenced(trainings, u.Filename) {
			continue
		}
		err := os.Remove(filepath.Join(dir, u.Filename))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		if err := db.Unscoped().Delete(&models.Upload{}, u.ID).Error; err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func referenced(trainings []models.Training, filename string) bool {
	for _, t := range trainings {
		if strings.Contains(t.Image, filename) || bytes.Contains(t.Modules, []byte(filename)) {
			return true
		}
	}
	return false
}
