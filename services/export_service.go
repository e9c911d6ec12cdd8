package services

import (
	"bytes"
	"fmt"

	"StaffBox/models"
	"StaffBox/storage"
	"StaffBox/utils"

	"github.com/sirupsen/logrus"
)

// ExportService writes a backup record's snapshot document to artifact
// storage (local disk or an S3-compatible bucket) as gzip'd JSON.
type ExportService struct {
	store storage.Storage
}

func NewExportService(store storage.Storage) *ExportService {
	return &ExportService{store: store}
}

// Export gzips the snapshot and uploads it under a stable name derived
// from the record id. Returns the stored artifact path.
func (s *ExportService) Export(record *models.BackupRecord) (string, error) {
	if len(record.Document) == 0 {
		return "", fmt.Errorf("backup %s has no document to export", record.ID)
	}

	compressed, err := utils.GzipBytes(record.Document)
	if err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}

	name := fmt.Sprintf("backups/%s.json.gz", record.ID)
	path, err := s.store.Upload(bytes.NewReader(compressed), name)
	if err != nil {
		return "", fmt.Errorf("upload snapshot artifact: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"backup_id": record.ID,
		"artifact":  path,
		"raw_bytes": len(record.Document),
		"gz_bytes":  len(compressed),
	}).Info("Backup artifact exported")
	return path, nil
}
