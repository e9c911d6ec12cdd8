package services

import (
	"context"
	"time"

	"StaffBox/models"
	"StaffBox/repositories"

	"github.com/sirupsen/logrus"
)

// DeliveryDispatcher is the narrow contract the engine needs from an
// email provider. The provider's details live behind it.
type DeliveryDispatcher interface {
	Deliver(ctx context.Context, record *models.BackupRecord, recipients []models.EmailRecipient) error
}

// LogDispatcher is the default dispatcher used when no provider is
// configured. It only logs what would have been sent.
type LogDispatcher struct{}

func (LogDispatcher) Deliver(ctx context.Context, record *models.BackupRecord,
	recipients []models.EmailRecipient) error {
	logrus.WithFields(logrus.Fields{
		"backup_id":  record.ID,
		"recipients": len(recipients),
		"size_bytes": record.SizeBytes,
	}).Info("Backup delivery dispatched (log only)")
	return nil
}

// DeliveryService loads active recipients, hands the record to the
// dispatcher and marks the record as emailed.
type DeliveryService struct {
	registry   repositories.BackupRepository
	dispatcher DeliveryDispatcher
}

func NewDeliveryService(registry repositories.BackupRepository, dispatcher DeliveryDispatcher) *DeliveryService {
	if dispatcher == nil {
		dispatcher = LogDispatcher{}
	}
	return &DeliveryService{registry: registry, dispatcher: dispatcher}
}

func (s *DeliveryService) Notify(ctx context.Context, record *models.BackupRecord) error {
	recipients, err := s.registry.ListRecipients(true)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		logrus.Info("No active backup recipients, skipping delivery")
		return nil
	}
	if err := s.dispatcher.Deliver(ctx, record, recipients); err != nil {
		return err
	}
	return s.registry.MarkEmailSent(record.ID, time.Now().UTC())
}
