package services

import (
	"context"
	"errors"
	"testing"

	"StaffBox/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDispatcher struct {
	delivered []string
	err       error
}

func (d *captureDispatcher) Deliver(ctx context.Context, record *models.BackupRecord,
	recipients []models.EmailRecipient) error {
	if d.err != nil {
		return d.err
	}
	for _, r := range recipients {
		d.delivered = append(d.delivered, r.Email)
	}
	return nil
}

func TestNotifyMarksRecordEmailed(t *testing.T) {
	registry := newFakeRegistry()
	dispatcher := &captureDispatcher{}
	service := NewDeliveryService(registry, dispatcher)

	record := &models.BackupRecord{ID: "r1", Status: models.StatusCompleted}
	require.NoError(t, registry.CreateRecord(record))
	require.NoError(t, registry.CreateRecipient(&models.EmailRecipient{Email: "ops@acme.io", Active: true}))
	require.NoError(t, registry.CreateRecipient(&models.EmailRecipient{Email: "old@acme.io", Active: false}))

	require.NoError(t, service.Notify(context.Background(), record))

	assert.Equal(t, []string{"ops@acme.io"}, dispatcher.delivered, "inactive recipients are skipped")
	stored, err := registry.FindRecord("r1")
	require.NoError(t, err)
	assert.True(t, stored.EmailSent)
	assert.NotNil(t, stored.EmailSentAt)
}

func TestNotifyWithoutRecipientsIsANoop(t *testing.T) {
	registry := newFakeRegistry()
	dispatcher := &captureDispatcher{}
	service := NewDeliveryService(registry, dispatcher)

	record := &models.BackupRecord{ID: "r1", Status: models.StatusCompleted}
	require.NoError(t, registry.CreateRecord(record))

	require.NoError(t, service.Notify(context.Background(), record))
	assert.Empty(t, dispatcher.delivered)

	stored, err := registry.FindRecord("r1")
	require.NoError(t, err)
	assert.False(t, stored.EmailSent)
}

func TestNotifyDispatcherFailureLeavesRecordUnmarked(t *testing.T) {
	registry := newFakeRegistry()
	dispatcher := &captureDispatcher{err: errors.New("smtp down")}
	service := NewDeliveryService(registry, dispatcher)

	record := &models.BackupRecord{ID: "r1", Status: models.StatusCompleted}
	require.NoError(t, registry.CreateRecord(record))
	require.NoError(t, registry.CreateRecipient(&models.EmailRecipient{Email: "ops@acme.io", Active: true}))

	err := service.Notify(context.Background(), record)
	assert.Error(t, err)

	stored, findErr := registry.FindRecord("r1")
	require.NoError(t, findErr)
	assert.False(t, stored.EmailSent)
}

func TestOperationGuard(t *testing.T) {
	guard := NewOperationGuard()

	require.NoError(t, guard.Acquire("acme", "capture"))
	err := guard.Acquire("acme", "restore")
	assert.ErrorIs(t, err, ErrTenantBusy)

	// Another tenant is unaffected.
	assert.NoError(t, guard.Acquire("globex", "restore"))

	guard.Release("acme")
	assert.NoError(t, guard.Acquire("acme", "restore"))
}
