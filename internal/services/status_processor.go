package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

// StatusProcessor applies provider delivery-status events to message
// records. Accepted transitions are monotonically non-decreasing in
// progress order, with one guard: FAILED never overrides DELIVERED or READ.
// Under that rule the processor is idempotent and insensitive to webhook
// reordering and redelivery.
type StatusProcessor struct {
	records MessageRecordStore
}

func NewStatusProcessor(records MessageRecordStore) *StatusProcessor {
	return &StatusProcessor{records: records}
}

// Process applies one status event. Tolerated anomalies (unknown provider
// message id, stale or duplicate events) are logged and swallowed; callers
// should ack the webhook regardless.
func (p *StatusProcessor) Process(event models.StatusEvent) error {
	// The compare-and-transition guard can lose a race against a
	// concurrent event for the same record; re-reading and re-deciding is
	// always safe because accepted state only moves forward.
	for attempt := 0; attempt < 3; attempt++ {
		record, err := p.records.GetByProviderMessageID(event.ProviderMessageID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Expected under redelivery races where the send response has
			// not been persisted yet; the provider will redeliver.
			logrus.WithFields(logrus.Fields{
				"provider_message_id": event.ProviderMessageID,
				"kind":                event.Kind,
			}).Info("Status event for unknown message id ignored")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to resolve message record: %w", err)
		}

		updates, accept := decideTransition(record, event)
		if !accept {
			logrus.WithFields(logrus.Fields{
				"record_id": record.ID,
				"state":     record.State,
				"kind":      event.Kind,
			}).Debug("Stale status event ignored")
			return nil
		}

		ok, err := p.records.CompareAndTransition(record.ID, record.State, updates)
		if err != nil {
			return fmt.Errorf("failed to apply status transition: %w", err)
		}
		if ok {
			logrus.WithFields(logrus.Fields{
				"record_id": record.ID,
				"from":      record.State,
				"to":        event.Kind.State(),
			}).Debug("Status transition applied")
			return nil
		}
	}
	return fmt.Errorf("status transition for %s kept losing update races", event.ProviderMessageID)
}

// decideTransition evaluates the state-machine rules against the current
// record and returns the column updates when the event is accepted.
func decideTransition(record *models.MessageRecord, event models.StatusEvent) (map[string]interface{}, bool) {
	newState := event.Kind.State()
	now := time.Now().UTC()
	ts := event.Timestamp
	if ts.IsZero() {
		ts = now
	}

	if newState == models.MessageStateFailed {
		// A message that was delivered or read cannot retroactively fail;
		// "read" is stronger evidence than a stale failure callback.
		if record.State == models.MessageStateDelivered || record.State == models.MessageStateRead {
			return nil, false
		}
		if record.State == models.MessageStateFailed {
			return nil, false
		}
		updates := map[string]interface{}{
			"state":        models.MessageStateFailed,
			"failed_at":    ts,
			"last_updated": now,
		}
		if event.ErrorCode != nil {
			updates["last_error_code"] = event.ErrorCode
			updates["last_error_message"] = event.ErrorMessage
		}
		return updates, true
	}

	// Non-failure events must strictly advance progress order; equal or
	// lower order means a duplicate or reordered delivery.
	if record.State == models.MessageStateFailed {
		return nil, false
	}
	if newState.ProgressOrder() <= record.State.ProgressOrder() {
		return nil, false
	}

	updates := map[string]interface{}{
		"state":        newState,
		"last_updated": now,
	}
	switch newState {
	case models.MessageStateSent:
		updates["sent_at"] = ts
	case models.MessageStateDelivered:
		updates["delivered_at"] = ts
	case models.MessageStateRead:
		updates["read_at"] = ts
	}
	return updates, true
}
