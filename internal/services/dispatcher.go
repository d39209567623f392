package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/boltspazor/MR-Dmak-sub002/internal/config"
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

// MessageRecordStore is the dispatcher's and status processor's view of
// message record persistence.
type MessageRecordStore interface {
	CreateBatch(records []*models.MessageRecord) error
	GetByCampaign(campaignID string) ([]*models.MessageRecord, error)
	GetByProviderMessageID(providerMessageID string) (*models.MessageRecord, error)
	CompareAndTransition(id string, from models.MessageState, updates map[string]interface{}) (bool, error)
	CountByState(campaignID string) (map[models.MessageState]int64, error)
}

// CampaignStore is the dispatcher's view of campaign persistence
type CampaignStore interface {
	GetByID(id string) (*models.Campaign, error)
	GetStatus(id string) (models.CampaignStatus, error)
	TransitionStatus(id string, from, to models.CampaignStatus) (bool, error)
}

// RecipientListStore loads validated recipient lists
type RecipientListStore interface {
	GetByID(id string) (*models.RecipientList, error)
}

// Dispatcher fans out one provider send per recipient with bounded
// concurrency. It exclusively creates message records and writes their
// synchronous send outcome; all later transitions belong to the status
// processor.
type Dispatcher struct {
	campaigns CampaignStore
	lists     RecipientListStore
	records   MessageRecordStore
	provider  ProviderClient
	cfg       *config.DispatchConfig
}

func NewDispatcher(
	campaigns CampaignStore,
	lists RecipientListStore,
	records MessageRecordStore,
	provider ProviderClient,
	cfg *config.DispatchConfig,
) *Dispatcher {
	return &Dispatcher{
		campaigns: campaigns,
		lists:     lists,
		records:   records,
		provider:  provider,
		cfg:       cfg,
	}
}

// Dispatch runs one campaign to its terminal dispatch outcome. Safe to call
// again for the same campaign (queue redelivery): existing records are
// reused and only still-queued recipients are sent.
func (d *Dispatcher) Dispatch(ctx context.Context, campaignID string) error {
	campaign, err := d.campaigns.GetByID(campaignID)
	if err != nil {
		return fmt.Errorf("failed to load campaign: %w", err)
	}
	if campaign.Status == models.CampaignStatusCancelled ||
		campaign.Status == models.CampaignStatusCompleted ||
		campaign.Status == models.CampaignStatusFailed {
		logrus.WithField("campaign_id", campaignID).Infof("Skipping dispatch, campaign is %s", campaign.Status)
		return nil
	}
	if campaign.Template == nil {
		return fmt.Errorf("campaign %s has no template loaded", campaignID)
	}

	list, err := d.lists.GetByID(campaign.RecipientListID)
	if err != nil {
		return fmt.Errorf("failed to load recipient list: %w", err)
	}
	paramsByEntry := make(map[string]map[string]string, len(list.Entries))
	for _, entry := range list.Entries {
		paramsByEntry[entry.ID] = entry.ParameterValues
	}

	records, err := d.ensureRecords(campaign, list)
	if err != nil {
		return err
	}

	var pending []*models.MessageRecord
	for _, record := range records {
		if record.State == models.MessageStateQueued {
			pending = append(pending, record)
		}
	}

	var sentCount, failedCount atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)
	for _, record := range pending {
		record := record
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					sentry.CurrentHub().Recover(r)
					logrus.WithField("record_id", record.ID).Errorf("Dispatch worker panicked: %v", r)
					failedCount.Add(1)
				}
			}()

			// Cancellation stops enqueuing new sends; in-flight sends and
			// already-sent messages are left alone.
			status, err := d.campaigns.GetStatus(campaignID)
			if err == nil && status == models.CampaignStatusCancelled {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}

			if d.sendOne(ctx, campaign, record, paramsByEntry[record.RecipientEntryID]) {
				sentCount.Add(1)
			} else {
				failedCount.Add(1)
			}
			// A single recipient failure never aborts the batch
			return nil
		})
	}
	_ = g.Wait()

	d.advanceCampaign(campaignID, sentCount.Load(), failedCount.Load(), int64(len(pending)))

	logrus.WithFields(logrus.Fields{
		"campaign_id": campaignID,
		"sent":        sentCount.Load(),
		"failed":      failedCount.Load(),
		"recipients":  len(pending),
	}).Info("Campaign dispatch finished")
	return nil
}

// ensureRecords creates one queued record per recipient before any network
// call, so progress queries never observe a missing recipient. On queue
// redelivery the existing records are returned instead.
func (d *Dispatcher) ensureRecords(campaign *models.Campaign, list *models.RecipientList) ([]*models.MessageRecord, error) {
	existing, err := d.records.GetByCampaign(campaign.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message records: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	records := make([]*models.MessageRecord, 0, len(list.Entries))
	for _, entry := range list.Entries {
		records = append(records, &models.MessageRecord{
			CampaignID:       campaign.ID,
			RecipientEntryID: entry.ID,
			ContactID:        entry.ContactID,
			PhoneNumber:      entry.PhoneNumber,
			State:            models.MessageStateQueued,
		})
	}
	if err := d.records.CreateBatch(records); err != nil {
		return nil, fmt.Errorf("failed to create message records: %w", err)
	}
	return d.records.GetByCampaign(campaign.ID)
}

// sendOne renders and sends a single recipient's message, retrying
// transient provider errors with exponential backoff, and writes the
// synchronous outcome. Reports whether the message was submitted.
func (d *Dispatcher) sendOne(ctx context.Context, campaign *models.Campaign, record *models.MessageRecord, params map[string]string) bool {
	body, err := RenderTemplate(campaign.Template.Body, params)
	if err != nil {
		// Invariant violation: resolution should have rejected this row
		sentry.CaptureException(err)
		logrus.WithField("record_id", record.ID).Errorf("Render failed: %v", err)
		d.markFailed(record, nil, err.Error())
		return false
	}

	var lastErr error
	backoff := d.cfg.BackoffBase
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		providerMessageID, err := d.provider.Send(ctx, record.PhoneNumber, body, campaign.Template.HeaderMediaURL)
		if err == nil {
			d.markSent(record, providerMessageID)
			return true
		}
		lastErr = err

		if !IsTransientProviderError(err) {
			break
		}
		if attempt == d.cfg.MaxAttempts {
			break
		}

		logrus.WithFields(logrus.Fields{
			"record_id": record.ID,
			"attempt":   attempt,
		}).Warnf("Transient provider error, retrying: %v", err)

		select {
		case <-ctx.Done():
			d.markFailed(record, nil, "dispatch cancelled: "+ctx.Err().Error())
			return false
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > d.cfg.BackoffCap {
			backoff = d.cfg.BackoffCap
		}
	}

	code, message := providerErrorDetail(lastErr)
	d.markFailed(record, code, message)
	return false
}

func (d *Dispatcher) markSent(record *models.MessageRecord, providerMessageID string) {
	now := time.Now().UTC()
	ok, err := d.records.CompareAndTransition(record.ID, models.MessageStateQueued, map[string]interface{}{
		"state":               models.MessageStateSent,
		"provider_message_id": providerMessageID,
		"sent_at":             now,
		"last_updated":        now,
	})
	if err != nil {
		logrus.WithField("record_id", record.ID).Errorf("Failed to mark record sent: %v", err)
		return
	}
	if !ok {
		logrus.WithField("record_id", record.ID).Warn("Record left queued state before send result was written")
	}
}

func (d *Dispatcher) markFailed(record *models.MessageRecord, code *int, message string) {
	now := time.Now().UTC()
	ok, err := d.records.CompareAndTransition(record.ID, models.MessageStateQueued, map[string]interface{}{
		"state":              models.MessageStateFailed,
		"last_error_code":    code,
		"last_error_message": message,
		"failed_at":          now,
		"last_updated":       now,
	})
	if err != nil {
		logrus.WithField("record_id", record.ID).Errorf("Failed to mark record failed: %v", err)
		return
	}
	if !ok {
		logrus.WithField("record_id", record.ID).Warn("Record left queued state before failure was written")
	}
}

// advanceCampaign moves the campaign lifecycle forward once every recipient
// has a terminal dispatch outcome: sending when anything was submitted,
// failed when nothing was. Completion is decided by the progress
// aggregator, never here.
func (d *Dispatcher) advanceCampaign(campaignID string, sent, failed, total int64) {
	if total > 0 && sent == 0 && failed == total {
		if _, err := d.campaigns.TransitionStatus(campaignID, models.CampaignStatusSending, models.CampaignStatusFailed); err != nil {
			logrus.WithField("campaign_id", campaignID).Errorf("Failed to mark campaign failed: %v", err)
		}
		return
	}
}

// providerErrorDetail extracts the provider's verbatim code/message when
// present; transport errors have no code.
func providerErrorDetail(err error) (*int, string) {
	if err == nil {
		return nil, ""
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		code := perr.Code
		return &code, perr.Message
	}
	return nil, err.Error()
}
