package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

// In-memory stand-ins for the repository layer, shared across the service
// tests in this package.

type fakeRecordStore struct {
	mu      sync.Mutex
	nextID  int
	order   []string
	records map[string]*models.MessageRecord
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string]*models.MessageRecord)}
}

func (s *fakeRecordStore) CreateBatch(records []*models.MessageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		s.nextID++
		record.ID = fmt.Sprintf("rec-%d", s.nextID)
		record.CreatedAt = time.Now().UTC()
		clone := *record
		s.records[record.ID] = &clone
		s.order = append(s.order, record.ID)
	}
	return nil
}

func (s *fakeRecordStore) GetByCampaign(campaignID string) ([]*models.MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.MessageRecord
	for _, id := range s.order {
		if s.records[id].CampaignID == campaignID {
			clone := *s.records[id]
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeRecordStore) GetByProviderMessageID(providerMessageID string) (*models.MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.ProviderMessageID != nil && *record.ProviderMessageID == providerMessageID {
			clone := *record
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeRecordStore) CompareAndTransition(id string, from models.MessageState, updates map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return false, nil
	}
	if record.State != from {
		return false, nil
	}
	for column, value := range updates {
		switch column {
		case "state":
			record.State = value.(models.MessageState)
		case "provider_message_id":
			pid := value.(string)
			record.ProviderMessageID = &pid
		case "last_error_code":
			record.LastErrorCode = value.(*int)
		case "last_error_message":
			record.LastErrorMessage = value.(string)
		case "sent_at":
			ts := value.(time.Time)
			record.SentAt = &ts
		case "delivered_at":
			ts := value.(time.Time)
			record.DeliveredAt = &ts
		case "read_at":
			ts := value.(time.Time)
			record.ReadAt = &ts
		case "failed_at":
			ts := value.(time.Time)
			record.FailedAt = &ts
		case "last_updated":
			record.LastUpdated = value.(time.Time)
		default:
			return false, fmt.Errorf("unexpected update column %q", column)
		}
	}
	return true, nil
}

func (s *fakeRecordStore) CountByState(campaignID string) (map[models.MessageState]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.MessageState]int64)
	for _, record := range s.records {
		if record.CampaignID == campaignID {
			counts[record.State]++
		}
	}
	return counts, nil
}

func (s *fakeRecordStore) get(id string) *models.MessageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *s.records[id]
	return &clone
}

func (s *fakeRecordStore) seed(record *models.MessageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	if record.ID == "" {
		record.ID = fmt.Sprintf("rec-%d", s.nextID)
	}
	s.records[record.ID] = record
	s.order = append(s.order, record.ID)
}

type fakeCampaignStore struct {
	mu        sync.Mutex
	campaigns map[string]*models.Campaign
}

func newFakeCampaignStore() *fakeCampaignStore {
	return &fakeCampaignStore{campaigns: make(map[string]*models.Campaign)}
}

func (s *fakeCampaignStore) Create(campaign *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if campaign.ID == "" {
		campaign.ID = fmt.Sprintf("camp-%d", len(s.campaigns)+1)
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusDraft
	}
	clone := *campaign
	s.campaigns[campaign.ID] = &clone
	return nil
}

func (s *fakeCampaignStore) GetByID(id string) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *campaign
	return &clone, nil
}

func (s *fakeCampaignStore) GetAll(offset, limit int) ([]*models.Campaign, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Campaign
	for _, campaign := range s.campaigns {
		clone := *campaign
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (s *fakeCampaignStore) GetStatus(id string) (models.CampaignStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return campaign.Status, nil
}

func (s *fakeCampaignStore) TransitionStatus(id string, from, to models.CampaignStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return false, nil
	}
	if campaign.Status != from {
		return false, nil
	}
	campaign.Status = to
	return true, nil
}

type fakeListStore struct {
	lists map[string]*models.RecipientList
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{lists: make(map[string]*models.RecipientList)}
}

func (s *fakeListStore) GetByID(id string) (*models.RecipientList, error) {
	list, ok := s.lists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return list, nil
}

type fakeRegistry struct {
	contacts map[string]*models.Contact // keyed by contact code
}

func (r *fakeRegistry) FindByIdentity(contactCode, firstName, lastName string) (*models.Contact, error) {
	contact, ok := r.contacts[contactCode]
	if !ok || contact.FirstName != firstName || contact.LastName != lastName {
		return nil, gorm.ErrRecordNotFound
	}
	return contact, nil
}

type fakeConsent struct {
	optedOut map[string]bool
}

func (c *fakeConsent) IsOptedOut(phoneNumber string) (bool, error) {
	return c.optedOut[phoneNumber], nil
}

// fakeProvider scripts per-phone send outcomes. An outcome queue drains one
// result per attempt; the last outcome repeats.
type fakeProvider struct {
	mu          sync.Mutex
	outcomes    map[string][]error
	calls       map[string]int
	delay       time.Duration
	inFlight    int
	maxInFlight int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		outcomes: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

func (p *fakeProvider) failWith(phone string, errs ...error) {
	p.outcomes[phone] = errs
}

func (p *fakeProvider) Send(ctx context.Context, phoneNumber, body, mediaURL string) (string, error) {
	p.mu.Lock()
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	p.calls[phoneNumber]++
	attempt := p.calls[phoneNumber]
	queue := p.outcomes[phoneNumber]
	var err error
	if len(queue) > 0 {
		if attempt <= len(queue) {
			err = queue[attempt-1]
		} else {
			err = queue[len(queue)-1]
		}
	}
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()

	if err != nil {
		return "", err
	}
	return "wamid." + phoneNumber, nil
}

func (p *fakeProvider) callCount(phone string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[phone]
}

func (p *fakeProvider) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

type fakePublisher struct {
	jobs []models.DispatchJob
	err  error
}

func (p *fakePublisher) PublishDispatchJob(job models.DispatchJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

var errQueueDown = errors.New("broker unreachable")
