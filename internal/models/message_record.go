package models

import (
	"time"
)

// MessageState is the delivery state of one outbound message.
// States advance monotonically in progress order; FAILED is terminal and
// reachable from QUEUED or SENT only.
type MessageState string

const (
	MessageStateQueued    MessageState = "queued"
	MessageStateSent      MessageState = "sent"
	MessageStateDelivered MessageState = "delivered"
	MessageStateRead      MessageState = "read"
	MessageStateFailed    MessageState = "failed"
)

// ProgressOrder returns the position of a state on the delivery progress
// scale. FAILED sits outside the scale and returns -1.
func (s MessageState) ProgressOrder() int {
	switch s {
	case MessageStateQueued:
		return 0
	case MessageStateSent:
		return 1
	case MessageStateDelivered:
		return 2
	case MessageStateRead:
		return 3
	default:
		return -1
	}
}

// MessageRecord represents the per-(campaign, recipient) unit of dispatch
// and delivery tracking. The dispatcher exclusively creates records and
// writes the synchronous send outcome; the status processor exclusively
// transitions state afterwards.
type MessageRecord struct {
	ID                string       `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CampaignID        string       `json:"campaign_id" gorm:"type:uuid;not null;index:idx_message_records_campaign_id"`
	RecipientEntryID  string       `json:"recipient_entry_id" gorm:"type:uuid;not null"`
	ContactID         string       `json:"contact_id" gorm:"type:uuid;not null"`
	PhoneNumber       string       `json:"phone_number" gorm:"type:varchar(32);not null"`
	ProviderMessageID *string      `json:"provider_message_id,omitempty" gorm:"type:varchar(128)"`
	State             MessageState `json:"state" gorm:"type:varchar(16);not null;default:'queued';index"`
	LastErrorCode     *int         `json:"last_error_code,omitempty"`
	LastErrorMessage  string       `json:"last_error_message,omitempty" gorm:"type:text"`
	SentAt            *time.Time   `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time   `json:"delivered_at,omitempty"`
	ReadAt            *time.Time   `json:"read_at,omitempty"`
	FailedAt          *time.Time   `json:"failed_at,omitempty"`
	LastUpdated       time.Time    `json:"last_updated" gorm:"autoUpdateTime"`
	CreatedAt         time.Time    `json:"created_at"`
}

// TableName specifies the table name for the MessageRecord model
func (MessageRecord) TableName() string {
	return "message_records"
}

// StatusEventKind tags a parsed webhook status notification
type StatusEventKind string

const (
	StatusEventSent      StatusEventKind = "sent"
	StatusEventDelivered StatusEventKind = "delivered"
	StatusEventRead      StatusEventKind = "read"
	StatusEventFailed    StatusEventKind = "failed"
)

// State maps an event kind to the message state it requests
func (k StatusEventKind) State() MessageState {
	return MessageState(k)
}

// StatusEvent is a provider delivery-status notification parsed once at the
// webhook ingress. The state machine never touches raw payload shapes.
type StatusEvent struct {
	ProviderMessageID string          `json:"provider_message_id"`
	Kind              StatusEventKind `json:"kind"`
	Timestamp         time.Time       `json:"timestamp"`
	ErrorCode         *int            `json:"error_code,omitempty"`
	ErrorMessage      string          `json:"error_message,omitempty"`
}
