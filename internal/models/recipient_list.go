package models

import (
	"time"
)

// RecipientList represents a named, validated recipient collection.
// Lists are immutable after creation; edits require a new list.
type RecipientList struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null"`
	TemplateID string    `json:"template_id" gorm:"type:uuid;not null;index"`
	Version    int       `json:"version" gorm:"not null;default:1"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Template *Template        `json:"template,omitempty" gorm:"foreignKey:TemplateID;references:ID"`
	Entries  []RecipientEntry `json:"entries,omitempty" gorm:"foreignKey:RecipientListID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the RecipientList model
func (RecipientList) TableName() string {
	return "recipient_lists"
}

// RecipientEntry represents one validated recipient within a list.
// Position preserves the insertion order of the upload, which is the
// canonical processing order for dispatch.
type RecipientEntry struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RecipientListID string    `json:"recipient_list_id" gorm:"type:uuid;not null;index"`
	ContactID       string    `json:"contact_id" gorm:"type:uuid;not null"`
	ContactCode     string    `json:"contact_code" gorm:"type:varchar(64);not null"`
	FirstName       string    `json:"first_name" gorm:"type:varchar(255);not null"`
	LastName        string    `json:"last_name" gorm:"type:varchar(255);not null"`
	PhoneNumber     string    `json:"phone_number" gorm:"type:varchar(32);not null"`
	GroupID         *string   `json:"group_id,omitempty" gorm:"type:uuid"`
	ParameterValues JSON      `json:"parameter_values" gorm:"type:jsonb"`
	Position        int       `json:"position" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for the RecipientEntry model
func (RecipientEntry) TableName() string {
	return "recipient_entries"
}

// RawRecipientRow is one row of an uploaded recipient list before
// validation against the contact registry. Upload/parsing mechanics live
// outside this service; rows arrive as JSON tuples.
type RawRecipientRow struct {
	ContactCode     string            `json:"contact_code" binding:"required" example:"MR-00042"`
	FirstName       string            `json:"first_name" binding:"required" example:"Asha"`
	LastName        string            `json:"last_name" binding:"required" example:"Patel"`
	ParameterValues map[string]string `json:"parameter_values"`
}

// RejectionCode classifies why a raw recipient row was rejected
type RejectionCode string

const (
	RejectionContactNotFound    RejectionCode = "CONTACT_NOT_FOUND"
	RejectionMissingParameter   RejectionCode = "MISSING_PARAMETER"
	RejectionDuplicateRecipient RejectionCode = "DUPLICATE_RECIPIENT"
	RejectionOptedOut           RejectionCode = "OPTED_OUT"
	RejectionInvalidPhone       RejectionCode = "INVALID_PHONE"
)

// RejectionReason describes one rejected upload row. Row is the zero-based
// index of the row in the original upload.
type RejectionReason struct {
	Row         int           `json:"row"`
	ContactCode string        `json:"contact_code"`
	Code        RejectionCode `json:"code"`
	Detail      string        `json:"detail,omitempty"`
}

// CreateRecipientListRequest represents a recipient-list upload
type CreateRecipientListRequest struct {
	Name       string            `json:"name" binding:"required" example:"North region Q4"`
	TemplateID string            `json:"template_id" binding:"required"`
	Rows       []RawRecipientRow `json:"rows" binding:"required"`
}

// CreateRecipientListResponse returns the stored list plus every rejected
// row; rejections are reported, never silently dropped.
type CreateRecipientListResponse struct {
	List     *RecipientList    `json:"list"`
	Accepted int               `json:"accepted"`
	Rejected []RejectionReason `json:"rejected"`
}
