package models

import (
	"time"
)

// Contact represents a row in the global contact registry
type Contact struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ContactCode string    `json:"contact_code" gorm:"type:varchar(64);uniqueIndex;not null"`
	FirstName   string    `json:"first_name" gorm:"type:varchar(255);not null"`
	LastName    string    `json:"last_name" gorm:"type:varchar(255);not null"`
	PhoneNumber string    `json:"phone_number" gorm:"type:varchar(32);not null;index"`
	GroupID     *string   `json:"group_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Group *Group `json:"group,omitempty" gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for the Contact model
func (Contact) TableName() string {
	return "contacts"
}

// Group represents a named grouping of contacts
type Group struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Group model
func (Group) TableName() string {
	return "groups"
}

// ConsentRecord represents a phone-number-keyed opt-in/opt-out flag.
// The dispatch engine only consults this table; ownership lives with the
// consent management system.
type ConsentRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PhoneNumber string    `json:"phone_number" gorm:"type:varchar(32);uniqueIndex;not null"`
	OptedOut    bool      `json:"opted_out" gorm:"not null;default:false"`
	RecordedAt  time.Time `json:"recorded_at" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ConsentRecord model
func (ConsentRecord) TableName() string {
	return "consent_records"
}

// CreateContactRequest represents the request to register a contact
type CreateContactRequest struct {
	ContactCode string  `json:"contact_code" binding:"required" example:"MR-00042"`
	FirstName   string  `json:"first_name" binding:"required" example:"Asha"`
	LastName    string  `json:"last_name" binding:"required" example:"Patel"`
	PhoneNumber string  `json:"phone_number" binding:"required" example:"+919800000042"`
	GroupID     *string `json:"group_id,omitempty"`
}

// UpsertConsentRequest represents an opt-in/opt-out update for a phone number
type UpsertConsentRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required" example:"+919800000042"`
	OptedOut    bool   `json:"opted_out" example:"true"`
}
