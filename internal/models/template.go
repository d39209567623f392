package models

import (
	"time"
)

// Template represents a message template with {{name}} placeholders.
// Parameters holds the declared parameter set derived by scanning the body
// at creation time; a recipient row must supply exactly this set.
type Template struct {
	ID             string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name           string      `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Body           string      `json:"body" gorm:"type:text;not null"`
	Parameters     StringSlice `json:"parameters" gorm:"type:jsonb"`
	HeaderMediaURL string      `json:"header_media_url,omitempty" gorm:"type:text"`
	FooterText     string      `json:"footer_text,omitempty" gorm:"type:text"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Template model
func (Template) TableName() string {
	return "templates"
}

// CreateTemplateRequest represents the request to create a new template
type CreateTemplateRequest struct {
	Name           string `json:"name" binding:"required" example:"dec_promo"`
	Body           string `json:"body" binding:"required" example:"Hi {{first_name}}, your code is {{promo_code}}"`
	HeaderMediaURL string `json:"header_media_url" example:"https://cdn.example.com/banner.png"`
	FooterText     string `json:"footer_text" example:"Reply STOP to opt out"`
}
