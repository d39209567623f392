package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"

	"gorm.io/gorm"
)

// ErrUnexpectedParameter aborts a whole upload: a row carries a parameter
// the template never declared, which indicates a template/list mismatch
// affecting every row, not a bad row.
var ErrUnexpectedParameter = errors.New("unexpected parameter not declared by template")

// ContactRegistry is the resolver's view of the global contact registry
type ContactRegistry interface {
	FindByIdentity(contactCode, firstName, lastName string) (*models.Contact, error)
}

// ConsentChecker consults the externally owned consent store
type ConsentChecker interface {
	IsOptedOut(phoneNumber string) (bool, error)
}

// RecipientResolver validates raw upload rows against the contact registry
// and a template's declared parameter set.
type RecipientResolver struct {
	registry ContactRegistry
	consent  ConsentChecker
}

func NewRecipientResolver(registry ContactRegistry, consent ConsentChecker) *RecipientResolver {
	return &RecipientResolver{
		registry: registry,
		consent:  consent,
	}
}

// Resolve validates rows in insertion order and returns the accepted
// entries (which become the canonical dispatch order) plus every rejected
// row with its reason. Rows are never silently dropped. An undeclared
// parameter anywhere in the upload fails the whole upload with
// ErrUnexpectedParameter.
func (r *RecipientResolver) Resolve(template *models.Template, rows []models.RawRecipientRow) ([]models.RecipientEntry, []models.RejectionReason, error) {
	declared := make(map[string]bool, len(template.Parameters))
	for _, name := range template.Parameters {
		declared[name] = true
	}

	// Upload-level structural check first: extra columns are a template
	// mismatch, not a per-row problem.
	for i, row := range rows {
		for name := range row.ParameterValues {
			if !declared[name] {
				return nil, nil, fmt.Errorf("%w: %q (row %d)", ErrUnexpectedParameter, name, i)
			}
		}
	}

	var (
		entries  []models.RecipientEntry
		rejected []models.RejectionReason
		seen     = make(map[string]bool)
	)

	for i, row := range rows {
		contact, err := r.registry.FindByIdentity(row.ContactCode, row.FirstName, row.LastName)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rejected = append(rejected, models.RejectionReason{
				Row:         i,
				ContactCode: row.ContactCode,
				Code:        models.RejectionContactNotFound,
				Detail:      "no registry contact matches (contact_code, first_name, last_name)",
			})
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("contact registry lookup failed: %w", err)
		}

		// Duplicates keep the first occurrence only
		key := strings.ToLower(contact.ID)
		if seen[key] {
			rejected = append(rejected, models.RejectionReason{
				Row:         i,
				ContactCode: row.ContactCode,
				Code:        models.RejectionDuplicateRecipient,
				Detail:      "contact already present earlier in this list",
			})
			continue
		}

		phone := strings.TrimSpace(contact.PhoneNumber)
		if !validPhone(phone) {
			rejected = append(rejected, models.RejectionReason{
				Row:         i,
				ContactCode: row.ContactCode,
				Code:        models.RejectionInvalidPhone,
				Detail:      fmt.Sprintf("registry phone %q is not E.164", contact.PhoneNumber),
			})
			continue
		}

		optedOut, err := r.consent.IsOptedOut(phone)
		if err != nil {
			return nil, nil, fmt.Errorf("consent lookup failed: %w", err)
		}
		if optedOut {
			// Opt-outs must be excluded before dispatch, not failed after
			rejected = append(rejected, models.RejectionReason{
				Row:         i,
				ContactCode: row.ContactCode,
				Code:        models.RejectionOptedOut,
				Detail:      "recipient has an active opt-out",
			})
			continue
		}

		if reason, ok := missingParameter(template.Parameters, row.ParameterValues); !ok {
			rejected = append(rejected, models.RejectionReason{
				Row:         i,
				ContactCode: row.ContactCode,
				Code:        models.RejectionMissingParameter,
				Detail:      reason,
			})
			continue
		}

		seen[key] = true
		entries = append(entries, models.RecipientEntry{
			ContactID:       contact.ID,
			ContactCode:     contact.ContactCode,
			FirstName:       contact.FirstName,
			LastName:        contact.LastName,
			PhoneNumber:     phone,
			GroupID:         contact.GroupID,
			ParameterValues: models.JSON(row.ParameterValues),
			Position:        len(entries),
		})
	}

	return entries, rejected, nil
}

// missingParameter checks that every declared parameter has a non-empty
// value; ok is false when one is missing.
func missingParameter(declared models.StringSlice, values map[string]string) (string, bool) {
	for _, name := range declared {
		if strings.TrimSpace(values[name]) == "" {
			return fmt.Sprintf("parameter %q is missing or empty", name), false
		}
	}
	return "", true
}

// validPhone accepts E.164-shaped numbers: leading + and 8 to 15 digits
func validPhone(phone string) bool {
	if len(phone) < 9 || len(phone) > 16 || phone[0] != '+' {
		return false
	}
	for _, c := range phone[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
