package services

import (
	"errors"
	"testing"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

func resolverFixture() (*RecipientResolver, *fakeConsent) {
	registry := &fakeRegistry{contacts: map[string]*models.Contact{
		"MR-001": {ID: "c-1", ContactCode: "MR-001", FirstName: "Asha", LastName: "Patel", PhoneNumber: "+919800000001"},
		"MR-002": {ID: "c-2", ContactCode: "MR-002", FirstName: "Ravi", LastName: "Shah", PhoneNumber: "+919800000002"},
		"MR-003": {ID: "c-3", ContactCode: "MR-003", FirstName: "Meera", LastName: "Iyer", PhoneNumber: "+919800000003"},
		"MR-BAD": {ID: "c-4", ContactCode: "MR-BAD", FirstName: "No", LastName: "Phone", PhoneNumber: "98-not-a-number"},
	}}
	consent := &fakeConsent{optedOut: make(map[string]bool)}
	return NewRecipientResolver(registry, consent), consent
}

func templateWith(params ...string) *models.Template {
	return &models.Template{
		ID:         "tpl-1",
		Name:       "promo",
		Body:       "Hello {{FirstName}}",
		Parameters: models.StringSlice(params),
	}
}

func row(code, first, last string, params map[string]string) models.RawRecipientRow {
	return models.RawRecipientRow{ContactCode: code, FirstName: first, LastName: last, ParameterValues: params}
}

func TestResolveRejectsUnknownContact(t *testing.T) {
	resolver, _ := resolverFixture()

	entries, rejected, err := resolver.Resolve(templateWith(), []models.RawRecipientRow{
		row("MR-001", "Asha", "Patel", nil),
		row("MR-404", "Ghost", "Row", nil),
		row("MR-002", "Ravi", "Shah", nil),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("accepted = %d, want 2", len(entries))
	}
	if entries[0].ContactID != "c-1" || entries[0].Position != 0 {
		t.Errorf("entry 0 = %s pos %d", entries[0].ContactID, entries[0].Position)
	}
	if entries[1].ContactID != "c-2" || entries[1].Position != 1 {
		t.Errorf("entry 1 = %s pos %d", entries[1].ContactID, entries[1].Position)
	}
	if len(rejected) != 1 {
		t.Fatalf("rejected = %d, want 1", len(rejected))
	}
	if rejected[0].Row != 1 || rejected[0].Code != models.RejectionContactNotFound {
		t.Errorf("rejection = %+v", rejected[0])
	}
}

func TestResolveUnexpectedParameterFailsWholeUpload(t *testing.T) {
	resolver, _ := resolverFixture()

	entries, rejected, err := resolver.Resolve(templateWith("FirstName"), []models.RawRecipientRow{
		row("MR-001", "Asha", "Patel", map[string]string{"FirstName": "Asha"}),
		row("MR-002", "Ravi", "Shah", map[string]string{"FirstName": "Ravi", "Surprise": "x"}),
	})
	if !errors.Is(err, ErrUnexpectedParameter) {
		t.Fatalf("Resolve() error = %v, want ErrUnexpectedParameter", err)
	}
	if entries != nil || rejected != nil {
		t.Error("a failed upload must not return partial results")
	}
}

func TestResolveMissingParameter(t *testing.T) {
	resolver, _ := resolverFixture()

	entries, rejected, err := resolver.Resolve(templateWith("FirstName", "Month"), []models.RawRecipientRow{
		row("MR-001", "Asha", "Patel", map[string]string{"FirstName": "Asha", "Month": "May"}),
		row("MR-002", "Ravi", "Shah", map[string]string{"FirstName": "Ravi"}),
		row("MR-003", "Meera", "Iyer", map[string]string{"FirstName": "Meera", "Month": "  "}),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("accepted = %d, want 1", len(entries))
	}
	if len(rejected) != 2 {
		t.Fatalf("rejected = %d, want 2", len(rejected))
	}
	for _, r := range rejected {
		if r.Code != models.RejectionMissingParameter {
			t.Errorf("rejection code = %s", r.Code)
		}
	}
}

func TestResolveDuplicateKeepsFirstOccurrence(t *testing.T) {
	resolver, _ := resolverFixture()

	entries, rejected, err := resolver.Resolve(templateWith(), []models.RawRecipientRow{
		row("MR-001", "Asha", "Patel", nil),
		row("MR-001", "Asha", "Patel", nil),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Position != 0 {
		t.Fatalf("accepted = %+v", entries)
	}
	if len(rejected) != 1 || rejected[0].Code != models.RejectionDuplicateRecipient || rejected[0].Row != 1 {
		t.Fatalf("rejected = %+v", rejected)
	}
}

func TestResolveOptedOutExcludedBeforeDispatch(t *testing.T) {
	resolver, consent := resolverFixture()
	consent.optedOut["+919800000002"] = true

	entries, rejected, err := resolver.Resolve(templateWith(), []models.RawRecipientRow{
		row("MR-001", "Asha", "Patel", nil),
		row("MR-002", "Ravi", "Shah", nil),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ContactID != "c-1" {
		t.Fatalf("accepted = %+v", entries)
	}
	if len(rejected) != 1 || rejected[0].Code != models.RejectionOptedOut {
		t.Fatalf("rejected = %+v", rejected)
	}
}

func TestResolveInvalidPhone(t *testing.T) {
	resolver, _ := resolverFixture()

	entries, rejected, err := resolver.Resolve(templateWith(), []models.RawRecipientRow{
		row("MR-BAD", "No", "Phone", nil),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("accepted = %+v", entries)
	}
	if len(rejected) != 1 || rejected[0].Code != models.RejectionInvalidPhone {
		t.Fatalf("rejected = %+v", rejected)
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+919800000001", true},
		{"+12025550123", true},
		{"919800000001", false},
		{"+91-98000", false},
		{"+1234567", false},
		{"+12345678901234567", false},
	}
	for _, tt := range tests {
		if got := validPhone(tt.phone); got != tt.want {
			t.Errorf("validPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}
