package services

import (
	"reflect"
	"strings"
	"testing"
)

func TestScanTemplateParameters(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "no placeholders",
			body: "Season's greetings to our partners.",
			want: nil,
		},
		{
			name: "first occurrence order",
			body: "Hello {{FirstName}}, your {{Product}} order ships {{Date}}.",
			want: []string{"FirstName", "Product", "Date"},
		},
		{
			name: "duplicates collapse",
			body: "{{FirstName}} {{FirstName}} {{Month}}",
			want: []string{"FirstName", "Month"},
		},
		{
			name: "whitespace inside braces",
			body: "Hi {{ FirstName }}!",
			want: []string{"FirstName"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanTemplateParameters(tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ScanTemplateParameters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	body := "Hello {{FirstName}}, see you in {{Month}}."

	rendered, err := RenderTemplate(body, map[string]string{
		"FirstName": "Asha",
		"Month":     "December",
	})
	if err != nil {
		t.Fatalf("RenderTemplate() error = %v", err)
	}
	if rendered != "Hello Asha, see you in December." {
		t.Errorf("RenderTemplate() = %q", rendered)
	}
}

func TestRenderTemplateUnresolvedPlaceholderFails(t *testing.T) {
	body := "Hello {{FirstName}}, see you in {{Month}}."

	_, err := RenderTemplate(body, map[string]string{"FirstName": "Asha"})
	if err == nil {
		t.Fatal("RenderTemplate() expected error for unresolved placeholder")
	}
	if !strings.Contains(err.Error(), "Month") {
		t.Errorf("error should name the missing placeholder, got %v", err)
	}
}

func TestRenderTemplateEmptyValueFails(t *testing.T) {
	_, err := RenderTemplate("Hi {{FirstName}}", map[string]string{"FirstName": ""})
	if err == nil {
		t.Fatal("RenderTemplate() expected error for empty value")
	}
}
