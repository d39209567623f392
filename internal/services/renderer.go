package services

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {{name}} placeholders in template bodies
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// ScanTemplateParameters returns the declared parameter set of a template
// body, in first-occurrence order without duplicates.
func ScanTemplateParameters(body string) []string {
	seen := make(map[string]bool)
	var params []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			params = append(params, name)
		}
	}
	return params
}

// RenderTemplate substitutes parameter values into a template body. Every
// placeholder must resolve; the resolver guarantees this for validated
// recipients, so an unresolved placeholder here is an invariant violation
// and never silently reaches the provider as literal text.
func RenderTemplate(body string, parameterValues map[string]string) (string, error) {
	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(body, func(placeholder string) string {
		name := placeholderPattern.FindStringSubmatch(placeholder)[1]
		value, ok := parameterValues[name]
		if !ok || value == "" {
			missing = append(missing, name)
			return placeholder
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("template render error: unresolved placeholders: %s", strings.Join(missing, ", "))
	}
	return rendered, nil
}
