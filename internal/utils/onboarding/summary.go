package onboarding

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
)

var fieldPathPattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

// ValidateFieldID checks the "section.fieldName" format of a field id.
func ValidateFieldID(fieldID string) error {
	section, rest, found := strings.Cut(fieldID, ".")
	if !found || rest == "" {
		return fmt.Errorf("field id %q must have the form section.fieldName", fieldID)
	}
	if !contains(domain.Sections, section) {
		return fmt.Errorf("field id %q has unknown section %q", fieldID, section)
	}
	if !fieldPathPattern.MatchString(rest) {
		return fmt.Errorf("field id %q has an invalid field name", fieldID)
	}
	return nil
}

// LatestVerdicts keeps the last entry per field id. Entries must be ordered oldest first.
func LatestVerdicts(entries []domain.FieldValidation) map[string]domain.FieldValidation {
	latest := make(map[string]domain.FieldValidation, len(entries))
	for _, entry := range entries {
		latest[entry.FieldID] = entry
	}
	return latest
}

// Summarize aggregates the latest verdict of each registered field. Verdicts for ids
// that are not registered are ignored.
func Summarize(registered []string, entries []domain.FieldValidation) domain.ValidationSummary {
	latest := LatestVerdicts(entries)

	var summary domain.ValidationSummary
	seen := make(map[string]struct{}, len(registered))
	for _, fieldID := range registered {
		if _, dup := seen[fieldID]; dup {
			continue
		}
		seen[fieldID] = struct{}{}
		summary.TotalFields++

		verdict, ok := latest[fieldID]
		if !ok {
			continue
		}
		switch verdict.Status {
		case domain.VerdictOK:
			summary.ValidCount++
		case domain.VerdictWarning:
			summary.WarningCount++
		case domain.VerdictError:
			summary.ErrorCount++
		}
	}

	if summary.TotalFields > 0 {
		summary.ProgressPercent = int(math.Round(100 * float64(summary.ValidCount) / float64(summary.TotalFields)))
	}
	return summary
}

// FieldIDs lists the reviewable field ids present on a request.
func FieldIDs(req domain.OnboardingRequest) []string {
	var ids []string
	if req.PersonalInfo != nil {
		ids = append(ids, prefixed(domain.SectionPersonalInfo, jsonFieldNames(reflect.TypeOf(*req.PersonalInfo)))...)
	}
	if req.BusinessInfo != nil {
		ids = append(ids, prefixed(domain.SectionBusinessInfo, jsonFieldNames(reflect.TypeOf(*req.BusinessInfo)))...)
	}
	for i := range req.Shareholders {
		ids = append(ids, fmt.Sprintf("%s.%d", domain.SectionShareholders, i))
	}
	for _, category := range domain.DocumentCategories {
		if len(req.Documents.Refs(category)) > 0 {
			ids = append(ids, domain.SectionDocuments+"."+string(category))
		}
	}
	return ids
}

func prefixed(section string, names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = section + "." + name
	}
	return out
}

func jsonFieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		names = append(names, name)
	}
	return names
}
