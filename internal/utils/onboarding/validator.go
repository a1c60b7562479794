package onboarding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Mode selects which rule set applies.
type Mode string

const (
	// ModeCreateOrUpdate accepts any non-empty subset of sections.
	ModeCreateOrUpdate Mode = "createOrUpdate"
	// ModeSubmit requires all four sections and the submission-time rules.
	ModeSubmit Mode = "submit"
)

var (
	siretPattern        = regexp.MustCompile(`^[0-9]{14}$`)
	industryCodePattern = regexp.MustCompile(`^[0-9]{4}[A-Z]$`)
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("siret", func(fl validator.FieldLevel) bool {
		return siretPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("industrycode", func(fl validator.FieldLevel) bool {
		return industryCodePattern.MatchString(fl.Field().String())
	})
	return v
}

// SectionsPayload carries raw section JSON exactly as received from a client.
type SectionsPayload struct {
	PersonalInfo json.RawMessage `json:"personalInfo,omitempty"`
	BusinessInfo json.RawMessage `json:"businessInfo,omitempty"`
	Shareholders json.RawMessage `json:"shareholders,omitempty"`
	Documents    json.RawMessage `json:"documents,omitempty"`
}

// ParsedSections holds the sections of a payload that were present and decoded.
type ParsedSections struct {
	PersonalInfo    *domain.PersonalInfo
	BusinessInfo    *domain.BusinessInfo
	Shareholders    []domain.Shareholder
	HasShareholders bool
	Documents       *domain.Documents
}

// Result is the outcome of a validation run.
type Result struct {
	Valid  bool                   `json:"valid"`
	Errors []apperrors.FieldError `json:"errors"`
}

func newResult(errs []apperrors.FieldError) Result {
	if errs == nil {
		errs = []apperrors.FieldError{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Err returns a *apperrors.ValidationError when the result is invalid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return apperrors.NewValidationError(r.Errors)
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ValidateSections decodes and validates raw sections. Each section is checked
// independently so a broken section never hides errors in another one.
func ValidateSections(mode Mode, payload SectionsPayload) (ParsedSections, Result) {
	var parsed ParsedSections
	var errs []apperrors.FieldError

	raws := map[string]json.RawMessage{
		domain.SectionPersonalInfo: payload.PersonalInfo,
		domain.SectionBusinessInfo: payload.BusinessInfo,
		domain.SectionShareholders: payload.Shareholders,
		domain.SectionDocuments:    payload.Documents,
	}

	count := 0
	for _, section := range domain.Sections {
		if present(raws[section]) {
			count++
			continue
		}
		if mode == ModeSubmit {
			errs = append(errs, apperrors.FieldError{Field: section, Message: "is required"})
		}
	}
	if mode == ModeCreateOrUpdate && count == 0 {
		return parsed, newResult([]apperrors.FieldError{{Message: "at least one section must be provided"}})
	}

	if present(payload.PersonalInfo) {
		var info domain.PersonalInfo
		if decodeErr := decodeStrict(domain.SectionPersonalInfo, payload.PersonalInfo, &info); decodeErr != nil {
			errs = append(errs, *decodeErr)
		} else {
			parsed.PersonalInfo = &info
			errs = append(errs, validatePersonalInfo(&info)...)
		}
	}

	if present(payload.BusinessInfo) {
		var info domain.BusinessInfo
		if decodeErr := decodeStrict(domain.SectionBusinessInfo, payload.BusinessInfo, &info); decodeErr != nil {
			errs = append(errs, *decodeErr)
		} else {
			parsed.BusinessInfo = &info
			errs = append(errs, validateBusinessInfo(&info)...)
		}
	}

	if present(payload.Shareholders) {
		list, decodeErrs := decodeShareholders(payload.Shareholders)
		if len(decodeErrs) > 0 {
			errs = append(errs, decodeErrs...)
		} else {
			parsed.Shareholders = list
			parsed.HasShareholders = true
			errs = append(errs, validateShareholders(list, mode)...)
		}
	}

	if present(payload.Documents) {
		var docs domain.Documents
		if decodeErr := decodeStrict(domain.SectionDocuments, payload.Documents, &docs); decodeErr != nil {
			errs = append(errs, *decodeErr)
		} else {
			parsed.Documents = &docs
			errs = append(errs, validateDocuments(docs, mode)...)
		}
	}

	return parsed, newResult(errs)
}

// ValidateRequest runs the submit rules against the sections stored on a request.
func ValidateRequest(req domain.OnboardingRequest) Result {
	var errs []apperrors.FieldError

	if req.PersonalInfo == nil {
		errs = append(errs, apperrors.FieldError{Field: domain.SectionPersonalInfo, Message: "is required"})
	} else {
		errs = append(errs, validatePersonalInfo(req.PersonalInfo)...)
	}

	if req.BusinessInfo == nil {
		errs = append(errs, apperrors.FieldError{Field: domain.SectionBusinessInfo, Message: "is required"})
	} else {
		errs = append(errs, validateBusinessInfo(req.BusinessInfo)...)
	}

	errs = append(errs, validateShareholders(req.Shareholders, ModeSubmit)...)
	errs = append(errs, validateDocuments(req.Documents, ModeSubmit)...)

	return newResult(errs)
}

func validatePersonalInfo(info *domain.PersonalInfo) []apperrors.FieldError {
	return structErrors(domain.SectionPersonalInfo, info)
}

func validateBusinessInfo(info *domain.BusinessInfo) []apperrors.FieldError {
	return structErrors(domain.SectionBusinessInfo, info)
}

func structErrors(section string, value any) []apperrors.FieldError {
	err := structValidator.Struct(value)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []apperrors.FieldError{{Field: section, Message: err.Error()}}
	}
	out := make([]apperrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		path := fe.Namespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		out = append(out, apperrors.FieldError{Field: section + "." + path, Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "siret":
		return "must be exactly 14 digits"
	case "industrycode":
		return "must match the format 4 digits followed by 1 uppercase letter (e.g. 6201Z)"
	}
	return "is invalid"
}

func decodeStrict(section string, raw json.RawMessage, dst any) *apperrors.FieldError {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeFieldError(section, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &apperrors.FieldError{Field: section, Message: "must be a single JSON value"}
	}
	return nil
}

func decodeFieldError(prefix string, err error) *apperrors.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := prefix
		if typeErr.Field != "" {
			field = prefix + "." + typeErr.Field
		}
		return &apperrors.FieldError{Field: field, Message: "must be of type " + strings.TrimPrefix(typeErr.Type.String(), "*")}
	}
	const unknownPrefix = `json: unknown field "`
	if msg := err.Error(); strings.HasPrefix(msg, unknownPrefix) {
		name := strings.TrimSuffix(strings.TrimPrefix(msg, unknownPrefix), `"`)
		return &apperrors.FieldError{Field: prefix + "." + name, Message: "is not allowed"}
	}
	return &apperrors.FieldError{Field: prefix, Message: "must be a valid JSON value"}
}

var shareholderKeys = map[domain.ShareholderType][]string{
	domain.ShareholderIndividual: {"type", "ownershipPercentage", "firstName", "lastName", "birthDate", "nationality"},
	domain.ShareholderCompany:    {"type", "ownershipPercentage", "companyName", "registrationNumber"},
}

func decodeShareholders(raw json.RawMessage) ([]domain.Shareholder, []apperrors.FieldError) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, []apperrors.FieldError{{Field: domain.SectionShareholders, Message: "must be a list"}}
	}

	var errs []apperrors.FieldError
	list := make([]domain.Shareholder, 0, len(entries))
	for i, entry := range entries {
		sh, entryErrs := decodeShareholder(fmt.Sprintf("%s.%d", domain.SectionShareholders, i), entry)
		if len(entryErrs) > 0 {
			errs = append(errs, entryErrs...)
			continue
		}
		list = append(list, sh)
	}
	return list, errs
}

func decodeShareholder(prefix string, raw json.RawMessage) (domain.Shareholder, []apperrors.FieldError) {
	var sh domain.Shareholder

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return sh, []apperrors.FieldError{{Field: prefix, Message: "must be an object"}}
	}

	rawType, ok := fields["type"]
	if !ok || !present(rawType) {
		return sh, []apperrors.FieldError{{Field: prefix + ".type", Message: "is required"}}
	}
	var typ string
	_ = json.Unmarshal(rawType, &typ)
	allowed, known := shareholderKeys[domain.ShareholderType(typ)]
	if !known {
		return sh, []apperrors.FieldError{{Field: prefix + ".type", Message: "must be one of: individual, company"}}
	}

	var errs []apperrors.FieldError
	unknown := make([]string, 0)
	for key := range fields {
		if !contains(allowed, key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, apperrors.FieldError{Field: prefix + "." + key, Message: "is not allowed for " + typ + " shareholders"})
	}
	// decimal decodes null as zero
	if rawPct, ok := fields["ownershipPercentage"]; !ok || !present(rawPct) {
		errs = append(errs, apperrors.FieldError{Field: prefix + ".ownershipPercentage", Message: "is required"})
	}
	if len(errs) > 0 {
		return sh, errs
	}

	if err := json.Unmarshal(raw, &sh); err != nil {
		return sh, []apperrors.FieldError{*decodeFieldError(prefix, err)}
	}
	return sh, nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func validateShareholders(list []domain.Shareholder, mode Mode) []apperrors.FieldError {
	if len(list) == 0 {
		if mode == ModeSubmit {
			return []apperrors.FieldError{{Field: domain.SectionShareholders, Message: "at least one shareholder is required"}}
		}
		return nil
	}

	var errs []apperrors.FieldError
	for i, sh := range list {
		errs = append(errs, validateShareholder(fmt.Sprintf("%s.%d", domain.SectionShareholders, i), sh)...)
	}

	if own := CheckOwnership(list); !own.Valid {
		errs = append(errs, apperrors.FieldError{
			Field:   domain.SectionShareholders,
			Message: fmt.Sprintf("ownership percentages must total 100 (got %s)", own.Total.String()),
		})
	}
	return errs
}

func validateShareholder(prefix string, sh domain.Shareholder) []apperrors.FieldError {
	var errs []apperrors.FieldError
	if sh.OwnershipPercentage.LessThan(decimal.Zero) || sh.OwnershipPercentage.GreaterThan(hundred) {
		errs = append(errs, apperrors.FieldError{Field: prefix + ".ownershipPercentage", Message: "must be between 0 and 100"})
	}

	required := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, apperrors.FieldError{Field: prefix + "." + name, Message: "is required"})
		}
	}
	forbidden := func(name, value string) {
		if value != "" {
			errs = append(errs, apperrors.FieldError{Field: prefix + "." + name, Message: "is not allowed for " + string(sh.Type) + " shareholders"})
		}
	}

	switch sh.Type {
	case domain.ShareholderIndividual:
		required("firstName", sh.FirstName)
		required("lastName", sh.LastName)
		required("birthDate", sh.BirthDate)
		required("nationality", sh.Nationality)
		forbidden("companyName", sh.CompanyName)
		forbidden("registrationNumber", sh.RegistrationNumber)
	case domain.ShareholderCompany:
		required("companyName", sh.CompanyName)
		if utf8.RuneCountInString(sh.RegistrationNumber) < 5 {
			errs = append(errs, apperrors.FieldError{Field: prefix + ".registrationNumber", Message: "must be at least 5 characters"})
		}
		forbidden("firstName", sh.FirstName)
		forbidden("lastName", sh.LastName)
		forbidden("birthDate", sh.BirthDate)
		forbidden("nationality", sh.Nationality)
	default:
		errs = append(errs, apperrors.FieldError{Field: prefix + ".type", Message: "must be one of: individual, company"})
	}
	return errs
}

func validateDocuments(docs domain.Documents, mode Mode) []apperrors.FieldError {
	var errs []apperrors.FieldError
	var missing []string
	for _, category := range domain.DocumentCategories {
		refs := docs.Refs(category)
		for i, ref := range refs {
			if strings.TrimSpace(ref) == "" {
				errs = append(errs, apperrors.FieldError{
					Field:   fmt.Sprintf("%s.%s.%d", domain.SectionDocuments, category, i),
					Message: "must be a non-empty file reference",
				})
			}
		}
		if len(refs) == 0 {
			missing = append(missing, string(category))
		}
	}
	if mode == ModeSubmit && len(missing) > 0 {
		errs = append(errs, apperrors.FieldError{
			Field:   domain.SectionDocuments,
			Message: "Missing documents: " + strings.Join(missing, ", "),
		})
	}
	return errs
}
