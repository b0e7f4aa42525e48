// ============================================================================
// backend/internal/student/validator.go
// Parse-and-validate step for incoming student records
// ============================================================================

package student

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"marklist/backend/internal/shared"
)

// Submission is a candidate record that passed validation
type Submission struct {
	StudentName    string `json:"studentName" validate:"required,max=200"`
	RegisterNumber string `json:"registerNumber" validate:"required,max=64"`
	Marks          map[string]int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseSubmission decodes a JSON record payload and checks every field.
// Marks may be JSON numbers or numeric text; anything else is rejected.
// All problems are reported together in one *shared.ValidationError.
func ParseSubmission(body []byte, subjects []string) (Submission, error) {
	verrs := &shared.ValidationError{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		verrs.Add("body", "must be a JSON object")
		return Submission{}, verrs
	}

	sub := Submission{
		StudentName:    parseText(raw, shared.FieldStudentName, verrs),
		RegisterNumber: parseText(raw, shared.FieldRegisterNumber, verrs),
		Marks:          make(map[string]int, len(subjects)),
	}

	if err := validate.Struct(sub); err != nil {
		addValidatorErrors(verrs, err)
	}

	for _, subject := range subjects {
		mark, ok := parseMark(raw[subject], subject, verrs)
		if !ok {
			continue
		}
		if err := validate.Var(mark, fmt.Sprintf("min=%d,max=%d", shared.MinMark, shared.MaxMark)); err != nil {
			verrs.Add(subject, fmt.Sprintf("must be between %d and %d", shared.MinMark, shared.MaxMark))
			continue
		}
		sub.Marks[subject] = mark
	}

	if verrs.HasErrors() {
		return Submission{}, verrs
	}
	return sub, nil
}

// parseText returns the trimmed string value of field; absent and null
// yield "" so the struct rules can flag them as required.
func parseText(raw map[string]json.RawMessage, field string, verrs *shared.ValidationError) string {
	value, ok := raw[field]
	if !ok || isNull(value) {
		return ""
	}

	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		verrs.Add(field, "must be a string")
		return ""
	}
	return strings.TrimSpace(text)
}

func parseMark(value json.RawMessage, subject string, verrs *shared.ValidationError) (int, bool) {
	if value == nil || isNull(value) {
		verrs.Add(subject, "is required")
		return 0, false
	}

	trimmed := bytes.TrimSpace(value)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			verrs.Add(subject, "must be a whole number")
			return 0, false
		}
		text = strings.TrimSpace(text)
		if text == "" {
			verrs.Add(subject, "is required")
			return 0, false
		}
		mark, err := strconv.Atoi(text)
		if err != nil {
			verrs.Add(subject, "must be a whole number")
			return 0, false
		}
		return mark, true

	default:
		var number float64
		if err := json.Unmarshal(trimmed, &number); err != nil {
			verrs.Add(subject, "must be a whole number")
			return 0, false
		}
		if number != math.Trunc(number) {
			verrs.Add(subject, "must be a whole number")
			return 0, false
		}
		if number < math.MinInt32 || number > math.MaxInt32 {
			verrs.Add(subject, fmt.Sprintf("must be between %d and %d", shared.MinMark, shared.MaxMark))
			return 0, false
		}
		return int(number), true
	}
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func addValidatorErrors(verrs *shared.ValidationError, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		verrs.Add("body", err.Error())
		return
	}

	for _, fe := range validationErrors {
		if verrs.Has(fe.Field()) {
			continue
		}
		switch fe.Tag() {
		case "required":
			verrs.Add(fe.Field(), "is required")
		case "max":
			verrs.Add(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
		default:
			verrs.Add(fe.Field(), "is invalid")
		}
	}
}
