package apperr

import (
	"fmt"
	"strings"
)

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects the failures found before any persistence call.
type ValidationErrors []FieldError

// Add appends a failure for field.
func (v *ValidationErrors) Add(field, format string, args ...any) {
	*v = append(*v, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns v as an error, or nil when there are no failures.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(msgs, "; ")
}

// PartialError reports a multi-step operation that was only partly applied.
// The primary record exists; the listed secondary steps failed.
type PartialError struct {
	Op     string
	Failed []StepFailure
}

// StepFailure names one failed secondary step.
type StepFailure struct {
	Step string `json:"step"`
	Err  error  `json:"-"`
}

func (p *PartialError) Error() string {
	parts := make([]string, len(p.Failed))
	for i, f := range p.Failed {
		parts[i] = fmt.Sprintf("%s (%v)", f.Step, f.Err)
	}
	return fmt.Sprintf("%s partially applied, failed: %s", p.Op, strings.Join(parts, ", "))
}

// Unwrap exposes the step errors to errors.Is and errors.As.
func (p *PartialError) Unwrap() []error {
	errs := make([]error, len(p.Failed))
	for i, f := range p.Failed {
		errs[i] = f.Err
	}
	return errs
}
