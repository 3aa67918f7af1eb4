package workflow

import (
	"fmt"
	"strings"
)

// Assessment lifecycle:
//
//	Draft -> Submitted -> Finalized                    (all indicators Pass)
//	Submitted -> NeedsRework -> Resubmitted -> Finalized (one rework cycle)
type AssessmentStatus string

const (
	StatusDraft       AssessmentStatus = "Draft"
	StatusSubmitted   AssessmentStatus = "Submitted"
	StatusNeedsRework AssessmentStatus = "NeedsRework"
	StatusResubmitted AssessmentStatus = "Resubmitted"
	StatusFinalized   AssessmentStatus = "Finalized"
)

type ValidationStatus string

const (
	ValidationPass        ValidationStatus = "Pass"
	ValidationFail        ValidationStatus = "Fail"
	ValidationConditional ValidationStatus = "Conditional"
)

// MaxReworkCycles caps how many times an assessment may be sent back.
const MaxReworkCycles = 1

// ReviewProgress is the assessor's position across an assessment's leaf
// indicators.
type ReviewProgress struct {
	Reviewed int
	Total    int
	Failed   int
}

// Editable reports whether the BLGU may still change responses and MOVs.
func Editable(s AssessmentStatus) bool {
	return s == StatusDraft || s == StatusNeedsRework
}

// UnderValidation reports whether the assessor may record validations.
func UnderValidation(s AssessmentStatus) bool {
	return s == StatusSubmitted || s == StatusResubmitted
}

func CanSubmit(s AssessmentStatus) error {
	if s != StatusDraft {
		return fmt.Errorf("cannot submit assessment in status %s", s)
	}
	return nil
}

// CanResubmit permits exactly one resubmission, after a rework request.
func CanResubmit(s AssessmentStatus, reworkCount int) error {
	if s != StatusNeedsRework {
		return fmt.Errorf("cannot resubmit assessment in status %s", s)
	}
	if reworkCount > MaxReworkCycles {
		return fmt.Errorf("rework cycle limit reached")
	}
	return nil
}

// CanSendRework requires a fully reviewed assessment with the rework budget
// unspent.
func CanSendRework(s AssessmentStatus, reworkCount int, p ReviewProgress) error {
	if !UnderValidation(s) {
		return fmt.Errorf("cannot send rework for assessment in status %s", s)
	}
	if reworkCount >= MaxReworkCycles {
		return fmt.Errorf("only %d rework cycle is permitted", MaxReworkCycles)
	}
	if p.Reviewed < p.Total {
		return fmt.Errorf("all indicators must be reviewed before rework (%d of %d)", p.Reviewed, p.Total)
	}
	return nil
}

// CanFinalize requires full review and zero Fail validations.
func CanFinalize(s AssessmentStatus, p ReviewProgress) error {
	if !UnderValidation(s) {
		return fmt.Errorf("cannot finalize assessment in status %s", s)
	}
	if p.Reviewed < p.Total {
		return fmt.Errorf("all indicators must be reviewed before finalizing (%d of %d)", p.Reviewed, p.Total)
	}
	if p.Failed > 0 {
		return fmt.Errorf("%d indicator(s) still marked Fail", p.Failed)
	}
	return nil
}

// CheckRecord enforces the record-level refinement: a Fail or Conditional
// validation must carry a public comment visible to the BLGU. This is a
// hard block before persistence, not a UI hint.
func CheckRecord(status ValidationStatus, publicComment string) error {
	switch status {
	case ValidationPass:
		return nil
	case ValidationFail, ValidationConditional:
		if strings.TrimSpace(publicComment) == "" {
			return fmt.Errorf("a %s validation requires a public comment", status)
		}
		return nil
	}
	return fmt.Errorf("unknown validation status %q", status)
}

func ParseValidationStatus(s string) (ValidationStatus, error) {
	switch ValidationStatus(s) {
	case ValidationPass, ValidationFail, ValidationConditional:
		return ValidationStatus(s), nil
	}
	return "", fmt.Errorf("unknown validation status %q", s)
}
