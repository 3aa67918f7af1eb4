package workflow

import "testing"

func TestSubmitGuards(t *testing.T) {
	if err := CanSubmit(StatusDraft); err != nil {
		t.Fatal(err)
	}
	for _, s := range []AssessmentStatus{StatusSubmitted, StatusNeedsRework, StatusResubmitted, StatusFinalized} {
		if err := CanSubmit(s); err == nil {
			t.Fatalf("submit allowed from %s", s)
		}
	}
}

func TestResubmitOnlyAfterRework(t *testing.T) {
	if err := CanResubmit(StatusNeedsRework, 1); err != nil {
		t.Fatal(err)
	}
	if err := CanResubmit(StatusDraft, 0); err == nil {
		t.Fatal("resubmit allowed from Draft")
	}
	if err := CanResubmit(StatusNeedsRework, 2); err == nil {
		t.Fatal("resubmit allowed past the rework limit")
	}
}

func TestSendReworkGuards(t *testing.T) {
	full := ReviewProgress{Reviewed: 5, Total: 5}
	if err := CanSendRework(StatusSubmitted, 0, full); err != nil {
		t.Fatal(err)
	}
	if err := CanSendRework(StatusSubmitted, 1, full); err == nil {
		t.Fatal("second rework cycle allowed")
	}
	if err := CanSendRework(StatusSubmitted, 0, ReviewProgress{Reviewed: 4, Total: 5}); err == nil {
		t.Fatal("rework allowed with unreviewed indicators")
	}
	if err := CanSendRework(StatusDraft, 0, full); err == nil {
		t.Fatal("rework allowed from Draft")
	}
}

func TestFinalizeGuards(t *testing.T) {
	if err := CanFinalize(StatusSubmitted, ReviewProgress{Reviewed: 3, Total: 3}); err != nil {
		t.Fatal(err)
	}
	if err := CanFinalize(StatusResubmitted, ReviewProgress{Reviewed: 3, Total: 3}); err != nil {
		t.Fatal(err)
	}
	if err := CanFinalize(StatusSubmitted, ReviewProgress{Reviewed: 2, Total: 3}); err == nil {
		t.Fatal("finalize allowed with unreviewed indicators")
	}
	if err := CanFinalize(StatusSubmitted, ReviewProgress{Reviewed: 3, Total: 3, Failed: 1}); err == nil {
		t.Fatal("finalize allowed with Fail validations")
	}
	if err := CanFinalize(StatusFinalized, ReviewProgress{Reviewed: 3, Total: 3}); err == nil {
		t.Fatal("finalize allowed twice")
	}
}

func TestCheckRecordCommentRefinement(t *testing.T) {
	cases := []struct {
		name    string
		status  ValidationStatus
		comment string
		wantErr bool
	}{
		{"pass_no_comment", ValidationPass, "", false},
		{"fail_no_comment", ValidationFail, "", true},
		{"fail_blank_comment", ValidationFail, "   ", true},
		{"fail_with_comment", ValidationFail, "missing MOV for budget section", false},
		{"conditional_no_comment", ValidationConditional, "", true},
		{"conditional_with_comment", ValidationConditional, "resubmit with signed minutes", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRecord(tc.status, tc.comment)
			if (err != nil) != tc.wantErr {
				t.Fatalf("CheckRecord(%s, %q) error = %v, wantErr %v", tc.status, tc.comment, err, tc.wantErr)
			}
		})
	}
}

func TestEditableAndUnderValidation(t *testing.T) {
	if !Editable(StatusDraft) || !Editable(StatusNeedsRework) {
		t.Fatal("Draft and NeedsRework must be editable")
	}
	if Editable(StatusSubmitted) || Editable(StatusFinalized) {
		t.Fatal("Submitted/Finalized must not be editable")
	}
	if !UnderValidation(StatusSubmitted) || !UnderValidation(StatusResubmitted) {
		t.Fatal("Submitted and Resubmitted are validation phases")
	}
	if UnderValidation(StatusFinalized) {
		t.Fatal("Finalized is not a validation phase")
	}
}

func TestParseValidationStatus(t *testing.T) {
	if _, err := ParseValidationStatus("Pass"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseValidationStatus("Maybe"); err == nil {
		t.Fatal("unknown status accepted")
	}
}
