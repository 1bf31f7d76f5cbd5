package workflow

import (
	"errors"
	"testing"

	"github.com/comexdata/customs_backend/compliance"
	"github.com/comexdata/customs_backend/models"
	"github.com/comexdata/customs_backend/utils"
)

func TestValidateTransitionTerminal(t *testing.T) {
	for _, from := range []models.OperationStatus{models.OperationStatusClosed, models.OperationStatusCancelled} {
		err := validateTransition(from, models.OperationStatusDraft)
		var terminal *utils.TerminalStateError
		if !errors.As(err, &terminal) {
			t.Fatalf("validateTransition(%s, DRAFT) = %v, want TerminalStateError", from, err)
		}
		if terminal.Status != string(from) {
			t.Fatalf("terminal.Status = %s, want %s", terminal.Status, from)
		}
	}
}

func TestValidateTransitionRejectsSkips(t *testing.T) {
	// Skipping ahead in the primary sequence is never allowed.
	err := validateTransition(models.OperationStatusDraft, models.OperationStatusSubmittedToCustoms)
	var invalid *utils.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != "DRAFT" || invalid.To != "SUBMITTED_TO_CUSTOMS" {
		t.Fatalf("error payload = %+v", invalid)
	}
}

func TestValidateTransitionAllowsAdjacentEdge(t *testing.T) {
	if err := validateTransition(models.OperationStatusInTransit, models.OperationStatusClosed); err != nil {
		t.Fatalf("IN_TRANSIT -> CLOSED: %v", err)
	}
	if err := validateTransition(models.OperationStatusDraft, models.OperationStatusCancelled); err != nil {
		t.Fatalf("DRAFT -> CANCELLED: %v", err)
	}
}

func TestGateVerdictFailOpenOnOutage(t *testing.T) {
	outage := errors.New("connection refused")
	if err := gateVerdict(nil, outage, models.OperationStatusInReview, false); err != nil {
		t.Fatalf("fail-open outage should pass, got %v", err)
	}
}

func TestGateVerdictFailClosedOnOutage(t *testing.T) {
	outage := errors.New("connection refused")
	err := gateVerdict(nil, outage, models.OperationStatusInReview, true)
	var unavailable *utils.GateUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("got %v, want GateUnavailableError", err)
	}
	if !errors.Is(err, outage) {
		t.Fatal("GateUnavailableError should wrap the outage cause")
	}
}

func TestGateVerdictSurfacesAllViolations(t *testing.T) {
	result := &compliance.ValidationResult{
		Passed: false,
		Errors: []utils.RuleViolation{
			{RuleCode: "DOCS_INCOMPLETE", Message: "2 of 5 required documents missing"},
			{RuleCode: "DOC_BLOCKED", Message: "invoice is blocked"},
		},
	}
	err := gateVerdict(result, nil, models.OperationStatusInReview, false)
	var complianceErr *utils.ComplianceError
	if !errors.As(err, &complianceErr) {
		t.Fatalf("got %v, want ComplianceError", err)
	}
	if len(complianceErr.Violations) != 2 {
		t.Fatalf("violations = %d, want 2 (all violations, not just the first)", len(complianceErr.Violations))
	}
	if complianceErr.TargetStatus != "IN_REVIEW" {
		t.Fatalf("TargetStatus = %s", complianceErr.TargetStatus)
	}
}

func TestGateVerdictPassed(t *testing.T) {
	result := &compliance.ValidationResult{Passed: true}
	if err := gateVerdict(result, nil, models.OperationStatusInReview, true); err != nil {
		t.Fatalf("passed verdict should not error, got %v", err)
	}
}
