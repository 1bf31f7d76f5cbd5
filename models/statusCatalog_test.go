package models_test

import (
	"testing"

	"github.com/comexdata/customs_backend/models"
)

// The full forward edge set, before CANCELLED is added as a universal escape
// hatch for non-terminal states.
var forwardEdges = map[models.OperationStatus][]models.OperationStatus{
	models.OperationStatusDraft:                 {models.OperationStatusDocumentationComplete},
	models.OperationStatusDocumentationComplete: {models.OperationStatusInReview},
	models.OperationStatusInReview:              {models.OperationStatusPreliquidationReview, models.OperationStatusPendingCorrection},
	models.OperationStatusPendingCorrection:     {models.OperationStatusInReview},
	models.OperationStatusPreliquidationReview:  {models.OperationStatusPendingCorrection, models.OperationStatusAnalystAssigned},
	models.OperationStatusAnalystAssigned:       {models.OperationStatusDeclarationInProgress},
	models.OperationStatusDeclarationInProgress: {models.OperationStatusSubmittedToCustoms},
	models.OperationStatusSubmittedToCustoms:    {models.OperationStatusValuationReview},
	models.OperationStatusValuationReview:       {models.OperationStatusPaymentPreparation},
	models.OperationStatusPaymentPreparation:    {models.OperationStatusInTransit},
	models.OperationStatusInTransit:             {models.OperationStatusClosed},
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range models.AllOperationStatuses {
		wantTerminal := s == models.OperationStatusClosed || s == models.OperationStatusCancelled
		if got := s.IsTerminal(); got != wantTerminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, wantTerminal)
		}
	}
}

func TestTerminalStatusesHaveNoOutboundEdges(t *testing.T) {
	for _, s := range []models.OperationStatus{models.OperationStatusClosed, models.OperationStatusCancelled} {
		if edges := models.AllowedTransitions(s); len(edges) != 0 {
			t.Errorf("AllowedTransitions(%s) = %v, want none", s, edges)
		}
	}
}

func TestCancellationAllowedFromEveryNonTerminalStatus(t *testing.T) {
	for _, s := range models.AllOperationStatuses {
		if s.IsTerminal() {
			continue
		}
		if !models.CanTransition(s, models.OperationStatusCancelled) {
			t.Errorf("CanTransition(%s, CANCELLED) = false, want true", s)
		}
	}
}

// Verifies the adjacency table exactly: every listed forward edge exists, and
// nothing beyond forward edges plus cancellation is reachable.
func TestExactAdjacency(t *testing.T) {
	for from, forwards := range forwardEdges {
		allowed := map[models.OperationStatus]bool{models.OperationStatusCancelled: true}
		for _, to := range forwards {
			allowed[to] = true
		}
		for _, to := range models.AllOperationStatuses {
			if got := models.CanTransition(from, to); got != allowed[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestReviewBandCycle(t *testing.T) {
	// PENDING_CORRECTION feeds back into IN_REVIEW, so a document can cycle
	// through the review band any number of times.
	if !models.CanTransition(models.OperationStatusInReview, models.OperationStatusPendingCorrection) {
		t.Fatal("IN_REVIEW -> PENDING_CORRECTION should be allowed")
	}
	if !models.CanTransition(models.OperationStatusPendingCorrection, models.OperationStatusInReview) {
		t.Fatal("PENDING_CORRECTION -> IN_REVIEW should be allowed")
	}
	// But correction never skips ahead.
	if models.CanTransition(models.OperationStatusPendingCorrection, models.OperationStatusAnalystAssigned) {
		t.Fatal("PENDING_CORRECTION -> ANALYST_ASSIGNED should be rejected")
	}
}

func TestParseOperationStatus(t *testing.T) {
	parsed, err := models.ParseOperationStatus("SUBMITTED_TO_CUSTOMS")
	if err != nil {
		t.Fatalf("ParseOperationStatus: %v", err)
	}
	if parsed != models.OperationStatusSubmittedToCustoms {
		t.Fatalf("parsed = %s", parsed)
	}
	if _, err := models.ParseOperationStatus("NOT_A_STATUS"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestStatusLabelUnknownFallback(t *testing.T) {
	if got := models.OperationStatus("BOGUS").Label(); got != "Unknown" {
		t.Fatalf("Label() = %q, want Unknown", got)
	}
}
