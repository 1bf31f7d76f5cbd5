package models

// The lifecycle catalog. PrimarySequence is the forward progression of an
// operation from intake to closure; the review band (IN_REVIEW,
// PENDING_CORRECTION, PRELIQUIDATION_REVIEW, ANALYST_ASSIGNED) is nested at
// the IN_REVIEW position and rejoins the sequence at
// DECLARATION_IN_PROGRESS. CANCELLED is reachable from every non-terminal
// state. CLOSED and CANCELLED are absorbing.

var PrimarySequence = []OperationStatus{
	OperationStatusDraft,
	OperationStatusDocumentationComplete,
	OperationStatusInReview,
	OperationStatusDeclarationInProgress,
	OperationStatusSubmittedToCustoms,
	OperationStatusValuationReview,
	OperationStatusPaymentPreparation,
	OperationStatusInTransit,
	OperationStatusClosed,
}

var ReviewBand = []OperationStatus{
	OperationStatusInReview,
	OperationStatusPendingCorrection,
	OperationStatusPreliquidationReview,
	OperationStatusAnalystAssigned,
}

// statusAdjacency is the single source of truth for permitted edges.
// CANCELLED is added for every non-terminal state by init below, not listed
// per-row, so the table reads as the business progression.
var statusAdjacency = map[OperationStatus][]OperationStatus{
	OperationStatusDraft:                 {OperationStatusDocumentationComplete},
	OperationStatusDocumentationComplete: {OperationStatusInReview},

	// Review sub-workflow: advance to preliquidation or send back for
	// correction; corrections return to review; preliquidation either sends
	// back or assigns the analyst once both approvals exist; the analyst
	// rejoins the primary sequence.
	OperationStatusInReview:             {OperationStatusPreliquidationReview, OperationStatusPendingCorrection},
	OperationStatusPendingCorrection:    {OperationStatusInReview},
	OperationStatusPreliquidationReview: {OperationStatusPendingCorrection, OperationStatusAnalystAssigned},
	OperationStatusAnalystAssigned:      {OperationStatusDeclarationInProgress},

	OperationStatusDeclarationInProgress: {OperationStatusSubmittedToCustoms},
	OperationStatusSubmittedToCustoms:    {OperationStatusValuationReview},
	OperationStatusValuationReview:       {OperationStatusPaymentPreparation},
	OperationStatusPaymentPreparation:    {OperationStatusInTransit},
	OperationStatusInTransit:             {OperationStatusClosed},

	OperationStatusClosed:    {},
	OperationStatusCancelled: {},
}

func init() {
	for from, targets := range statusAdjacency {
		if from.IsTerminal() {
			continue
		}
		statusAdjacency[from] = append(targets, OperationStatusCancelled)
	}
}

// IsTerminal reports whether no outbound transition is permitted.
func (s OperationStatus) IsTerminal() bool {
	return s == OperationStatusClosed || s == OperationStatusCancelled
}

// AllowedTransitions returns the permitted target statuses from a given
// state. The returned slice must not be mutated.
func AllowedTransitions(from OperationStatus) []OperationStatus {
	return statusAdjacency[from]
}

// CanTransition reports whether the edge from -> to is in the catalog.
func CanTransition(from, to OperationStatus) bool {
	for _, allowed := range statusAdjacency[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
