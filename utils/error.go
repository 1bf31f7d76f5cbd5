package utils

import (
	"errors"
	"fmt"
	"strings"
)

var ErrorRecordNotFound = errors.New("record not found")

// Engine error kinds, carried end-to-end as structured payloads.
// The API layer must never parse error messages to recover these.
const (
	ErrKindTerminalState          = "TERMINAL_STATE"
	ErrKindInvalidTransition      = "INVALID_TRANSITION"
	ErrKindComplianceFailed       = "COMPLIANCE_FAILED"
	ErrKindGateUnavailable        = "GATE_UNAVAILABLE"
	ErrKindMissingDeclaration     = "MISSING_DECLARATION"
	ErrKindInvalidState           = "INVALID_STATE"
	ErrKindValidationError        = "VALIDATION_ERROR"
	ErrKindAlreadyFinalized       = "ALREADY_FINALIZED"
	ErrKindConcurrentModification = "CONCURRENT_MODIFICATION"
)

// TerminalStateError: the operation sits in CLOSED/CANCELLED; no outbound
// transition is permitted.
type TerminalStateError struct {
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("operation is in terminal status %s; no further transitions are allowed", e.Status)
}

func (e *TerminalStateError) Kind() string { return ErrKindTerminalState }

// InvalidTransitionError: the requested edge is not in the adjacency table.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Kind() string { return ErrKindInvalidTransition }

// RuleViolation is one compliance-gate failure. All violations are surfaced
// to the caller together, never just the first.
type RuleViolation struct {
	RuleCode string `json:"rule_code"`
	Message  string `json:"message"`
}

type ComplianceError struct {
	TargetStatus string
	Violations   []RuleViolation
}

func (e *ComplianceError) Error() string {
	codes := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		codes = append(codes, v.RuleCode)
	}
	return fmt.Sprintf("compliance validation failed for target status %s: %s",
		e.TargetStatus, strings.Join(codes, ", "))
}

func (e *ComplianceError) Kind() string { return ErrKindComplianceFailed }

// GateUnavailableError is only returned when COMPLIANCE_GATE_FAIL_CLOSED is
// enabled; the default policy is fail-open (transition proceeds, outage logged).
type GateUnavailableError struct {
	Cause error
}

func (e *GateUnavailableError) Error() string {
	return fmt.Sprintf("compliance gate unavailable: %v", e.Cause)
}

func (e *GateUnavailableError) Kind() string { return ErrKindGateUnavailable }

func (e *GateUnavailableError) Unwrap() error { return e.Cause }

// MissingDeclarationError: crossing requires one PRELIMINARY and one FINAL
// declaration on the operation.
type MissingDeclarationError struct {
	OperationId     int
	DeclarationType string
}

func (e *MissingDeclarationError) Error() string {
	return fmt.Sprintf("operation %d has no %s declaration; crossing requires both variants",
		e.OperationId, e.DeclarationType)
}

func (e *MissingDeclarationError) Kind() string { return ErrKindMissingDeclaration }

// InvalidStateError: workflow invoked against a record whose status does not
// admit the operation (e.g. resolving a MATCH crossing result).
type InvalidStateError struct {
	Status string
	Detail string
}

func (e *InvalidStateError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid state %s: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("invalid state %s", e.Status)
}

func (e *InvalidStateError) Kind() string { return ErrKindInvalidState }

type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Detail)
}

func (e *ValidationError) Kind() string { return ErrKindValidationError }

// AlreadyFinalizedError: the record became immutable (completed_at set).
type AlreadyFinalizedError struct {
	Resource string
	Id       int
}

func (e *AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("%s %d is finalized and can no longer be modified", e.Resource, e.Id)
}

func (e *AlreadyFinalizedError) Kind() string { return ErrKindAlreadyFinalized }

// ConcurrentModificationError: optimistic version check failed; the caller
// should reload and retry.
type ConcurrentModificationError struct {
	Resource string
	Id       int
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %d was modified concurrently; reload and retry", e.Resource, e.Id)
}

func (e *ConcurrentModificationError) Kind() string { return ErrKindConcurrentModification }

// KindedError is implemented by every engine error above.
type KindedError interface {
	error
	Kind() string
}

// ErrorKind extracts the structured kind, or "" for plain errors.
func ErrorKind(err error) string {
	var kinded KindedError
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	return ""
}
