package models

import (
	"errors"
	"fmt"
)

// OperationStatus is the closed set of lifecycle states for a customs
// operation. Status strings are the wire values; never compare against raw
// literals outside this package.
type OperationStatus string

const (
	OperationStatusDraft                 OperationStatus = "DRAFT"
	OperationStatusDocumentationComplete OperationStatus = "DOCUMENTATION_COMPLETE"
	OperationStatusInReview              OperationStatus = "IN_REVIEW"
	OperationStatusPendingCorrection     OperationStatus = "PENDING_CORRECTION"
	OperationStatusPreliquidationReview  OperationStatus = "PRELIQUIDATION_REVIEW"
	OperationStatusAnalystAssigned       OperationStatus = "ANALYST_ASSIGNED"
	OperationStatusDeclarationInProgress OperationStatus = "DECLARATION_IN_PROGRESS"
	OperationStatusSubmittedToCustoms    OperationStatus = "SUBMITTED_TO_CUSTOMS"
	OperationStatusValuationReview       OperationStatus = "VALUATION_REVIEW"
	OperationStatusPaymentPreparation    OperationStatus = "PAYMENT_PREPARATION"
	OperationStatusInTransit             OperationStatus = "IN_TRANSIT"
	OperationStatusClosed                OperationStatus = "CLOSED"
	OperationStatusCancelled             OperationStatus = "CANCELLED"
)

// AllOperationStatuses lists every status in catalog order.
var AllOperationStatuses = []OperationStatus{
	OperationStatusDraft,
	OperationStatusDocumentationComplete,
	OperationStatusInReview,
	OperationStatusPendingCorrection,
	OperationStatusPreliquidationReview,
	OperationStatusAnalystAssigned,
	OperationStatusDeclarationInProgress,
	OperationStatusSubmittedToCustoms,
	OperationStatusValuationReview,
	OperationStatusPaymentPreparation,
	OperationStatusInTransit,
	OperationStatusClosed,
	OperationStatusCancelled,
}

var operationStatuses = map[string]OperationStatus{
	"DRAFT":                   OperationStatusDraft,
	"DOCUMENTATION_COMPLETE":  OperationStatusDocumentationComplete,
	"IN_REVIEW":               OperationStatusInReview,
	"PENDING_CORRECTION":      OperationStatusPendingCorrection,
	"PRELIQUIDATION_REVIEW":   OperationStatusPreliquidationReview,
	"ANALYST_ASSIGNED":        OperationStatusAnalystAssigned,
	"DECLARATION_IN_PROGRESS": OperationStatusDeclarationInProgress,
	"SUBMITTED_TO_CUSTOMS":    OperationStatusSubmittedToCustoms,
	"VALUATION_REVIEW":        OperationStatusValuationReview,
	"PAYMENT_PREPARATION":     OperationStatusPaymentPreparation,
	"IN_TRANSIT":              OperationStatusInTransit,
	"CLOSED":                  OperationStatusClosed,
	"CANCELLED":               OperationStatusCancelled,
}

func ParseOperationStatus(s string) (OperationStatus, error) {
	status, ok := operationStatuses[s]
	if !ok {
		return "", fmt.Errorf("invalid operation status %q", s)
	}
	return status, nil
}

func (s OperationStatus) IsValid() bool {
	_, ok := operationStatuses[string(s)]
	return ok
}

// statusLabels are the human-readable labels surfaced with transition errors.
var statusLabels = map[OperationStatus]string{
	OperationStatusDraft:                 "Draft",
	OperationStatusDocumentationComplete: "Documentation Complete",
	OperationStatusInReview:              "In Review",
	OperationStatusPendingCorrection:     "Pending Correction",
	OperationStatusPreliquidationReview:  "Preliquidation Review",
	OperationStatusAnalystAssigned:       "Analyst Assigned",
	OperationStatusDeclarationInProgress: "Declaration In Progress",
	OperationStatusSubmittedToCustoms:    "Submitted To Customs",
	OperationStatusValuationReview:       "Valuation Review",
	OperationStatusPaymentPreparation:    "Payment Preparation",
	OperationStatusInTransit:             "In Transit",
	OperationStatusClosed:                "Closed",
	OperationStatusCancelled:             "Cancelled",
}

// Label returns a display label, with an explicit unknown fallback instead of
// echoing arbitrary input back to the UI.
func (s OperationStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// InspectionType is the customs inspection channel assigned to an operation
// (aforo). GATT valuation adjustment applies to VISUAL and FISICA only.
type InspectionType string

const (
	InspectionTypeExpresso InspectionType = "EXPRESSO"
	InspectionTypeVisual   InspectionType = "VISUAL"
	InspectionTypeFisica   InspectionType = "FISICA"
)

func ParseInspectionType(s string) (InspectionType, error) {
	switch s {
	case "EXPRESSO":
		return InspectionTypeExpresso, nil
	case "VISUAL":
		return InspectionTypeVisual, nil
	case "FISICA":
		return InspectionTypeFisica, nil
	}
	return "", errors.New("invalid inspection type")
}

// RequiresGattAdjustment reports whether the inspection channel mandates a
// GATT Article 1 valuation form.
func (t InspectionType) RequiresGattAdjustment() bool {
	return t == InspectionTypeVisual || t == InspectionTypeFisica
}

type DeclarationType string

const (
	DeclarationTypePreliminary DeclarationType = "PRELIMINARY"
	DeclarationTypeFinal       DeclarationType = "FINAL"
)

func ParseDeclarationType(s string) (DeclarationType, error) {
	switch s {
	case "PRELIMINARY":
		return DeclarationTypePreliminary, nil
	case "FINAL":
		return DeclarationTypeFinal, nil
	}
	return "", errors.New("invalid declaration type")
}

type CrossingStatus string

const (
	CrossingStatusPending     CrossingStatus = "PENDING"
	CrossingStatusMatch       CrossingStatus = "MATCH"
	CrossingStatusDiscrepancy CrossingStatus = "DISCREPANCY"
	CrossingStatusResolved    CrossingStatus = "RESOLVED"
)

// DiscrepancyField identifies what a crossing discrepancy is about: a header
// monetary field, or a tariff-line level mismatch.
type DiscrepancyField string

const (
	DiscrepancyFieldTaxableBase    DiscrepancyField = "TAXABLE_BASE"
	DiscrepancyFieldTotalTaxes     DiscrepancyField = "TOTAL_TAXES"
	DiscrepancyFieldFobValue       DiscrepancyField = "FOB_VALUE"
	DiscrepancyFieldCifValue       DiscrepancyField = "CIF_VALUE"
	DiscrepancyFieldFreightValue   DiscrepancyField = "FREIGHT_VALUE"
	DiscrepancyFieldInsuranceValue DiscrepancyField = "INSURANCE_VALUE"

	DiscrepancyFieldTariffLineMissing  DiscrepancyField = "TARIFF_LINE_MISSING"
	DiscrepancyFieldTariffLineQuantity DiscrepancyField = "TARIFF_LINE_QUANTITY"
	DiscrepancyFieldTariffLineValue    DiscrepancyField = "TARIFF_LINE_VALUE"
	DiscrepancyFieldTariffLineTax      DiscrepancyField = "TARIFF_LINE_TAX"
)
