package compliance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comexdata/customs_backend/compliance"
	"github.com/comexdata/customs_backend/models"
)

func operationFixture() *models.Operation {
	inspection := models.InspectionTypeFisica
	return &models.Operation{
		ID:              42,
		OperationNumber: "OP-2026-0042",
		ClientName:      "Importadora Andina",
		CurrentStatus:   models.OperationStatusInReview,
		InspectionType:  &inspection,
		Version:         3,
	}
}

func TestHTTPGateValidatePassed(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/validate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("X-Custom-Key") != "secret" {
			t.Errorf("api key header not forwarded")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(compliance.ValidationResult{Passed: true})
	}))
	defer server.Close()

	t.Setenv("COMPLIANCE_GATE_BASE_URL", server.URL)
	t.Setenv("COMPLIANCE_GATE_API_KEY", "secret")
	t.Setenv("COMPLIANCE_GATE_API_KEY_HEADER", "X-Custom-Key")

	gate, err := compliance.NewHTTPGate()
	if err != nil {
		t.Fatalf("NewHTTPGate: %v", err)
	}

	result, err := gate.Validate(context.Background(), operationFixture(), models.OperationStatusPreliquidationReview)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Passed {
		t.Fatal("result.Passed = false, want true")
	}
	if gotPayload["operation_id"] != float64(42) {
		t.Errorf("payload operation_id = %v", gotPayload["operation_id"])
	}
	if gotPayload["target_status"] != "PRELIQUIDATION_REVIEW" {
		t.Errorf("payload target_status = %v", gotPayload["target_status"])
	}
	if gotPayload["inspection_type"] != "FISICA" {
		t.Errorf("payload inspection_type = %v", gotPayload["inspection_type"])
	}
}

func TestHTTPGateValidateBackfillsMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"passed": false,
			"errors": [
				{"rule_code": "DOCS_INCOMPLETE", "message": ""},
				{"rule_code": "RULE_FROM_THE_FUTURE", "message": ""},
				{"rule_code": "DOC_BLOCKED", "message": "invoice 991 is blocked"}
			]
		}`))
	}))
	defer server.Close()

	t.Setenv("COMPLIANCE_GATE_BASE_URL", server.URL)
	t.Setenv("COMPLIANCE_GATE_API_KEY", "")
	t.Setenv("COMPLIANCE_GATE_API_KEY_HEADER", "")

	gate, err := compliance.NewHTTPGate()
	if err != nil {
		t.Fatalf("NewHTTPGate: %v", err)
	}

	result, err := gate.Validate(context.Background(), operationFixture(), models.OperationStatusPreliquidationReview)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Passed {
		t.Fatal("result.Passed = true, want false")
	}
	if len(result.Errors) != 3 {
		t.Fatalf("errors = %d, want 3", len(result.Errors))
	}
	if result.Errors[0].Message != compliance.Describe(compliance.RuleDocsIncomplete) {
		t.Errorf("backfilled message = %q", result.Errors[0].Message)
	}
	if result.Errors[1].Message != "Unknown compliance rule: RULE_FROM_THE_FUTURE" {
		t.Errorf("unknown-rule message = %q", result.Errors[1].Message)
	}
	if result.Errors[2].Message != "invoice 991 is blocked" {
		t.Errorf("gate-provided message overwritten: %q", result.Errors[2].Message)
	}
}

func TestHTTPGateValidateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	t.Setenv("COMPLIANCE_GATE_BASE_URL", server.URL)

	gate, err := compliance.NewHTTPGate()
	if err != nil {
		t.Fatalf("NewHTTPGate: %v", err)
	}
	if _, err := gate.Validate(context.Background(), operationFixture(), models.OperationStatusPreliquidationReview); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestHTTPGateValidateContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(compliance.ValidationResult{Passed: true})
	}))
	defer server.Close()

	t.Setenv("COMPLIANCE_GATE_BASE_URL", server.URL)

	gate, err := compliance.NewHTTPGate()
	if err != nil {
		t.Fatalf("NewHTTPGate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := gate.Validate(ctx, operationFixture(), models.OperationStatusPreliquidationReview); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestDescribeFallback(t *testing.T) {
	if compliance.Known("NOT_A_RULE") {
		t.Fatal("Known(NOT_A_RULE) = true")
	}
	if got := compliance.Describe("NOT_A_RULE"); got != "Unknown compliance rule: NOT_A_RULE" {
		t.Fatalf("Describe = %q", got)
	}
}
