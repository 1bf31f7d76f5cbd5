package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/models"
	"github.com/comexdata/customs_backend/utils"
)

// ValidationResult is the gate's verdict for one candidate transition.
// Errors carries every violated rule; the caller surfaces all of them.
type ValidationResult struct {
	Passed bool                  `json:"passed"`
	Errors []utils.RuleViolation `json:"errors"`
}

// Gate validates preconditions for a status transition. The production
// implementation is an HTTP call to the rule-engine service; tests substitute
// a fake. A non-nil error means the gate could not be consulted (outage or
// timeout), which is distinct from a failed validation.
type Gate interface {
	Validate(ctx context.Context, operation *models.Operation, targetStatus models.OperationStatus) (*ValidationResult, error)
}

type httpGate struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
}

// NewHTTPGate builds the gate client from env:
// - COMPLIANCE_GATE_BASE_URL (required)
// - COMPLIANCE_GATE_API_KEY
// - COMPLIANCE_GATE_API_KEY_HEADER (default "X-API-Key")
// The HTTP timeout is bounded by config.ComplianceGateTimeout().
func NewHTTPGate() (Gate, error) {
	baseURL := strings.TrimSpace(os.Getenv("COMPLIANCE_GATE_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("COMPLIANCE_GATE_BASE_URL is not set")
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("COMPLIANCE_GATE_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	return &httpGate{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(os.Getenv("COMPLIANCE_GATE_API_KEY")),
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: config.ComplianceGateTimeout()},
	}, nil
}

type validateRequest struct {
	OperationId    int    `json:"operation_id"`
	CurrentStatus  string `json:"current_status"`
	TargetStatus   string `json:"target_status"`
	InspectionType string `json:"inspection_type,omitempty"`
}

func (g *httpGate) Validate(ctx context.Context, operation *models.Operation, targetStatus models.OperationStatus) (*ValidationResult, error) {
	payload := validateRequest{
		OperationId:   operation.ID,
		CurrentStatus: string(operation.CurrentStatus),
		TargetStatus:  string(targetStatus),
	}
	if operation.InspectionType != nil {
		payload.InspectionType = string(*operation.InspectionType)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/validate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set(g.apiKeyHdr, g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("compliance gate error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed ValidationResult
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}

	// Backfill messages for rules the gate reported without text, including
	// codes this build does not know yet.
	for i := range parsed.Errors {
		if parsed.Errors[i].Message == "" {
			parsed.Errors[i].Message = Describe(RuleCode(parsed.Errors[i].RuleCode))
		}
	}
	return &parsed, nil
}

// CachedValidate serves the read-only compliance preview endpoint. Verdicts
// are cached in Redis briefly so the UI's repeated polling does not hammer
// the gate; transition commits always consult the gate directly.
func CachedValidate(ctx context.Context, gate Gate, operation *models.Operation, targetStatus models.OperationStatus) (*ValidationResult, error) {
	cacheKey := fmt.Sprintf("compliance:%d:%s:%s:%d", operation.ID, operation.CurrentStatus, targetStatus, operation.Version)

	var cached ValidationResult
	exists, err := config.GetRedisObject(cacheKey, &cached)
	if err == nil && exists {
		return &cached, nil
	}

	result, err := gate.Validate(ctx, operation, targetStatus)
	if err != nil {
		return nil, err
	}
	_ = config.SetRedisObject(cacheKey, result, 30*time.Second)
	return result, nil
}
