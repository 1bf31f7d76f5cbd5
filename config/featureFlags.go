package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ComplianceGateFailClosed switches the gate-outage policy from the inherited
// fail-open behavior to fail-closed (transition blocked with GATE_UNAVAILABLE).
// Default is fail-open: a gate outage must not freeze customs operations.
//
// Set via env:
// - COMPLIANCE_GATE_FAIL_CLOSED=true
func ComplianceGateFailClosed() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("COMPLIANCE_GATE_FAIL_CLOSED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// ComplianceGateTimeout bounds the synchronous gate call per transition.
//
// Set via env:
// - COMPLIANCE_GATE_TIMEOUT_SECONDS (default 5)
func ComplianceGateTimeout() time.Duration {
	v := strings.TrimSpace(os.Getenv("COMPLIANCE_GATE_TIMEOUT_SECONDS"))
	if v == "" {
		return 5 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n) * time.Second
}

// StatusEventsEnabled turns on post-commit status-change event publishing.
// Publishing is best-effort and never blocks or fails a transition.
//
// Set via env:
// - STATUS_EVENTS_ENABLED=true
// - STATUS_EVENTS_TOPIC (default "operation-status-events")
func StatusEventsEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STATUS_EVENTS_ENABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func StatusEventsTopic() string {
	if v := strings.TrimSpace(os.Getenv("STATUS_EVENTS_TOPIC")); v != "" {
		return v
	}
	return "operation-status-events"
}
