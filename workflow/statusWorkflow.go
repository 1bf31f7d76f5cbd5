package workflow

import (
	"context"
	"time"

	"github.com/comexdata/customs_backend/compliance"
	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/models"
	"github.com/comexdata/customs_backend/utils"
	"gorm.io/gorm"
)

// validateTransition is the pure decision core of the transition engine:
// terminal check first, then the adjacency table.
func validateTransition(from, to models.OperationStatus) error {
	if from.IsTerminal() {
		return &utils.TerminalStateError{Status: string(from)}
	}
	if !models.CanTransition(from, to) {
		return &utils.InvalidTransitionError{From: string(from), To: string(to)}
	}
	return nil
}

// gateVerdict folds the gate's answer and the outage policy into one error.
// A reachable gate that reports violations always blocks. An unreachable
// gate blocks only under fail-closed; the default is fail-open, where the
// transition proceeds and the outage is the caller's to log.
func gateVerdict(result *compliance.ValidationResult, gateErr error, targetStatus models.OperationStatus, failClosed bool) error {
	if gateErr != nil {
		if failClosed {
			return &utils.GateUnavailableError{Cause: gateErr}
		}
		return nil
	}
	if result == nil || result.Passed {
		return nil
	}
	return &utils.ComplianceError{
		TargetStatus: string(targetStatus),
		Violations:   result.Errors,
	}
}

// TransitionOperationStatus validates and executes a single status
// transition: terminal check, adjacency check, compliance gate, then the
// optimistic status write plus an append-only history row, all inside one
// transaction serialized by the per-operation advisory lock. A status-change
// event is published best-effort after commit.
func TransitionOperationStatus(ctx context.Context, gate compliance.Gate, operationId int, targetStatus models.OperationStatus, comment string) (*models.Operation, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	var operation *models.Operation
	var event config.StatusEventMessage

	releaseFastLock := tryRedisOperationLock(ctx, operationId)
	defer releaseFastLock()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireOperationLock(tx, operationId); err != nil {
			return err
		}
		defer ReleaseOperationLock(tx, operationId)

		op, err := models.GetOperationById(ctx, tx, operationId)
		if err != nil {
			return err
		}

		if err := validateTransition(op.CurrentStatus, targetStatus); err != nil {
			return err
		}

		// The gate is consulted inside the transaction, while the advisory
		// lock is held: the verdict must be issued against the row state that
		// will be written, not a pre-lock snapshot that a concurrent
		// transition could invalidate. This pins the DB connection for the
		// duration of the gate call; ComplianceGateTimeout bounds that.
		gateCtx, cancel := context.WithTimeout(ctx, config.ComplianceGateTimeout())
		defer cancel()
		result, gateErr := gate.Validate(gateCtx, op, targetStatus)
		if gateErr != nil {
			// Fail-open policy: a gate outage must not freeze customs
			// operations. Logged for operational visibility either way.
			config.LogWarn(logger, "statusWorkflow.go", "TransitionOperationStatus",
				"compliance gate unreachable", map[string]interface{}{
					"operation_id":  operationId,
					"target_status": targetStatus,
				}, gateErr)
		}
		if err := gateVerdict(result, gateErr, targetStatus, config.ComplianceGateFailClosed()); err != nil {
			return err
		}

		previousStatus := op.CurrentStatus
		if err := models.UpdateOperationStatus(ctx, tx, op, targetStatus); err != nil {
			return err
		}

		userId, _ := utils.GetUserIdFromContext(ctx)
		userName, _ := utils.GetUserNameFromContext(ctx)
		clientIp, _ := utils.GetClientIpFromContext(ctx)
		correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

		history := models.OperationStatusHistory{
			OperationId:    operationId,
			PreviousStatus: previousStatus,
			NewStatus:      targetStatus,
			UserId:         userId,
			UserName:       userName,
			Comment:        comment,
			ClientIp:       clientIp,
			CorrelationId:  correlationId,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		operation = op
		event = config.StatusEventMessage{
			OperationId:    operationId,
			PreviousStatus: string(previousStatus),
			NewStatus:      string(targetStatus),
			UserId:         userId,
			UserName:       userName,
			Comment:        comment,
			OccurredAt:     time.Now().UTC(),
			CorrelationId:  correlationId,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit, best-effort. The transition stands even if publishing fails.
	if pubErr := config.PublishStatusEvent(event); pubErr != nil {
		config.LogWarn(logger, "statusWorkflow.go", "TransitionOperationStatus",
			"status event publish failed", event, pubErr)
	}

	return operation, nil
}
