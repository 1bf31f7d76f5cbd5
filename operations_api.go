package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/comexdata/customs_backend/compliance"
	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/models"
	"github.com/comexdata/customs_backend/models/reports"
	"github.com/comexdata/customs_backend/utils"
	"github.com/comexdata/customs_backend/workflow"
)

// unreachableGate stands in when the gate client is not configured. Every
// Validate call reports an outage, so the engine's availability policy
// (fail-open by default) decides the outcome.
type unreachableGate struct {
	cause error
}

func (g unreachableGate) Validate(ctx context.Context, operation *models.Operation, targetStatus models.OperationStatus) (*compliance.ValidationResult, error) {
	return nil, g.cause
}

// apiError maps engine errors to HTTP responses. The payload always carries
// the structured kind plus the fields the UI needs to render the failure;
// clients must never parse the message text.
func apiError(c *gin.Context, err error) {
	var terminal *utils.TerminalStateError
	var invalidTransition *utils.InvalidTransitionError
	var complianceErr *utils.ComplianceError
	var gateUnavailable *utils.GateUnavailableError
	var missingDeclaration *utils.MissingDeclarationError
	var invalidState *utils.InvalidStateError
	var validationErr *utils.ValidationError
	var alreadyFinalized *utils.AlreadyFinalizedError
	var concurrent *utils.ConcurrentModificationError

	switch {
	case errors.As(err, &terminal):
		c.JSON(http.StatusConflict, gin.H{
			"kind":    utils.ErrKindTerminalState,
			"status":  terminal.Status,
			"message": terminal.Error(),
		})
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"kind":    utils.ErrKindInvalidTransition,
			"from":    invalidTransition.From,
			"to":      invalidTransition.To,
			"message": invalidTransition.Error(),
		})
	case errors.As(err, &complianceErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"kind":          utils.ErrKindComplianceFailed,
			"target_status": complianceErr.TargetStatus,
			"violations":    complianceErr.Violations,
			"message":       complianceErr.Error(),
		})
	case errors.As(err, &gateUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"kind":    utils.ErrKindGateUnavailable,
			"message": gateUnavailable.Error(),
		})
	case errors.As(err, &missingDeclaration):
		c.JSON(http.StatusConflict, gin.H{
			"kind":             utils.ErrKindMissingDeclaration,
			"operation_id":     missingDeclaration.OperationId,
			"declaration_type": missingDeclaration.DeclarationType,
			"message":          missingDeclaration.Error(),
		})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, gin.H{
			"kind":    utils.ErrKindInvalidState,
			"status":  invalidState.Status,
			"message": invalidState.Error(),
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":    utils.ErrKindValidationError,
			"field":   validationErr.Field,
			"message": validationErr.Error(),
		})
	case errors.As(err, &alreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{
			"kind":     utils.ErrKindAlreadyFinalized,
			"resource": alreadyFinalized.Resource,
			"id":       alreadyFinalized.Id,
			"message":  alreadyFinalized.Error(),
		})
	case errors.As(err, &concurrent):
		c.JSON(http.StatusConflict, gin.H{
			"kind":     utils.ErrKindConcurrentModification,
			"resource": concurrent.Resource,
			"id":       concurrent.Id,
			"message":  concurrent.Error(),
		})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	default:
		config.LogError(config.GetLogger(), "api", "apiError", "unhandled error", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":   utils.ErrKindValidationError,
			"fields": utils.ProcessValidationErrors(err),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"kind":    utils.ErrKindValidationError,
		"message": err.Error(),
	})
}

func operationIdParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":    utils.ErrKindValidationError,
			"field":   "id",
			"message": "operation id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := utils.GetUsernameFromContext(c.Request.Context())
		if !ok || strings.TrimSpace(username) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
			return
		}
		user, err := models.GetUserByUsername(c.Request.Context(), username)
		if err != nil {
			apiError(c, err)
			return
		}
		user.Password = ""
		c.JSON(http.StatusOK, user)
	}
}

func createOperationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewOperation
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		if input.InspectionType != nil {
			if _, err := models.ParseInspectionType(*input.InspectionType); err != nil {
				apiError(c, &utils.ValidationError{Field: "inspection_type", Detail: err.Error()})
				return
			}
		}
		operation, err := models.CreateOperation(c.Request.Context(), input)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusCreated, operation)
	}
}

func getOperationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		operation, err := models.GetOperationById(c.Request.Context(), config.GetDB(), id)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, operation)
	}
}

type changeStatusInput struct {
	TargetStatus string `json:"target_status" binding:"required"`
	Comment      string `json:"comment"`
}

func changeStatusHandler(gate compliance.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		var input changeStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		target, err := models.ParseOperationStatus(input.TargetStatus)
		if err != nil {
			apiError(c, &utils.ValidationError{Field: "target_status", Detail: err.Error()})
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "operation.transition")
		defer span.End()

		operation, err := workflow.TransitionOperationStatus(ctx, gate, id, target, input.Comment)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, operation)
	}
}

func validateComplianceHandler(gate compliance.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		targetRaw := strings.TrimSpace(c.Query("target_status"))
		if targetRaw == "" {
			apiError(c, &utils.ValidationError{Field: "target_status", Detail: "query parameter is required"})
			return
		}
		target, err := models.ParseOperationStatus(targetRaw)
		if err != nil {
			apiError(c, &utils.ValidationError{Field: "target_status", Detail: err.Error()})
			return
		}
		operation, err := models.GetOperationById(c.Request.Context(), config.GetDB(), id)
		if err != nil {
			apiError(c, err)
			return
		}
		result, err := compliance.CachedValidate(c.Request.Context(), gate, operation, target)
		if err != nil {
			apiError(c, &utils.GateUnavailableError{Cause: err})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func statusHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		history, err := models.GetStatusHistory(c.Request.Context(), id)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

func createDeclarationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		var input models.NewDeclaration
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		declaration, err := models.CreateDeclaration(c.Request.Context(), id, input)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusCreated, declaration)
	}
}

type executeCrossingInput struct {
	Override bool `json:"override"`
}

func executeCrossingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		// The body is optional; an empty body means no override. Chunked
		// requests report ContentLength -1 and still carry a body.
		var input executeCrossingInput
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&input); err != nil {
				bindError(c, err)
				return
			}
		}
		// Overriding a RESOLVED result discards its resolution audit; only
		// platform admins may do that.
		if input.Override {
			if isAdmin, _ := utils.GetIsAdminFromContext(c.Request.Context()); !isAdmin {
				c.JSON(http.StatusForbidden, gin.H{"error": "crossing override requires an admin role"})
				return
			}
		}
		result, err := workflow.ExecuteCrossing(c.Request.Context(), id, input.Override)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type resolveCrossingInput struct {
	Comment string `json:"comment" binding:"required"`
}

func resolveCrossingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		var input resolveCrossingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		result, err := workflow.ResolveCrossing(c.Request.Context(), id, input.Comment)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getCrossingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		result, err := models.GetCrossingResult(c.Request.Context(), config.GetDB(), id)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func exportCrossingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		operation, err := models.GetOperationById(ctx, config.GetDB(), id)
		if err != nil {
			apiError(c, err)
			return
		}
		result, err := models.GetCrossingResult(ctx, config.GetDB(), id)
		if err != nil {
			apiError(c, err)
			return
		}
		workbook, err := reports.BuildCrossingWorkbook(operation, result)
		if err != nil {
			apiError(c, err)
			return
		}
		fileName := fmt.Sprintf("crossing_%s_%s.xlsx", operation.OperationNumber, time.Now().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := workbook.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "api", "exportCrossingHandler", "write workbook", map[string]any{"operationId": id}, err)
		}
	}
}

func saveGattFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operationIdParam(c)
		if !ok {
			return
		}
		var input models.NewGattForm
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		form, err := workflow.SaveGattForm(c.Request.Context(), id, input)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, form)
	}
}
