package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/models"
	"github.com/comexdata/customs_backend/utils"
	"gorm.io/gorm"
)

// validateResolution is the pure guard for crossing resolution: the comment
// is mandatory (whitespace does not count), and only a DISCREPANCY result can
// be resolved. Callers pass the trimmed comment on.
func validateResolution(status models.CrossingStatus, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return &utils.ValidationError{Field: "comment", Detail: "a resolution comment is required"}
	}
	if status != models.CrossingStatusDiscrepancy {
		return &utils.InvalidStateError{
			Status: string(status),
			Detail: "only a DISCREPANCY crossing result can be resolved",
		}
	}
	return nil
}

// ResolveCrossing records the manual resolution of a DISCREPANCY crossing
// result. The comment is mandatory; resolver identity and timestamp are taken
// from the request context. One-way: there is no unresolve.
func ResolveCrossing(ctx context.Context, operationId int, comment string) (*models.CrossingResult, error) {
	comment = strings.TrimSpace(comment)

	db := config.GetDB()

	var crossingResult *models.CrossingResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireOperationLock(tx, operationId); err != nil {
			return err
		}
		defer ReleaseOperationLock(tx, operationId)

		result, err := models.GetCrossingResult(ctx, tx, operationId)
		if err != nil {
			return err
		}
		if err := validateResolution(result.Status, comment); err != nil {
			return err
		}

		userId, _ := utils.GetUserIdFromContext(ctx)
		userName, _ := utils.GetUserNameFromContext(ctx)
		now := time.Now().UTC()

		updates := map[string]interface{}{
			"status":                models.CrossingStatusResolved,
			"resolved_by_user_id":   userId,
			"resolved_by_user_name": userName,
			"resolution_comment":    comment,
			"resolved_at":           now,
		}
		if err := tx.WithContext(ctx).Model(&models.CrossingResult{}).
			Where("id = ?", result.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		result.Status = models.CrossingStatusResolved
		result.ResolvedByUserId = &userId
		result.ResolvedByUserName = userName
		result.ResolutionComment = comment
		result.ResolvedAt = &now
		crossingResult = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return crossingResult, nil
}
