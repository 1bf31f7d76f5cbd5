package workflow

import (
	"context"
	"time"

	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/models"
	"github.com/comexdata/customs_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComputeAdjustedBase applies the GATT Article 1 adjustment: the adjusted
// customs taxable base is the arithmetic sum of the original base,
// commissions, transport costs not already recorded, and the manual
// adjustment (which may be negative). Rounded to 2 decimal places.
func ComputeAdjustedBase(originalTaxableBase, commissions, unrecordedTransport, adjustmentAmount decimal.Decimal) decimal.Decimal {
	return utils.RoundMoney(originalTaxableBase.
		Add(commissions).
		Add(unrecordedTransport).
		Add(adjustmentAmount))
}

// validateGattFormMutable is the pure immutability guard: once a form
// carries a completion timestamp it can never be modified again.
func validateGattFormMutable(existing *models.GattForm) error {
	if existing != nil && existing.CompletedAt != nil {
		return &utils.AlreadyFinalizedError{Resource: "gatt form", Id: existing.ID}
	}
	return nil
}

// SaveGattForm creates or updates the valuation form attached to the
// operation's FINAL declaration. Requires an inspection channel of VISUAL or
// FISICA; a finalized form (completed_at set) can no longer be modified.
func SaveGattForm(ctx context.Context, operationId int, input models.NewGattForm) (*models.GattForm, error) {
	db := config.GetDB()

	var form *models.GattForm
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireOperationLock(tx, operationId); err != nil {
			return err
		}
		defer ReleaseOperationLock(tx, operationId)

		operation, err := models.GetOperationById(ctx, tx, operationId)
		if err != nil {
			return err
		}
		if operation.InspectionType == nil || !operation.InspectionType.RequiresGattAdjustment() {
			return &utils.ValidationError{
				Field:  "inspection_type",
				Detail: "GATT valuation adjustment applies only to VISUAL and FISICA inspections",
			}
		}

		declaration, err := models.GetDeclarationByType(ctx, tx, operationId, models.DeclarationTypeFinal)
		if err != nil {
			return err
		}

		existing, err := models.GetGattForm(ctx, tx, declaration.ID)
		if err != nil && err != utils.ErrorRecordNotFound {
			return err
		}
		if err := validateGattFormMutable(existing); err != nil {
			return err
		}

		adjustedBase := ComputeAdjustedBase(
			declaration.TaxableBase,
			input.Commissions,
			input.UnrecordedTransport,
			input.AdjustmentAmount,
		)

		var completedAt *time.Time
		if input.Complete {
			now := time.Now().UTC()
			completedAt = &now
		}

		if existing == nil {
			form = &models.GattForm{
				DeclarationId:       declaration.ID,
				CommercialLinks:     input.CommercialLinks,
				Commissions:         input.Commissions,
				UnrecordedTransport: input.UnrecordedTransport,
				AdjustmentAmount:    input.AdjustmentAmount,
				Justification:       input.Justification,
				AdjustedTaxableBase: adjustedBase,
				CompletedAt:         completedAt,
			}
			return tx.WithContext(ctx).Create(form).Error
		}

		updates := map[string]interface{}{
			"commercial_links":      input.CommercialLinks,
			"commissions":           input.Commissions,
			"unrecorded_transport":  input.UnrecordedTransport,
			"adjustment_amount":     input.AdjustmentAmount,
			"justification":         input.Justification,
			"adjusted_taxable_base": adjustedBase,
			"completed_at":          completedAt,
		}
		if err := tx.WithContext(ctx).Model(&models.GattForm{}).
			Where("id = ?", existing.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		existing.CommercialLinks = input.CommercialLinks
		existing.Commissions = input.Commissions
		existing.UnrecordedTransport = input.UnrecordedTransport
		existing.AdjustmentAmount = input.AdjustmentAmount
		existing.Justification = input.Justification
		existing.AdjustedTaxableBase = adjustedBase
		existing.CompletedAt = completedAt
		form = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return form, nil
}
