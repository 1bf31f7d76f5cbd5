package models

import (
	"context"
	"time"

	"github.com/comexdata/customs_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CrossingResult is the reconciliation outcome between an operation's
// PRELIMINARY and FINAL declarations. It is derived data: created or replaced
// each time crossing executes, never authored directly by a user. Invariant:
// the discrepancy list is empty iff status is MATCH, and RESOLVED is only
// reachable from DISCREPANCY (through the resolution workflow).
type CrossingResult struct {
	ID                       int            `gorm:"primary_key" json:"id"`
	OperationId              int            `gorm:"uniqueIndex;not null" json:"operation_id"`
	PreliminaryDeclarationId int            `gorm:"not null" json:"preliminary_declaration_id"`
	FinalDeclarationId       int            `gorm:"not null" json:"final_declaration_id"`
	Status                   CrossingStatus `gorm:"type:enum('PENDING','MATCH','DISCREPANCY','RESOLVED');not null;default:'PENDING'" json:"status"`
	Discrepancies            []Discrepancy  `gorm:"foreignKey:CrossingResultId" json:"discrepancies"`
	ResolvedByUserId         *int           `json:"resolved_by_user_id"`
	ResolvedByUserName       string         `gorm:"size:100" json:"resolved_by_user_name"`
	ResolutionComment        string         `gorm:"type:text" json:"resolution_comment"`
	ResolvedAt               *time.Time     `json:"resolved_at"`
	ExecutedAt               time.Time      `gorm:"not null" json:"executed_at"`
	CreatedAt                time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Discrepancy is one field-level difference found by crossing. Ordering
// follows comparison order (headers first, then tariff lines by number) and
// is stable across re-executions of identical input.
type Discrepancy struct {
	ID               int              `gorm:"primary_key" json:"id"`
	CrossingResultId int              `gorm:"index;not null" json:"crossing_result_id"`
	Field            DiscrepancyField `gorm:"size:30;not null" json:"field"`
	LineNumber       *int             `json:"line_number"`
	PreliminaryValue string           `gorm:"size:50" json:"preliminary_value"`
	FinalValue       string           `gorm:"size:50" json:"final_value"`
	Difference       decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"difference"`
	Description      string           `gorm:"type:text" json:"description"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func GetCrossingResult(ctx context.Context, tx *gorm.DB, operationId int) (*CrossingResult, error) {
	var result CrossingResult
	err := tx.WithContext(ctx).
		Preload("Discrepancies", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("operation_id = ?", operationId).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// ReplaceCrossingResult deletes any prior result for the operation (with its
// discrepancies) and inserts the new one. Callers are responsible for the
// RESOLVED overwrite guard; this function just swaps rows.
func ReplaceCrossingResult(ctx context.Context, tx *gorm.DB, result *CrossingResult) error {
	var prior CrossingResult
	err := tx.WithContext(ctx).Where("operation_id = ?", result.OperationId).First(&prior).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil {
		if err := tx.WithContext(ctx).Where("crossing_result_id = ?", prior.ID).Delete(&Discrepancy{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Delete(&prior).Error; err != nil {
			return err
		}
	}
	return tx.WithContext(ctx).Create(result).Error
}
